package favicon

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractIconHref returns the href of the first <link> whose rel attribute
// mentions "icon" (case-insensitive). ok is false when there is no such link
// or its href is blank.
func ExtractIconHref(r io.Reader) (href string, ok bool, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false, err
	}

	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "icon") {
			return true
		}
		v, _ := s.Attr("href")
		href = strings.TrimSpace(v)
		ok = href != ""
		return false
	})

	return href, ok, nil
}
