// Package news provides the HTTP handler for the random news sample endpoint.
package news

import "news-aggregator/internal/domain/entity"

// DTO is the JSON shape of one news item. Every field is a plain string so
// absent values serialize as "" rather than null.
type DTO struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Image   string `json:"image"`
	Source  string `json:"source"`
	Favicon string `json:"favicon"`
	Body    string `json:"body"`
}

func toDTO(n *entity.NewsRecord) DTO {
	return DTO{
		Date:    n.Date,
		Title:   n.Title,
		URL:     n.URL,
		Image:   n.Image,
		Source:  n.Source,
		Favicon: n.Favicon,
		Body:    n.Body,
	}
}
