package favicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIconHref(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantHref string
		wantOK   bool
	}{
		{
			name:     "plain icon",
			html:     `<html><head><link rel="icon" href="/favicon.png"></head></html>`,
			wantHref: "/favicon.png",
			wantOK:   true,
		},
		{
			name:     "first matching link wins",
			html:     `<link rel="stylesheet" href="/a.css"><link rel="shortcut icon" href="/s.ico"><link rel="icon" href="/i.png">`,
			wantHref: "/s.ico",
			wantOK:   true,
		},
		{
			name:     "rel matched case-insensitively",
			html:     `<LINK REL="ICON" HREF="/upper.ico">`,
			wantHref: "/upper.ico",
			wantOK:   true,
		},
		{
			name:     "href whitespace trimmed",
			html:     `<link rel="icon" href="  /spaced.ico ">`,
			wantHref: "/spaced.ico",
			wantOK:   true,
		},
		{
			name:   "matching link without href",
			html:   `<link rel="icon"><link rel="icon" href="/later.ico">`,
			wantOK: false,
		},
		{
			name:   "no icon links",
			html:   `<html><head><link rel="canonical" href="https://x.test/"></head></html>`,
			wantOK: false,
		},
		{
			name:   "not html",
			html:   `{"json": true}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			href, ok, err := ExtractIconHref(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHref, href)
		})
	}
}
