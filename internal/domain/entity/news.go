// Package entity defines the core domain entities of the news aggregator.
// It contains NewsRecord and Category along with their validation rules and
// domain-specific errors.
package entity

import "strings"

// NewsRecord is one discovered news item.
// URL is the canonical identity key and is unique in the store.
// Date is kept as the opaque timestamp string provided upstream.
type NewsRecord struct {
	Date    string
	Title   string
	URL     string
	Image   string
	Source  string
	Favicon string
	Body    string
}

// HasImage reports whether the record carries the required image attribute.
func (n *NewsRecord) HasImage() bool {
	return strings.TrimSpace(n.Image) != ""
}

// Validate checks the fields required for persistence.
func (n *NewsRecord) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if err := ValidateURL(n.URL); err != nil {
		return err
	}
	if !n.HasImage() {
		return &ValidationError{Field: "image", Message: "image is required"}
	}
	return nil
}
