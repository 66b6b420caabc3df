// Package domain holds the value types of the credibility service.
package domain

// Article is the input to an analysis. It is never persisted.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Validate requires all three fields to be non-empty.
func (a Article) Validate() error {
	if a.Title == "" || a.Content == "" || a.URL == "" {
		return ErrValidation
	}
	return nil
}
