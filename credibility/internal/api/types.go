package api

import "github.com/jonesrussell/north-cloud/credibility/internal/domain"

// Response messages. Clients match on these strings.
const (
	msgAnalyzeRequired     = "Title, content, and URL are required."
	msgSentimentDown       = "Sentiment analysis unavailable."
	msgAnalyzeFailed       = "Failed to analyze article."
	msgFeedbackRequired    = "URL and vote are required."
	msgInvalidVote         = `Vote must be "up" or "down".`
	msgInvalidURL          = "Invalid source URL."
	msgFeedbackFailed      = "Failed to process feedback."
	msgFeedbackProcessed   = "Feedback processed and score updated."
	msgSourceNotFound      = "Source not found"
	msgSourceLookupFailed  = "Failed to load source"
	msgSourceListFailed    = "Failed to list sources"
	msgInvalidQueryParamFn = "Invalid query parameter: "
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Title   string `binding:"required" json:"title"`
	Content string `binding:"required" json:"content"`
	URL     string `binding:"required" json:"url"`
}

// Article converts the request to the domain type.
func (r AnalyzeRequest) Article() domain.Article {
	return domain.Article{Title: r.Title, Content: r.Content, URL: r.URL}
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	Success   bool     `json:"success"`
	Score     int      `json:"score"`
	Breakdown []string `json:"breakdown"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	URL  string `binding:"required" json:"url"`
	Vote string `binding:"required" json:"vote"`
}

// ErrorResponse carries an analyze or listing failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries every feedback outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// SourceListResponse is the body of GET /api/v1/sources.
type SourceListResponse struct {
	Sources []*domain.SourceReputation `json:"sources"`
	Total   int                        `json:"total"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}
