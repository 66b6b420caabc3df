package domain

// Signal is the output of one extractor.
type Signal struct {
	Name   string `json:"name"`
	Impact int    `json:"impact"`
	Reason string `json:"reason,omitempty"`
}

// AnalysisResult is the outcome of scoring one article.
type AnalysisResult struct {
	Score int `json:"score"`
	// Breakdown lists the non-empty reasons in extractor order.
	Breakdown []string `json:"breakdown"`
	Signals   []Signal `json:"signals"`
	// Domain is the registrable domain of the article URL, empty when the
	// URL could not be parsed.
	Domain string `json:"domain,omitempty"`
}
