package models

// ErrorResponse is the error body written by the dev server. The production
// backend uses "detail"; Code carries a machine readable reason when known.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Code    string `json:"code,omitempty"`
}

const CodeRefineRateLimited = "refine_rate_limited"
