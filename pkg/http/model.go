package http

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ValidationError describes one rejected request parameter.
type ValidationError struct {
	Code    string         `json:"code"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// ListDataResponse wraps a list with its size.
type ListDataResponse struct {
	Rows  any   `json:"rows"`
	Total int64 `json:"total"`
}
