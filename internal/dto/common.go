package dto

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Available string `json:"available,omitempty"` // set on insufficient funds
}
