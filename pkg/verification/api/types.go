package api

// RequestVerificationRequest asks for a fresh code on one channel.
type RequestVerificationRequest struct {
	RecordKey string `json:"record_key"`
}

// SubmitVerificationRequest carries a code the user received.
type SubmitVerificationRequest struct {
	Code string `json:"code"`
}

// SuccessResponse is the body of every successful JSON operation.
type SuccessResponse struct {
	Status string `json:"status"`
}

// StatusResponse reports per-channel and aggregate verified state.
type StatusResponse struct {
	Verified bool            `json:"verified"`
	Channels map[string]bool `json:"channels"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
