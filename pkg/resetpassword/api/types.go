package api

// ForgotPasswordRequest starts the reset flow for an email address.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumes a reset code and sets a new password.
type ResetPasswordRequest struct {
	UserID   string `json:"user_id"`
	Code     string `json:"code"`
	ExpireAt int64  `json:"expire_at"`
	Password string `json:"password"`
}

// SuccessResponse is the body of every successful JSON operation.
type SuccessResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
