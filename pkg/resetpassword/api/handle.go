package api

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-verify/pkg/config"
	verrors "github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/resetpassword"
)

//go:embed web/*.html
var webFS embed.FS

var webTemplates = template.Must(template.ParseFS(webFS, "web/*.html"))

// Handler exposes the reset-password service over HTTP: unauthenticated JSON
// operations plus the browser form flow linked from reset emails.
type Handler struct {
	service *resetpassword.Service
	cfg     config.ResetConfig
}

// NewHandler creates a new reset-password API handler
func NewHandler(service *resetpassword.Service, cfg config.ResetConfig) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

// Routes registers the JSON operations and the browser form flow. All routes
// are unauthenticated; a user who forgot their password has no session.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
	r.Get("/reset-password/form", h.ShowForm)
	r.Post("/reset-password/form", h.SubmitForm)
}

// ForgotPassword handles POST /forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.InitiateReset(r.Context(), req.Email); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{Status: "OK"})
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	params, err := resetParams(req.UserID, req.Code, req.ExpireAt, req.Password)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), params); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{Status: "OK"})
}

// formData feeds the reset form template.
type formData struct {
	Action   string
	Code     string
	UserID   string
	ExpireAt int64
	Error    string
}

// ShowForm handles GET /reset-password/form, the link target from the reset
// email. The code is validated before the form renders so a stale link fails
// fast instead of after the user typed a new password.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	userID := r.URL.Query().Get("user_id")
	expireAtStr := r.URL.Query().Get("expire_at")

	accountID, expireAt, err := parseFormIdentity(userID, expireAtStr)
	if err != nil {
		h.renderFormError(w, r, errorMessage(err))
		return
	}

	if _, err := h.service.ValidateCode(r.Context(), accountID, code, expireAt); err != nil {
		slog.Info("Rejected reset form request", "err", err, "account_id", accountID)
		h.renderFormError(w, r, formErrorMessage(err))
		return
	}

	h.renderForm(w, formData{
		Action:   r.URL.Path,
		Code:     code,
		UserID:   userID,
		ExpireAt: expireAt,
	})
}

// SubmitForm handles POST /reset-password/form.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormError(w, r, "Invalid form submission")
		return
	}
	code := r.PostFormValue("code")
	userID := r.PostFormValue("user_id")
	expireAtStr := r.PostFormValue("expire_at")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	accountID, expireAt, err := parseFormIdentity(userID, expireAtStr)
	if err != nil {
		h.renderFormError(w, r, errorMessage(err))
		return
	}

	data := formData{
		Action:   r.URL.Path,
		Code:     code,
		UserID:   userID,
		ExpireAt: expireAt,
	}

	if password != confirm {
		data.Error = "Passwords do not match"
		h.renderForm(w, data)
		return
	}

	err = h.service.ResetPassword(r.Context(), resetpassword.ResetPasswordParams{
		AccountID:   accountID,
		Code:        code,
		ExpireAt:    expireAt,
		NewPassword: password,
	})
	if err != nil {
		// Validation failures mean the link itself is dead; show the error
		// page. Input problems re-render the form so the user can retry.
		if verrors.IsCode(err, verrors.ErrCodeMissingRequired) {
			data.Error = errorMessage(err)
			h.renderForm(w, data)
			return
		}
		slog.Error("Failed to reset password from form", "err", err, "account_id", accountID)
		h.renderFormError(w, r, formErrorMessage(err))
		return
	}

	if h.cfg.SuccessRedirect != "" {
		http.Redirect(w, r, h.cfg.SuccessRedirect, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webTemplates.ExecuteTemplate(w, "reset_success.html", nil); err != nil {
		slog.Error("Failed to render success page", "err", err)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, data formData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webTemplates.ExecuteTemplate(w, "reset_password_form.html", data); err != nil {
		slog.Error("Failed to render reset form", "err", err)
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, message string) {
	if h.cfg.ErrorRedirect != "" {
		http.Redirect(w, r, h.cfg.ErrorRedirect, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	if err := webTemplates.ExecuteTemplate(w, "reset_error.html", map[string]string{"Error": message}); err != nil {
		slog.Error("Failed to render error page", "err", err)
	}
}

func resetParams(userID, code string, expireAt int64, password string) (resetpassword.ResetPasswordParams, error) {
	if userID == "" {
		return resetpassword.ResetPasswordParams{}, verrors.MissingRequired("user_id")
	}
	accountID, err := uuid.Parse(userID)
	if err != nil {
		return resetpassword.ResetPasswordParams{}, verrors.InvalidInput("user_id", "must be a UUID")
	}
	return resetpassword.ResetPasswordParams{
		AccountID:   accountID,
		Code:        code,
		ExpireAt:    expireAt,
		NewPassword: password,
	}, nil
}

func parseFormIdentity(userID, expireAtStr string) (uuid.UUID, int64, error) {
	if userID == "" {
		return uuid.Nil, 0, verrors.MissingRequired("user_id")
	}
	accountID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, 0, verrors.InvalidInput("user_id", "must be a UUID")
	}
	if expireAtStr == "" {
		return uuid.Nil, 0, verrors.MissingRequired("expire_at")
	}
	expireAt, err := strconv.ParseInt(expireAtStr, 10, 64)
	if err != nil {
		return uuid.Nil, 0, verrors.InvalidInput("expire_at", "must be a unix timestamp")
	}
	return accountID, expireAt, nil
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := verrors.MapErrorCodeToHTTPStatus(verrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		slog.Error("Reset password operation failed", "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: errorMessage(err)})
}

func errorMessage(err error) string {
	var verr *verrors.Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "An unexpected error occurred"
}

// invalidLinkMessage is shown for every dead reset link. The form never says
// whether the code was wrong, expired, or tied to no account.
const invalidLinkMessage = "This password reset link is invalid or has expired. Please request a new one."

// formErrorMessage maps a service error to the browser-facing message.
func formErrorMessage(err error) string {
	switch verrors.GetCode(err) {
	case verrors.ErrCodeCodeInvalid, verrors.ErrCodeCodeExpired,
		verrors.ErrCodeAccountNotFound, verrors.ErrCodeAccountNoEmail:
		return invalidLinkMessage
	}
	return errorMessage(err)
}
