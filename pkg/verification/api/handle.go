package api

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-verify/pkg/config"
	verrors "github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/verification"
)

//go:embed web/*.html
var webFS embed.FS

var webTemplates = template.Must(template.ParseFS(webFS, "web/*.html"))

// Handler exposes the verification service over HTTP: authenticated JSON
// operations plus a browser form flow for emailed verification links.
type Handler struct {
	service *verification.Service
	cfg     *config.VerificationConfig
}

// NewHandler creates a new verification API handler
func NewHandler(service *verification.Service, cfg *config.VerificationConfig) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

// Routes registers the authenticated JSON operations. The router group must
// already carry the jwtauth verifier and authenticator middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/request", h.RequestVerification)
	r.Post("/submit", h.SubmitVerification)
	r.Get("/status", h.GetStatus)
}

// FormRoutes registers the unauthenticated browser form flow.
func (h *Handler) FormRoutes(r chi.Router) {
	r.Get("/verify-code/form", h.HandleForm)
	r.Post("/verify-code/form", h.HandleForm)
}

// RequestVerification handles POST /request
func (h *Handler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get account ID from token", "err", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req RequestVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.RecordKey == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "record_key is required"})
		return
	}

	if err := h.service.RequestVerification(r.Context(), accountID, req.RecordKey); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{Status: "OK"})
}

// SubmitVerification handles POST /submit
func (h *Handler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get account ID from token", "err", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req SubmitVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "code is required"})
		return
	}

	if _, _, err := h.service.SubmitVerification(r.Context(), accountID, req.Code); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SuccessResponse{Status: "OK"})
}

// GetStatus handles GET /status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get account ID from token", "err", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acct, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	channels := make(map[string]bool, len(h.cfg.Keys))
	for key := range h.cfg.Keys {
		channels[key] = acct.ChannelVerified(key)
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, StatusResponse{
		Verified: acct.Verified,
		Channels: channels,
	})
}

// HandleForm handles the link flow: GET or POST /verify-code/form with
// auth_id and code parameters. The outcome redirects to the per-channel
// success or error URL when configured, otherwise renders an embedded page.
func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	authID := r.FormValue("auth_id")
	code := r.FormValue("code")

	if authID == "" || code == "" {
		h.renderFormError(w, r, "", "Missing auth_id or code")
		return
	}
	accountID, err := uuid.Parse(authID)
	if err != nil {
		h.renderFormError(w, r, "", "Invalid auth_id")
		return
	}

	_, channelKey, err := h.service.SubmitVerification(r.Context(), accountID, code)
	if err != nil {
		slog.Error("Failed to verify code from form", "err", err, "account_id", accountID)
		h.renderFormError(w, r, channelKeyOf(err), errorMessage(err))
		return
	}

	if cfg, ok := h.cfg.Keys[channelKey]; ok && cfg.SuccessRedirect != "" {
		http.Redirect(w, r, cfg.SuccessRedirect, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webTemplates.ExecuteTemplate(w, "verify_success.html", nil); err != nil {
		slog.Error("Failed to render success page", "err", err)
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, channelKey, message string) {
	redirect := h.cfg.ErrorRedirect
	if cfg, ok := h.cfg.Keys[channelKey]; ok && cfg.ErrorRedirect != "" {
		redirect = cfg.ErrorRedirect
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	if err := webTemplates.ExecuteTemplate(w, "verify_error.html", map[string]string{"Error": message}); err != nil {
		slog.Error("Failed to render error page", "err", err)
	}
}

// channelKeyOf extracts the channel key carried in a structured error's
// details, when present. Lookup failures carry none.
func channelKeyOf(err error) string {
	var verr *verrors.Error
	if errors.As(err, &verr) {
		if key, ok := verr.Details["record_key"].(string); ok {
			return key
		}
	}
	return ""
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := verrors.MapErrorCodeToHTTPStatus(verrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		slog.Error("Verification operation failed", "err", err)
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

// getAccountIDFromContext extracts the account ID from the JWT claims set by
// the jwtauth middleware.
func getAccountIDFromContext(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["user_id"].(string)
	if !ok || sub == "" {
		sub, ok = claims["sub"].(string)
		if !ok || sub == "" {
			return uuid.Nil, errors.New("user_id not found in JWT claims")
		}
	}
	return uuid.Parse(sub)
}
