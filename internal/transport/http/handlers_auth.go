package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	flowmodels "campusgate/internal/authflow/models"
	identity "campusgate/internal/identity/models"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/requestcontext"
)

// FlowService is the orchestrator surface the auth handlers need.
type FlowService interface {
	SubmitEmail(ctx context.Context, email string, mode identity.FlowMode) (flowmodels.FlowResult, error)
	SubmitOTP(ctx context.Context, email, code string) (flowmodels.FlowResult, error)
	SubmitPassword(ctx context.Context, email, password, confirm string) (flowmodels.FlowResult, error)
	ResendCode(ctx context.Context, email string) (flowmodels.FlowResult, error)
}

// AuthHandler serves the sign-in flow endpoints.
type AuthHandler struct {
	flow   FlowService
	logger *slog.Logger
}

func NewAuthHandler(flow FlowService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{flow: flow, logger: logger}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/email", h.handleSubmitEmail)
	r.Post("/auth/otp", h.handleSubmitOTP)
	r.Post("/auth/password", h.handleSubmitPassword)
	r.Post("/auth/resend", h.handleResendCode)
}

type submitEmailRequest struct {
	Email string `json:"email"`
	Mode  string `json:"mode"`
}

func (h *AuthHandler) handleSubmitEmail(w http.ResponseWriter, r *http.Request) {
	var req submitEmailRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	mode, err := identity.ParseFlowMode(strings.TrimSpace(req.Mode))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.flow.SubmitEmail(r.Context(), req.Email, mode)
	if err != nil {
		h.logFlowError(r, "email submission rejected", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type submitOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) handleSubmitOTP(w http.ResponseWriter, r *http.Request) {
	var req submitOTPRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.flow.SubmitOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		h.logFlowError(r, "code verification failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type submitPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) handleSubmitPassword(w http.ResponseWriter, r *http.Request) {
	var req submitPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.flow.SubmitPassword(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.logFlowError(r, "password step failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.flow.ResendCode(r.Context(), req.Email)
	if err != nil {
		h.logFlowError(r, "code resend failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) logFlowError(r *http.Request, msg string, err error) {
	logFn := h.logger.WarnContext
	if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		logFn = h.logger.ErrorContext
	}
	logFn(r.Context(), msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(r.Context()))
}
