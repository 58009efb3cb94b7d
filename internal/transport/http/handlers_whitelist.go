package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	identity "campusgate/internal/identity/models"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/platform/middleware/auth"
	"campusgate/pkg/requestcontext"
)

// WhitelistService is the management surface the admin handlers need.
type WhitelistService interface {
	Add(ctx context.Context, actorEmail, entryEmail, name string, role identity.Role) (*identity.WhitelistEntry, error)
	Remove(ctx context.Context, actorEmail, entryEmail string) error
	List(ctx context.Context) ([]identity.WhitelistEntry, error)
}

// WhitelistHandler serves the admin whitelist-management endpoints. The admin
// role guard runs in middleware; the service re-checks super-admin rules.
type WhitelistHandler struct {
	whitelist WhitelistService
	logger    *slog.Logger
}

func NewWhitelistHandler(whitelist WhitelistService, logger *slog.Logger) *WhitelistHandler {
	return &WhitelistHandler{whitelist: whitelist, logger: logger}
}

func (h *WhitelistHandler) Register(r chi.Router) {
	r.Get("/admin/whitelist", h.handleList)
	r.Post("/admin/whitelist", h.handleAdd)
	r.Delete("/admin/whitelist/{email}", h.handleRemove)
}

func (h *WhitelistHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.whitelist.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "whitelist listing failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type addWhitelistRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *WhitelistHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addWhitelistRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	role, err := identity.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.whitelist.Add(r.Context(), auth.GetEmail(r.Context()), req.Email, req.Name, role)
	if err != nil {
		h.logger.WarnContext(r.Context(), "whitelist add refused",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *WhitelistHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	rawEmail, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || rawEmail == "" {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "email path parameter is required"))
		return
	}

	if err := h.whitelist.Remove(r.Context(), auth.GetEmail(r.Context()), rawEmail); err != nil {
		h.logger.WarnContext(r.Context(), "whitelist remove refused",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
