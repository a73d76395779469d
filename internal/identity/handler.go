package identity

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/auth"
	"github.com/edi-app/edi-intake/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreateUser is the external admin surface for provisioning accounts; it
// demands the elevated service credential before reading the body.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	capability := auth.CapabilityFromContext(r.Context())
	if !capability.Elevated() {
		h.Logger.Warn("CreateUser: elevation required")
		h.HandleServiceError(w, apperrors.ErrElevationRequired)
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateUser: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateUser: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateUser: user created",
		"user_id", user.ID,
		"role", user.Role)

	h.WriteJSON(w, http.StatusCreated, ToResponse(user))
}

func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		h.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.Service.FindByEmail(r.Context(), email)
	if err != nil {
		h.Logger.Error("GetUserByEmail: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(user))
}
