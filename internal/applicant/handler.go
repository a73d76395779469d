package applicant

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/edi-app/edi-intake/internal/auth"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/edi-app/edi-intake/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Insert(ctx context.Context, principal *auth.Principal, dto CreateApplicantDTO) (*Applicant, error)
	Select(ctx context.Context, principal *auth.Principal, filter Filter) (*ApplicantsResponse, error)
	GetByID(ctx context.Context, principal *auth.Principal, id string) (*Applicant, error)
	Update(ctx context.Context, capability policy.Capability, actorID string, id string, dto UpdateApplicantDTO) (*Applicant, error)
	Delete(ctx context.Context, capability policy.Capability, actorID string, id string) error
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

func actorID(principal *auth.Principal) string {
	if principal == nil {
		return ""
	}
	return principal.UserID
}

// CreateApplicant takes an intake submission and returns the stored record,
// auto number included.
func (h *Handler) CreateApplicant(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var dto CreateApplicantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateApplicant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applicant, err := h.Service.Insert(r.Context(), principal, dto)
	if err != nil {
		h.Logger.Error("CreateApplicant: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateApplicant: applicant created",
		"applicant_id", applicant.ID,
		"auto_number", applicant.AutoNumber)

	h.WriteJSON(w, http.StatusCreated, applicant)
}

// ListApplicants pages through records, newest number last. Filters arrive as
// query parameters and unknown values simply match nothing.
func (h *Handler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	query := r.URL.Query()
	filter := Filter{
		Region:             query.Get("region"),
		Zone:               query.Get("zone"),
		Woreda:             query.Get("woreda"),
		Batch:              query.Get("batch"),
		Sex:                query.Get("sex"),
		EnterpriseCategory: query.Get("enterprise_category"),
		BusinessSector:     query.Get("business_sector"),
		ModeOfFinance:      query.Get("mode_of_finance"),
		CollectedBy:        query.Get("collected_by"),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	response, err := h.Service.Select(r.Context(), principal, filter)
	if err != nil {
		h.Logger.Error("ListApplicants: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) GetApplicant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())

	applicant, err := h.Service.GetByID(r.Context(), principal, id)
	if err != nil {
		h.Logger.Error("GetApplicant: service error", "error", err, "applicant_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, applicant)
}

// UpdateApplicant is the elevated-path patch. The capability travels to the
// service, which refuses before touching the store when it is absent.
func (h *Handler) UpdateApplicant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	capability := auth.CapabilityFromContext(r.Context())

	var dto UpdateApplicantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateApplicant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applicant, err := h.Service.Update(r.Context(), capability, actorID(principal), id, dto)
	if err != nil {
		h.Logger.Error("UpdateApplicant: service error", "error", err, "applicant_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UpdateApplicant: applicant updated", "applicant_id", applicant.ID)

	h.WriteJSON(w, http.StatusOK, applicant)
}

func (h *Handler) DeleteApplicant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	capability := auth.CapabilityFromContext(r.Context())

	if err := h.Service.Delete(r.Context(), capability, actorID(principal), id); err != nil {
		h.Logger.Error("DeleteApplicant: service error", "error", err, "applicant_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeleteApplicant: applicant deleted", "applicant_id", id)

	w.WriteHeader(http.StatusNoContent)
}
