package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamearena/gamearena/middleware"
	"github.com/gamearena/gamearena/services"
)

type AdminHandler struct {
	adminService      services.AdminService
	settlementService services.SettlementService
}

func NewAdminHandler(adminService services.AdminService, settlementService services.SettlementService) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		settlementService: settlementService,
	}
}

// adminID resolves the acting admin: explicit parameter first, then the
// session token.
func adminID(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := adminID(r, r.URL.Query().Get("admin_id"))
	if id == "" {
		badRequestResponse(w, r, errors.New("admin_id is required"))
		return
	}

	stats, err := h.adminService.Stats(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateResultsRequest struct {
	AdminID string                 `json:"admin_id,omitempty"`
	Results []services.ResultInput `json:"results"`
}

// UpdateResults settles a tournament with the submitted final standings.
func (h *AdminHandler) UpdateResults(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")

	var input updateResultsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Results) == 0 {
		badRequestResponse(w, r, errors.New("results must not be empty"))
		return
	}

	id := adminID(r, input.AdminID)
	if id == "" {
		badRequestResponse(w, r, errors.New("admin_id is required"))
		return
	}

	report, err := h.settlementService.SubmitResults(r.Context(), tournamentID, id, input.Results)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
