package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamearena/gamearena/middleware"
	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/services"
)

type TournamentHandler struct {
	tournamentService  services.TournamentService
	participantService services.ParticipantService
}

func NewTournamentHandler(tournamentService services.TournamentService, participantService services.ParticipantService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  tournamentService,
		participantService: participantService,
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	input := services.ListTournamentsInput{
		Featured: r.URL.Query().Get("featured") == "true",
	}
	if raw := r.URL.Query().Get("game"); raw != "" {
		game := models.Game(raw)
		input.Game = &game
	}

	tournaments, err := h.tournamentService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get returns one tournament with its participants. Room credentials are
// included only when the requester has joined or is an admin, so the
// handler sits behind optional authentication.
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	tournament, participants, err := h.tournamentService.Get(r.Context(), id, viewerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament":   tournament,
		"participants": participants,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if id, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		input.CreatedBy = id
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input services.JoinTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.JoinTournament(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
