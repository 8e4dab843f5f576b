package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/services"
)

const maxAvatarSize = 5 << 20 // 5MB

type UserHandler struct {
	userService   services.UserService
	walletService services.WalletService
}

func NewUserHandler(userService services.UserService, walletService services.WalletService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		walletService: walletService,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	participations, err := h.userService.ListTournaments(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": participations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transactions, err := h.walletService.Transactions(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": transactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type walletRequest struct {
	Amount      models.Money `json:"amount"`
	Description string       `json:"description,omitempty"`
}

func (h *UserHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input walletRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.walletService.Deposit(r.Context(), id, input.Amount, input.Description)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transaction": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input walletRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.walletService.Withdraw(r.Context(), id, input.Amount, input.Description)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transaction": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadAvatar accepts a multipart form with an "avatar" file part.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form or file too large"))
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, errors.New("form must include an 'avatar' file"))
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateAvatar(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
