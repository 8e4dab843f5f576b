package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamearena/gamearena/live"
	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

type JoinTournamentInput struct {
	UserID     string `json:"user_id"`
	InGameName string `json:"in_game_name"`
	InGameID   string `json:"in_game_id"`
}

type ParticipantService interface {
	// JoinTournament runs the whole join sequence as one economic
	// transaction: capacity check, balance check, entry-fee debit,
	// participant creation and the ENTRY_FEE audit record either all take
	// effect or none do.
	JoinTournament(ctx context.Context, tournamentID string, input JoinTournamentInput) (*models.Participant, error)
}

type participantService struct {
	ledger store.Store
	hub    *live.Hub
}

func NewParticipantService(ledger store.Store, hub *live.Hub) ParticipantService {
	return &participantService{ledger: ledger, hub: hub}
}

func (s *participantService) JoinTournament(ctx context.Context, tournamentID string, input JoinTournamentInput) (*models.Participant, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if input.InGameName == "" || input.InGameID == "" {
		return nil, fmt.Errorf("%w: in_game_name and in_game_id are required", ErrValidation)
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		UserID:       input.UserID,
		InGameName:   input.InGameName,
		InGameID:     input.InGameID,
		Status:       models.ParticipantJoined,
	}

	var tournament *models.Tournament
	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		t, err := tx.GetTournament(tournamentID)
		if err != nil {
			return mapTournamentErr(err)
		}
		if !t.Status.Joinable() {
			return ErrTournamentNotJoinable
		}
		if t.CurrentPlayers >= t.MaxPlayers {
			return ErrTournamentFull
		}

		user, err := tx.GetUser(input.UserID)
		if err != nil {
			return mapUserErr(err)
		}
		if _, err := tx.FindParticipant(tournamentID, input.UserID); err == nil {
			return ErrAlreadyJoined
		}
		if user.WalletBalance.LessThan(t.EntryFee) {
			return ErrInsufficientFunds
		}

		// All failable checks passed; the mutations below cannot fail, so
		// the compound operation commits as a whole.
		if _, err := tx.AdjustBalance(input.UserID, t.EntryFee.Neg()); err != nil {
			return mapBalanceErr(err)
		}
		if err := tx.AddParticipant(participant); err != nil {
			return mapParticipantErr(err)
		}
		fee := &models.Transaction{
			UserID:       input.UserID,
			TournamentID: &t.ID,
			Type:         models.TransactionEntryFee,
			Amount:       t.EntryFee,
			Status:       models.TransactionCompleted,
			Description:  fmt.Sprintf("Entry fee for %s", t.Name),
		}
		if err := tx.RecordTransaction(fee); err != nil {
			return err
		}

		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToTournament(tournamentID, live.Event{
			Type: live.EventParticipantJoined,
			Payload: map[string]any{
				"participant_id":  participant.ID,
				"user_id":         participant.UserID,
				"in_game_name":    participant.InGameName,
				"current_players": tournament.CurrentPlayers + 1,
				"max_players":     tournament.MaxPlayers,
			},
		})
	}
	return participant, nil
}

func mapParticipantErr(err error) error {
	switch {
	case errors.Is(err, store.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, store.ErrAlreadyJoined):
		return ErrAlreadyJoined
	case errors.Is(err, store.ErrTournamentFull):
		return ErrTournamentFull
	}
	return err
}

func mapBalanceErr(err error) error {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	}
	return err
}
