package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

type CreateTournamentInput struct {
	Name              string             `json:"name"`
	Description       *string            `json:"description,omitempty"`
	Game              models.Game        `json:"game"`
	GameMode          models.GameMode    `json:"game_mode"`
	MaxPlayers        int                `json:"max_players"`
	EntryFee          models.Money       `json:"entry_fee"`
	PrizePool         models.Money       `json:"prize_pool"`
	PrizeDistribution map[string]float64 `json:"prize_distribution,omitempty"`
	RoomID            *string            `json:"room_id,omitempty"`
	RoomPassword      *string            `json:"room_password,omitempty"`
	MapName           *string            `json:"map_name,omitempty"`
	Tier              models.Tier        `json:"tier,omitempty"`
	StartTime         *time.Time         `json:"start_time,omitempty"`
	CreatedBy         string             `json:"created_by"`
}

// UpdateTournamentInput carries a partial update; nil fields are untouched.
type UpdateTournamentInput struct {
	Name              *string                  `json:"name,omitempty"`
	Description       *string                  `json:"description,omitempty"`
	MaxPlayers        *int                     `json:"max_players,omitempty"`
	EntryFee          *models.Money            `json:"entry_fee,omitempty"`
	PrizePool         *models.Money            `json:"prize_pool,omitempty"`
	PrizeDistribution map[string]float64       `json:"prize_distribution,omitempty"`
	RoomID            *string                  `json:"room_id,omitempty"`
	RoomPassword      *string                  `json:"room_password,omitempty"`
	MapName           *string                  `json:"map_name,omitempty"`
	Tier              *models.Tier             `json:"tier,omitempty"`
	Status            *models.TournamentStatus `json:"status,omitempty"`
	StartTime         *time.Time               `json:"start_time,omitempty"`
}

type ListTournamentsInput struct {
	Game     *models.Game
	Featured bool
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id, viewerID string) (*models.Tournament, []*models.Participant, error)
	List(ctx context.Context, input ListTournamentsInput) ([]*models.Tournament, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
}

type tournamentService struct {
	ledger store.Store
}

func NewTournamentService(ledger store.Store) TournamentService {
	return &tournamentService{ledger: ledger}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !input.Game.Valid() {
		return nil, fmt.Errorf("%w: game must be PUBG or FREE_FIRE", ErrValidation)
	}
	if !input.GameMode.Valid() {
		return nil, fmt.Errorf("%w: game_mode must be SOLO, DUO or SQUAD", ErrValidation)
	}
	if input.MaxPlayers <= 0 {
		return nil, fmt.Errorf("%w: max_players must be positive", ErrValidation)
	}
	if input.EntryFee.IsNegative() {
		return nil, fmt.Errorf("%w: entry_fee must not be negative", ErrValidation)
	}
	if input.PrizePool.IsNegative() {
		return nil, fmt.Errorf("%w: prize_pool must not be negative", ErrValidation)
	}
	if err := validateDistribution(input.PrizeDistribution); err != nil {
		return nil, err
	}
	tier := input.Tier
	if tier == "" {
		tier = models.TierBronze
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: unknown tier %q", ErrValidation, input.Tier)
	}

	t := &models.Tournament{
		Name:              input.Name,
		Description:       input.Description,
		Game:              input.Game,
		GameMode:          input.GameMode,
		MaxPlayers:        input.MaxPlayers,
		EntryFee:          input.EntryFee,
		PrizePool:         input.PrizePool,
		PrizeDistribution: input.PrizeDistribution,
		RoomID:            input.RoomID,
		RoomPassword:      input.RoomPassword,
		MapName:           input.MapName,
		Status:            models.StatusWaiting,
		Tier:              tier,
		StartTime:         input.StartTime,
		CreatedBy:         input.CreatedBy,
	}

	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		if input.CreatedBy != "" {
			creator, err := tx.GetUser(input.CreatedBy)
			if err != nil {
				return mapUserErr(err)
			}
			if !creator.IsAdmin {
				return ErrForbidden
			}
		}
		return tx.CreateTournament(t)
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return t, nil
}

// Get returns the tournament with its participants. Room credentials are
// included only when the viewer has joined (or is an admin).
func (s *tournamentService) Get(ctx context.Context, id, viewerID string) (*models.Tournament, []*models.Participant, error) {
	var (
		t            *models.Tournament
		participants []*models.Participant
		reveal       bool
	)
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		found, err := tx.GetTournament(id)
		if err != nil {
			return mapTournamentErr(err)
		}
		t = found
		participants = tx.ListParticipants(id)
		if viewerID != "" {
			if _, err := tx.FindParticipant(id, viewerID); err == nil {
				reveal = true
			} else if viewer, err := tx.GetUser(viewerID); err == nil && viewer.IsAdmin {
				reveal = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !reveal {
		t = t.WithoutRoomCredentials()
	}
	return t, participants, nil
}

func (s *tournamentService) List(ctx context.Context, input ListTournamentsInput) ([]*models.Tournament, error) {
	var out []*models.Tournament
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		out = tx.ListTournaments(store.TournamentFilter{
			Game:     input.Game,
			Featured: input.Featured,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	// The public listing never carries room credentials.
	for i, t := range out {
		out[i] = t.WithoutRoomCredentials()
	}
	return out, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateDistribution(input.PrizeDistribution); err != nil {
		return nil, err
	}

	var updated *models.Tournament
	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		t, err := tx.GetTournament(id)
		if err != nil {
			return mapTournamentErr(err)
		}

		if input.Name != nil {
			t.Name = *input.Name
		}
		if input.Description != nil {
			t.Description = input.Description
		}
		if input.MaxPlayers != nil {
			if *input.MaxPlayers <= 0 {
				return fmt.Errorf("%w: max_players must be positive", ErrValidation)
			}
			t.MaxPlayers = *input.MaxPlayers
		}
		if input.EntryFee != nil {
			if input.EntryFee.IsNegative() {
				return fmt.Errorf("%w: entry_fee must not be negative", ErrValidation)
			}
			t.EntryFee = *input.EntryFee
		}
		if input.PrizePool != nil {
			if input.PrizePool.IsNegative() {
				return fmt.Errorf("%w: prize_pool must not be negative", ErrValidation)
			}
			t.PrizePool = *input.PrizePool
		}
		if input.PrizeDistribution != nil {
			t.PrizeDistribution = input.PrizeDistribution
		}
		if input.RoomID != nil {
			t.RoomID = input.RoomID
		}
		if input.RoomPassword != nil {
			t.RoomPassword = input.RoomPassword
		}
		if input.MapName != nil {
			t.MapName = input.MapName
		}
		if input.Tier != nil {
			if !input.Tier.Valid() {
				return fmt.Errorf("%w: unknown tier %q", ErrValidation, *input.Tier)
			}
			t.Tier = *input.Tier
		}
		if input.StartTime != nil {
			t.StartTime = input.StartTime
		}
		if input.Status != nil && *input.Status != t.Status {
			if !input.Status.Valid() {
				return fmt.Errorf("%w: unknown status %q", ErrValidation, *input.Status)
			}
			if !t.Status.CanTransitionTo(*input.Status) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, t.Status, *input.Status)
			}
			t.Status = *input.Status
			if t.Status == models.StatusFinished && t.EndTime == nil {
				now := time.Now().UTC()
				t.EndTime = &now
			}
		}

		if err := tx.UpdateTournament(t); err != nil {
			if errors.Is(err, store.ErrTournamentInvalid) {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return mapTournamentErr(err)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	return s.ledger.Update(ctx, func(tx store.Tx) error {
		if err := tx.DeleteTournament(id); err != nil {
			if errors.Is(err, store.ErrTournamentInUse) {
				return ErrTournamentInUse
			}
			return mapTournamentErr(err)
		}
		return nil
	})
}

func validateDistribution(dist map[string]float64) error {
	if dist == nil {
		return nil
	}
	sum := 0.0
	for place, share := range dist {
		if _, err := strconv.Atoi(place); err != nil {
			return fmt.Errorf("%w: prize_distribution key %q is not a placement", ErrValidation, place)
		}
		if share <= 0 {
			return fmt.Errorf("%w: prize_distribution share for place %s must be positive", ErrValidation, place)
		}
		sum += share
	}
	// Small epsilon so 0.5+0.3+0.2 does not trip on float representation.
	if sum > 1.0+1e-9 {
		return fmt.Errorf("%w: prize_distribution shares sum to %.4f, must not exceed 1.0", ErrValidation, math.Round(sum*10000)/10000)
	}
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func mapTournamentErr(err error) error {
	if errors.Is(err, store.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}
