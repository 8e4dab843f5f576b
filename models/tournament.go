package models

import "time"

type Game string

const (
	GamePUBG     Game = "PUBG"
	GameFreeFire Game = "FREE_FIRE"
)

func (g Game) Valid() bool {
	return g == GamePUBG || g == GameFreeFire
}

type GameMode string

const (
	ModeSolo  GameMode = "SOLO"
	ModeDuo   GameMode = "DUO"
	ModeSquad GameMode = "SQUAD"
)

func (m GameMode) Valid() bool {
	switch m {
	case ModeSolo, ModeDuo, ModeSquad:
		return true
	}
	return false
}

type Tier string

const (
	TierBronze  Tier = "BRONZE"
	TierSilver  Tier = "SILVER"
	TierGold    Tier = "GOLD"
	TierDiamond Tier = "DIAMOND"
)

func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierDiamond:
		return true
	}
	return false
}

// TournamentStatus follows WAITING -> STARTING -> LIVE -> FINISHED, with
// CANCELLED reachable from WAITING and STARTING only.
type TournamentStatus string

const (
	StatusWaiting   TournamentStatus = "WAITING"
	StatusStarting  TournamentStatus = "STARTING"
	StatusLive      TournamentStatus = "LIVE"
	StatusFinished  TournamentStatus = "FINISHED"
	StatusCancelled TournamentStatus = "CANCELLED"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusStarting, StatusLive, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status state machine permits moving
// from s to next.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	switch s {
	case StatusWaiting:
		return next == StatusStarting || next == StatusCancelled
	case StatusStarting:
		return next == StatusLive || next == StatusCancelled
	case StatusLive:
		return next == StatusFinished
	default:
		// FINISHED and CANCELLED are terminal.
		return false
	}
}

// Terminal reports whether no further status transition is possible.
func (s TournamentStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Joinable reports whether the tournament still accepts entries.
func (s TournamentStatus) Joinable() bool {
	return s == StatusWaiting || s == StatusStarting
}

type Tournament struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Game        Game     `json:"game"`
	GameMode    GameMode `json:"game_mode"`
	MaxPlayers  int      `json:"max_players"`
	// CurrentPlayers always equals the number of participant rows for this
	// tournament and never exceeds MaxPlayers.
	CurrentPlayers int `json:"current_players"`
	EntryFee       Money `json:"entry_fee"`
	PrizePool      Money `json:"prize_pool"`
	// PrizeDistribution maps placement ("1", "2", ...) to a fractional share
	// of the prize pool; shares must sum to at most 1.0.
	PrizeDistribution map[string]float64 `json:"prize_distribution,omitempty"`
	// Room credentials are serialized only for joined participants.
	RoomID       *string          `json:"room_id,omitempty"`
	RoomPassword *string          `json:"room_password,omitempty"`
	MapName      *string          `json:"map_name,omitempty"`
	Status       TournamentStatus `json:"status"`
	Tier         Tier             `json:"tier"`
	StartTime    *time.Time       `json:"start_time,omitempty"`
	EndTime      *time.Time       `json:"end_time,omitempty"`
	CreatedBy    string           `json:"created_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Description = clonePtr(t.Description)
	c.RoomID = clonePtr(t.RoomID)
	c.RoomPassword = clonePtr(t.RoomPassword)
	c.MapName = clonePtr(t.MapName)
	c.StartTime = clonePtr(t.StartTime)
	c.EndTime = clonePtr(t.EndTime)
	if t.PrizeDistribution != nil {
		c.PrizeDistribution = make(map[string]float64, len(t.PrizeDistribution))
		for k, v := range t.PrizeDistribution {
			c.PrizeDistribution[k] = v
		}
	}
	return &c
}

// WithoutRoomCredentials strips the room id/password for viewers who have
// not joined the tournament.
func (t *Tournament) WithoutRoomCredentials() *Tournament {
	c := t.Clone()
	c.RoomID = nil
	c.RoomPassword = nil
	return c
}
