package models

import "time"

type ParticipantStatus string

const (
	ParticipantJoined       ParticipantStatus = "JOINED"
	ParticipantPlaying      ParticipantStatus = "PLAYING"
	ParticipantFinished     ParticipantStatus = "FINISHED"
	ParticipantDisqualified ParticipantStatus = "DISQUALIFIED"
)

// Participant is a user's entry in one tournament. At most one row exists
// per (tournament, user) pair.
type Participant struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournament_id"`
	UserID       string  `json:"user_id"`
	InGameName   string  `json:"in_game_name"`
	InGameID     string  `json:"in_game_id"`
	Kills        int     `json:"kills"`
	SurvivalTime int     `json:"survival_time"` // seconds
	Placement    *int    `json:"placement,omitempty"`
	Points       int     `json:"points"`
	PrizeWon     Money   `json:"prize_won"`
	Status       ParticipantStatus `json:"status"`
	JoinedAt     time.Time         `json:"joined_at"`

	// Populated by the service layer for the "my tournaments" view.
	Tournament *Tournament `json:"tournament,omitempty"`
}

func (p *Participant) Clone() *Participant {
	c := *p
	c.Placement = clonePtr(p.Placement)
	c.Tournament = nil
	if p.Tournament != nil {
		c.Tournament = p.Tournament.Clone()
	}
	return &c
}
