package models

import "time"

type LeaderboardPeriod string

const (
	PeriodDaily   LeaderboardPeriod = "DAILY"
	PeriodWeekly  LeaderboardPeriod = "WEEKLY"
	PeriodMonthly LeaderboardPeriod = "MONTHLY"
	PeriodAllTime LeaderboardPeriod = "ALL_TIME"
)

func (p LeaderboardPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// AllPeriods lists every leaderboard period, in recompute order.
func AllPeriods() []LeaderboardPeriod {
	return []LeaderboardPeriod{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}
}

// LeaderboardEntry is a per-period ranking snapshot, one per (user, period).
// Rank is the position: 1 is best.
type LeaderboardEntry struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Period        LeaderboardPeriod `json:"period"`
	TotalWinnings Money             `json:"total_winnings"`
	TotalGames    int               `json:"total_games"`
	WinRate       Percent           `json:"win_rate"`
	Rank          int               `json:"rank"`
	UpdatedAt     time.Time         `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

func (e *LeaderboardEntry) Clone() *LeaderboardEntry {
	c := *e
	c.User = nil
	if e.User != nil {
		c.User = e.User.Clone()
	}
	return &c
}
