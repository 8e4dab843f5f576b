package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

const defaultLeaderboardLimit = 10

type LeaderboardService interface {
	// Get returns the current snapshot for a period, best rank first,
	// with user profiles attached.
	Get(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]*models.LeaderboardEntry, error)
	// Recompute rebuilds one period's snapshot from the ledger.
	Recompute(ctx context.Context, period models.LeaderboardPeriod) error
	RecomputeAll(ctx context.Context) error
}

type leaderboardService struct {
	ledger store.Store
	now    func() time.Time
}

func NewLeaderboardService(ledger store.Store) LeaderboardService {
	return &leaderboardService{ledger: ledger, now: time.Now}
}

func (s *leaderboardService) Get(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]*models.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown leaderboard period %q", ErrValidation, period)
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	var entries []*models.LeaderboardEntry
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		entries = tx.ListLeaderboard(period, limit)
		for _, e := range entries {
			if u, err := tx.GetUser(e.UserID); err == nil {
				e.User = u
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *leaderboardService) RecomputeAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, period := range models.AllPeriods() {
		period := period
		g.Go(func() error {
			return s.Recompute(ctx, period)
		})
	}
	return g.Wait()
}

func (s *leaderboardService) Recompute(ctx context.Context, period models.LeaderboardPeriod) error {
	window, windowed := periodWindow(period, s.now())

	return s.ledger.Update(ctx, func(tx store.Tx) error {
		var standings []*models.LeaderboardEntry
		if windowed {
			standings = windowedStandings(tx, period, window)
		} else {
			standings = allTimeStandings(tx)
		}

		sort.Slice(standings, func(i, j int) bool {
			a, b := standings[i], standings[j]
			if !a.TotalWinnings.Equal(b.TotalWinnings) {
				return a.TotalWinnings.GreaterThan(b.TotalWinnings)
			}
			if !a.WinRate.Equal(b.WinRate) {
				return a.WinRate.GreaterThan(b.WinRate)
			}
			return a.UserID < b.UserID
		})

		now := s.now().UTC()
		for i, e := range standings {
			e.ID = uuid.NewString()
			e.Period = period
			e.Rank = i + 1
			e.UpdatedAt = now
		}
		tx.ReplaceLeaderboard(period, standings)
		return nil
	})
}

// periodWindow returns the cutoff instant for a windowed period. ALL_TIME
// has no window and aggregates career stats instead.
func periodWindow(period models.LeaderboardPeriod, now time.Time) (time.Time, bool) {
	switch period {
	case models.PeriodDaily:
		return now.Add(-24 * time.Hour), true
	case models.PeriodWeekly:
		return now.Add(-7 * 24 * time.Hour), true
	case models.PeriodMonthly:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// allTimeStandings aggregates career stats for every user with at least one
// settled game, so players who never cashed a prize still rank.
func allTimeStandings(tx store.Tx) []*models.LeaderboardEntry {
	var standings []*models.LeaderboardEntry
	for _, u := range tx.ListUsers() {
		if u.TotalGames == 0 {
			continue
		}
		standings = append(standings, &models.LeaderboardEntry{
			UserID:        u.ID,
			TotalWinnings: u.TotalWinnings,
			TotalGames:    u.TotalGames,
			WinRate:       u.WinRate,
		})
	}
	return standings
}

// windowedStandings derives per-user winnings from COMPLETED PRIZE_WIN
// transactions inside the window, and games played from participations in
// tournaments that ended inside it.
func windowedStandings(tx store.Tx, period models.LeaderboardPeriod, cutoff time.Time) []*models.LeaderboardEntry {
	prizeType := models.TransactionPrizeWin
	status := models.TransactionCompleted
	prizes := tx.ListTransactions(store.TransactionFilter{Type: &prizeType, Status: &status})

	byUser := make(map[string]*models.LeaderboardEntry)
	entry := func(userID string) *models.LeaderboardEntry {
		e, ok := byUser[userID]
		if !ok {
			e = &models.LeaderboardEntry{UserID: userID, Period: period}
			byUser[userID] = e
		}
		return e
	}

	for _, tr := range prizes {
		if tr.CreatedAt.Before(cutoff) {
			continue
		}
		e := entry(tr.UserID)
		e.TotalWinnings = e.TotalWinnings.Add(tr.Amount)
	}

	wins := make(map[string]int)
	for userID := range byUser {
		for _, p := range tx.ListUserParticipations(userID) {
			t, err := tx.GetTournament(p.TournamentID)
			if err != nil || t.EndTime == nil || t.EndTime.Before(cutoff) {
				continue
			}
			e := entry(userID)
			e.TotalGames++
			if p.Placement != nil && *p.Placement == 1 {
				wins[userID]++
			}
		}
	}

	standings := make([]*models.LeaderboardEntry, 0, len(byUser))
	for userID, e := range byUser {
		if e.TotalGames > 0 {
			rate := decimal.NewFromInt(int64(wins[userID] * 100)).Div(decimal.NewFromInt(int64(e.TotalGames)))
			e.WinRate = models.NewMoney(rate)
		}
		standings = append(standings, e)
	}
	return standings
}
