package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gamearena/gamearena/live"
	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

// ResultInput is one participant's final standing as reported by an admin.
type ResultInput struct {
	ParticipantID string       `json:"participant_id"`
	Placement     int          `json:"placement"`
	Kills         int          `json:"kills"`
	SurvivalTime  int          `json:"survival_time"`
	PrizeWon      models.Money `json:"prize_won"`
}

func (r ResultInput) validate() error {
	if r.ParticipantID == "" {
		return fmt.Errorf("%w: participant_id is required", ErrValidation)
	}
	if r.Placement <= 0 {
		return fmt.Errorf("%w: placement must be positive", ErrValidation)
	}
	if r.Kills < 0 || r.SurvivalTime < 0 {
		return fmt.Errorf("%w: kills and survival_time must not be negative", ErrValidation)
	}
	if r.PrizeWon.IsNegative() {
		return fmt.Errorf("%w: prize_won must not be negative", ErrValidation)
	}
	return nil
}

// ResultOutcome reports how one entry of the batch fared. Failures are
// per-participant and never abort the rest of the batch.
type ResultOutcome struct {
	ParticipantID string       `json:"participant_id"`
	PrizeWon      models.Money `json:"prize_won"`
	Error         string       `json:"error,omitempty"`
}

type SettlementReport struct {
	TournamentID string          `json:"tournament_id"`
	TotalPaid    models.Money    `json:"total_paid"`
	Outcomes     []ResultOutcome `json:"results"`
}

type SettlementService interface {
	// SubmitResults finalizes a tournament: marks it FINISHED, applies each
	// participant's standing and pays out prizes, one atomic unit per
	// participant. Settling a FINISHED or CANCELLED tournament fails, so
	// prize credits cannot be applied twice.
	SubmitResults(ctx context.Context, tournamentID, adminID string, results []ResultInput) (*SettlementReport, error)
}

type settlementService struct {
	ledger      store.Store
	leaderboard LeaderboardService
	hub         *live.Hub
	logger      *slog.Logger
}

func NewSettlementService(ledger store.Store, leaderboard LeaderboardService, hub *live.Hub, logger *slog.Logger) SettlementService {
	return &settlementService{
		ledger:      ledger,
		leaderboard: leaderboard,
		hub:         hub,
		logger:      logger,
	}
}

func (s *settlementService) SubmitResults(ctx context.Context, tournamentID, adminID string, results []ResultInput) (*SettlementReport, error) {
	report := &SettlementReport{TournamentID: tournamentID}

	var tournament *models.Tournament
	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		admin, err := tx.GetUser(adminID)
		if err != nil || !admin.IsAdmin {
			return ErrForbidden
		}

		t, err := tx.GetTournament(tournamentID)
		if err != nil {
			return mapTournamentErr(err)
		}
		if t.Status.Terminal() {
			return ErrTournamentNotSettleable
		}

		now := time.Now().UTC()
		t.Status = models.StatusFinished
		t.EndTime = &now
		if err := tx.UpdateTournament(t); err != nil {
			return err
		}
		tournament = t

		for _, result := range results {
			report.Outcomes = append(report.Outcomes, s.applyResult(tx, t, result))
		}
		for _, outcome := range report.Outcomes {
			if outcome.Error == "" {
				report.TotalPaid = report.TotalPaid.Add(outcome.PrizeWon)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.TotalPaid.GreaterThan(tournament.PrizePool) {
		s.logger.Warn("prize payout exceeds prize pool",
			slog.String("tournament_id", tournamentID),
			slog.String("total_paid", report.TotalPaid.String()),
			slog.String("prize_pool", tournament.PrizePool.String()),
		)
	}

	if err := s.leaderboard.RecomputeAll(ctx); err != nil {
		s.logger.Error("leaderboard recompute after settlement failed",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}

	if s.hub != nil {
		s.hub.BroadcastToTournament(tournamentID, live.Event{
			Type:    live.EventResultsPosted,
			Payload: report,
		})
	}
	return report, nil
}

// applyResult settles a single participant: standing update, prize credit
// and its PRIZE_WIN audit record, and the user's career stats. Validation
// runs before the first mutation, so a failed entry leaves no trace. An
// entry whose participant is already FINISHED is rejected, so a batch that
// repeats a participant pays at most once.
func (s *settlementService) applyResult(tx store.Tx, t *models.Tournament, result ResultInput) ResultOutcome {
	outcome := ResultOutcome{ParticipantID: result.ParticipantID, PrizeWon: result.PrizeWon}

	if err := result.validate(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	p, err := tx.GetParticipant(result.ParticipantID)
	if err != nil {
		outcome.Error = ErrParticipantNotFound.Error()
		return outcome
	}
	if p.TournamentID != t.ID {
		outcome.Error = "participant does not belong to this tournament"
		return outcome
	}
	if p.Status == models.ParticipantFinished {
		outcome.Error = "participant is already settled"
		return outcome
	}
	user, err := tx.GetUser(p.UserID)
	if err != nil {
		outcome.Error = ErrUserNotFound.Error()
		return outcome
	}

	placement := result.Placement
	p.Placement = &placement
	p.Kills = result.Kills
	p.SurvivalTime = result.SurvivalTime
	p.Points = matchPoints(result.Placement, result.Kills)
	p.PrizeWon = result.PrizeWon
	p.Status = models.ParticipantFinished
	if err := tx.UpdateParticipant(p); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	if result.PrizeWon.IsPositive() {
		if _, err := tx.AdjustBalance(p.UserID, result.PrizeWon); err != nil {
			outcome.Error = err.Error()
			return outcome
		}
		prize := &models.Transaction{
			UserID:       p.UserID,
			TournamentID: &t.ID,
			Type:         models.TransactionPrizeWin,
			Amount:       result.PrizeWon,
			Status:       models.TransactionCompleted,
			Description:  fmt.Sprintf("Prize for %s", t.Name),
		}
		if err := tx.RecordTransaction(prize); err != nil {
			outcome.Error = err.Error()
			return outcome
		}
	}

	updateCareerStats(user, result)
	if err := tx.UpdateUser(user); err != nil {
		s.logger.Error("failed to update career stats",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}
	return outcome
}

// matchPoints scores a finished match: two points per kill plus a podium
// bonus.
func matchPoints(placement, kills int) int {
	points := kills * 2
	switch placement {
	case 1:
		points += 15
	case 2:
		points += 10
	case 3:
		points += 5
	}
	return points
}

// updateCareerStats folds one finished game into the user's lifetime stats.
// Wins are derived from the stored win rate, so the rate stays consistent
// without a separate counter.
func updateCareerStats(u *models.User, result ResultInput) {
	wins := u.WinRate.Mul(decimal.NewFromInt(int64(u.TotalGames))).Div(decimal.NewFromInt(100)).Round(0)
	if result.Placement == 1 {
		wins = wins.Add(decimal.NewFromInt(1))
	}
	u.TotalGames++
	u.TotalWinnings = u.TotalWinnings.Add(result.PrizeWon)
	u.WinRate = models.NewMoney(wins.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(u.TotalGames))))
}
