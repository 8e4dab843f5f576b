package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/services"
	"github.com/gamearena/gamearena/store"
)

func newSettlementFixture(t *testing.T) (*store.MemoryStore, services.SettlementService, services.ParticipantService) {
	t.Helper()
	s := store.NewMemoryStore()
	leaderboard := services.NewLeaderboardService(s)
	settlement := services.NewSettlementService(s, leaderboard, nil, slog.Default())
	participants := services.NewParticipantService(s, nil)
	return s, settlement, participants
}

func joinAll(t *testing.T, svc services.ParticipantService, tour *models.Tournament, users ...*models.User) []*models.Participant {
	t.Helper()
	out := make([]*models.Participant, len(users))
	for i, u := range users {
		p, err := svc.JoinTournament(context.Background(), tour.ID, services.JoinTournamentInput{
			UserID:     u.ID,
			InGameName: u.Username,
			InGameID:   u.ID,
		})
		if err != nil {
			t.Fatalf("join %s: %v", u.Username, err)
		}
		out[i] = p
	}
	return out
}

func TestSubmitResultsPaysPrizesAndFinishes(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	admin := newAdmin(t, s, "admin")
	winner := newFundedUser(t, s, "winner", "100.00")
	runnerUp := newFundedUser(t, s, "runnerup", "100.00")
	tour := newTournament(t, s, 10, "30.00")
	entries := joinAll(t, participantSvc, tour, winner, runnerUp)

	report, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, []services.ResultInput{
		{ParticipantID: entries[0].ID, Placement: 1, Kills: 9, SurvivalTime: 1700, PrizeWon: models.MustMoney("300.00")},
		{ParticipantID: entries[1].ID, Placement: 2, Kills: 5, SurvivalTime: 1500, PrizeWon: models.MustMoney("150.00")},
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !report.TotalPaid.Equal(models.MustMoney("450.00")) {
		t.Errorf("total paid = %s; want 450.00", report.TotalPaid)
	}
	for _, outcome := range report.Outcomes {
		if outcome.Error != "" {
			t.Errorf("outcome %s failed: %s", outcome.ParticipantID, outcome.Error)
		}
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		got, _ := tx.GetTournament(tour.ID)
		if got.Status != models.StatusFinished {
			t.Errorf("status = %s; want FINISHED", got.Status)
		}
		if got.EndTime == nil {
			t.Error("EndTime not set on settlement")
		}

		u, _ := tx.GetUser(winner.ID)
		// 100 - 30 entry fee + 300 prize.
		if !u.WalletBalance.Equal(models.MustMoney("370.00")) {
			t.Errorf("winner balance = %s; want 370.00", u.WalletBalance)
		}
		if !u.TotalWinnings.Equal(models.MustMoney("300.00")) {
			t.Errorf("winner total winnings = %s; want 300.00", u.TotalWinnings)
		}
		if u.TotalGames != 1 {
			t.Errorf("winner total games = %d; want 1", u.TotalGames)
		}
		if !u.WinRate.Equal(models.MustMoney("100.00")) {
			t.Errorf("winner win rate = %s; want 100.00", u.WinRate)
		}

		p, _ := tx.GetParticipant(entries[0].ID)
		if p.Status != models.ParticipantFinished || p.Placement == nil || *p.Placement != 1 {
			t.Error("winner participant standing not applied")
		}
		if !p.PrizeWon.Equal(models.MustMoney("300.00")) {
			t.Errorf("winner prize on participant = %s; want 300.00", p.PrizeWon)
		}

		prizeType := models.TransactionPrizeWin
		prizes := tx.ListTransactions(store.TransactionFilter{Type: &prizeType})
		if len(prizes) != 2 {
			t.Errorf("prize records = %d; want 2", len(prizes))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

// Settling an already-finished tournament must fail, so a retried request
// can never double-credit prizes.
func TestSubmitResultsIsIdempotentAgainstRetries(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	admin := newAdmin(t, s, "admin")
	winner := newFundedUser(t, s, "winner", "100.00")
	tour := newTournament(t, s, 10, "0.00")
	entries := joinAll(t, participantSvc, tour, winner)

	results := []services.ResultInput{
		{ParticipantID: entries[0].ID, Placement: 1, PrizeWon: models.MustMoney("200.00")},
	}
	if _, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, results); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	_, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, results)
	if !errors.Is(err, services.ErrTournamentNotSettleable) {
		t.Fatalf("second settle: got %v; want ErrTournamentNotSettleable", err)
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		u, _ := tx.GetUser(winner.ID)
		if !u.WalletBalance.Equal(models.MustMoney("300.00")) {
			t.Errorf("balance = %s; want 300.00 (single credit)", u.WalletBalance)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

// A batch that lists the same participant twice pays out once; the repeat
// is reported as a failed outcome.
func TestSubmitResultsRejectsDuplicateEntriesInBatch(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	admin := newAdmin(t, s, "admin")
	winner := newFundedUser(t, s, "winner", "100.00")
	tour := newTournament(t, s, 10, "0.00")
	entries := joinAll(t, participantSvc, tour, winner)

	row := services.ResultInput{ParticipantID: entries[0].ID, Placement: 1, PrizeWon: models.MustMoney("200.00")}
	report, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, []services.ResultInput{row, row})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if report.Outcomes[0].Error != "" {
		t.Errorf("first entry failed: %s", report.Outcomes[0].Error)
	}
	if report.Outcomes[1].Error == "" {
		t.Error("repeated entry should be reported as a failed outcome")
	}
	if !report.TotalPaid.Equal(models.MustMoney("200.00")) {
		t.Errorf("total paid = %s; want 200.00 (single credit)", report.TotalPaid)
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		u, _ := tx.GetUser(winner.ID)
		if !u.WalletBalance.Equal(models.MustMoney("300.00")) {
			t.Errorf("balance = %s; want 300.00 (single credit)", u.WalletBalance)
		}
		if u.TotalGames != 1 {
			t.Errorf("total games = %d; want 1", u.TotalGames)
		}
		prizeType := models.TransactionPrizeWin
		prizes := tx.ListTransactions(store.TransactionFilter{Type: &prizeType})
		if len(prizes) != 1 {
			t.Errorf("prize records = %d; want 1", len(prizes))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSubmitResultsRequiresAdmin(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	player := newFundedUser(t, s, "player", "100.00")
	tour := newTournament(t, s, 10, "0.00")
	entries := joinAll(t, participantSvc, tour, player)

	_, err := settlement.SubmitResults(context.Background(), tour.ID, player.ID, []services.ResultInput{
		{ParticipantID: entries[0].ID, Placement: 1, PrizeWon: models.MustMoney("10.00")},
	})
	if !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("non-admin settle: got %v; want ErrForbidden", err)
	}
}

// A bad entry in the batch is reported per-participant and does not block
// the valid ones.
func TestSubmitResultsIsolatesBadEntries(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	admin := newAdmin(t, s, "admin")
	winner := newFundedUser(t, s, "winner", "100.00")
	tour := newTournament(t, s, 10, "0.00")
	entries := joinAll(t, participantSvc, tour, winner)

	report, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, []services.ResultInput{
		{ParticipantID: "no-such-participant", Placement: 1, PrizeWon: models.MustMoney("999.00")},
		{ParticipantID: entries[0].ID, Placement: 0, PrizeWon: models.MustMoney("10.00")},
		{ParticipantID: entries[0].ID, Placement: 2, PrizeWon: models.MustMoney("50.00")},
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if report.Outcomes[0].Error == "" {
		t.Error("unknown participant should be reported as a failed outcome")
	}
	if report.Outcomes[1].Error == "" {
		t.Error("zero placement should be reported as a failed outcome")
	}
	if report.Outcomes[2].Error != "" {
		t.Errorf("valid entry failed: %s", report.Outcomes[2].Error)
	}
	if !report.TotalPaid.Equal(models.MustMoney("50.00")) {
		t.Errorf("total paid = %s; want 50.00", report.TotalPaid)
	}
}

// After a full join-and-settle cycle every wallet equals the sum of the
// COMPLETED transaction deltas in its history.
func TestSettlementKeepsLedgerReconcilable(t *testing.T) {
	s, settlement, participantSvc := newSettlementFixture(t)
	admin := newAdmin(t, s, "admin")
	players := []*models.User{
		newFundedUser(t, s, "alpha", "100.00"),
		newFundedUser(t, s, "beta", "100.00"),
		newFundedUser(t, s, "gamma", "100.00"),
	}
	tour := newTournament(t, s, 10, "30.00")
	entries := joinAll(t, participantSvc, tour, players...)

	_, err := settlement.SubmitResults(context.Background(), tour.ID, admin.ID, []services.ResultInput{
		{ParticipantID: entries[0].ID, Placement: 1, PrizeWon: models.MustMoney("250.00")},
		{ParticipantID: entries[1].ID, Placement: 2, PrizeWon: models.MustMoney("100.00")},
		{ParticipantID: entries[2].ID, Placement: 3, PrizeWon: models.MustMoney("0.00")},
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		for _, player := range players {
			u, _ := tx.GetUser(player.ID)
			sum := models.MoneyZero()
			for _, tr := range tx.ListUserTransactions(player.ID) {
				if tr.Status == models.TransactionCompleted {
					sum = sum.Add(tr.Delta())
				}
			}
			if !sum.Equal(u.WalletBalance) {
				t.Errorf("%s: balance %s != completed delta sum %s", u.Username, u.WalletBalance, sum)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
