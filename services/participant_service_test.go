package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/services"
	"github.com/gamearena/gamearena/store"
)

func newFundedUser(t *testing.T, s *store.MemoryStore, username string, balance string) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FullName:     username,
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		if err := tx.CreateUser(u); err != nil {
			return err
		}
		if balance == "" {
			return nil
		}
		amount := models.MustMoney(balance)
		deposit := &models.Transaction{
			UserID:      u.ID,
			Type:        models.TransactionDeposit,
			Amount:      amount,
			Status:      models.TransactionCompleted,
			Description: "test funding",
		}
		if err := tx.RecordTransaction(deposit); err != nil {
			return err
		}
		_, err := tx.AdjustBalance(u.ID, amount)
		return err
	})
	if err != nil {
		t.Fatalf("fund user %s: %v", username, err)
	}
	return u
}

func newAdmin(t *testing.T, s *store.MemoryStore, username string) *models.User {
	t.Helper()
	u := newFundedUser(t, s, username, "")
	err := s.Update(context.Background(), func(tx store.Tx) error {
		u.IsAdmin = true
		return tx.UpdateUser(u)
	})
	if err != nil {
		t.Fatalf("promote admin %s: %v", username, err)
	}
	return u
}

func newTournament(t *testing.T, s *store.MemoryStore, maxPlayers int, entryFee string) *models.Tournament {
	t.Helper()
	tour := &models.Tournament{
		Name:       "Evening Scrims",
		Game:       models.GamePUBG,
		GameMode:   models.ModeSquad,
		MaxPlayers: maxPlayers,
		EntryFee:   models.MustMoney(entryFee),
		PrizePool:  models.MustMoney("500.00"),
		Tier:       models.TierGold,
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateTournament(tour)
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tour
}

func TestJoinTournamentDebitsEntryFee(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewParticipantService(s, nil)
	user := newFundedUser(t, s, "player1", "100.00")
	tour := newTournament(t, s, 10, "30.00")

	p, err := svc.JoinTournament(context.Background(), tour.ID, services.JoinTournamentInput{
		UserID:     user.ID,
		InGameName: "Slayer",
		InGameID:   "511223344",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.Status != models.ParticipantJoined {
		t.Errorf("participant status = %s; want JOINED", p.Status)
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		if !u.WalletBalance.Equal(models.MustMoney("70.00")) {
			t.Errorf("balance = %s; want 70.00", u.WalletBalance)
		}

		got, err := tx.GetTournament(tour.ID)
		if err != nil {
			return err
		}
		if got.CurrentPlayers != 1 {
			t.Errorf("CurrentPlayers = %d; want 1", got.CurrentPlayers)
		}

		feeType := models.TransactionEntryFee
		fees := tx.ListTransactions(store.TransactionFilter{UserID: &user.ID, Type: &feeType})
		if len(fees) != 1 {
			t.Fatalf("entry fee records = %d; want 1", len(fees))
		}
		if fees[0].Status != models.TransactionCompleted {
			t.Errorf("fee status = %s; want COMPLETED", fees[0].Status)
		}
		if fees[0].TournamentID == nil || *fees[0].TournamentID != tour.ID {
			t.Error("fee record is not linked to the tournament")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestJoinTournamentInsufficientFundsLeavesNoTrace(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewParticipantService(s, nil)
	user := newFundedUser(t, s, "broke", "10.00")
	tour := newTournament(t, s, 10, "30.00")

	_, err := svc.JoinTournament(context.Background(), tour.ID, services.JoinTournamentInput{
		UserID:     user.ID,
		InGameName: "Broke",
		InGameID:   "1",
	})
	if !errors.Is(err, services.ErrInsufficientFunds) {
		t.Fatalf("join: got %v; want ErrInsufficientFunds", err)
	}

	err = s.View(context.Background(), func(tx store.Tx) error {
		u, _ := tx.GetUser(user.ID)
		if !u.WalletBalance.Equal(models.MustMoney("10.00")) {
			t.Errorf("balance = %s; want 10.00 untouched", u.WalletBalance)
		}
		got, _ := tx.GetTournament(tour.ID)
		if got.CurrentPlayers != 0 {
			t.Errorf("CurrentPlayers = %d; want 0", got.CurrentPlayers)
		}
		feeType := models.TransactionEntryFee
		if n := len(tx.ListTransactions(store.TransactionFilter{Type: &feeType})); n != 0 {
			t.Errorf("entry fee records = %d; want 0", n)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestJoinTournamentRejectsDoubleEntry(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewParticipantService(s, nil)
	user := newFundedUser(t, s, "player1", "100.00")
	tour := newTournament(t, s, 10, "30.00")

	input := services.JoinTournamentInput{UserID: user.ID, InGameName: "Slayer", InGameID: "1"}
	if _, err := svc.JoinTournament(context.Background(), tour.ID, input); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.JoinTournament(context.Background(), tour.ID, input)
	if !errors.Is(err, services.ErrAlreadyJoined) {
		t.Errorf("second join: got %v; want ErrAlreadyJoined", err)
	}

	// The failed attempt must not charge a second fee.
	err = s.View(context.Background(), func(tx store.Tx) error {
		u, _ := tx.GetUser(user.ID)
		if !u.WalletBalance.Equal(models.MustMoney("70.00")) {
			t.Errorf("balance = %s; want 70.00", u.WalletBalance)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestJoinTournamentRejectsNonJoinableStates(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewParticipantService(s, nil)
	user := newFundedUser(t, s, "player1", "100.00")

	for _, status := range []models.TournamentStatus{models.StatusLive, models.StatusFinished, models.StatusCancelled} {
		tour := newTournament(t, s, 10, "0.00")
		err := s.Update(context.Background(), func(tx store.Tx) error {
			tour.Status = status
			return tx.UpdateTournament(tour)
		})
		if err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}

		_, err = svc.JoinTournament(context.Background(), tour.ID, services.JoinTournamentInput{
			UserID: user.ID, InGameName: "x", InGameID: "1",
		})
		if !errors.Is(err, services.ErrTournamentNotJoinable) {
			t.Errorf("join %s tournament: got %v; want ErrTournamentNotJoinable", status, err)
		}
	}
}

// With N concurrent joiners and fewer seats, exactly maxPlayers succeed and
// the books balance: seats, participant rows, fee records and the debited
// wallets all agree.
func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	const joiners = 24
	const seats = 10

	s := store.NewMemoryStore()
	svc := services.NewParticipantService(s, nil)
	tour := newTournament(t, s, seats, "30.00")

	users := make([]*models.User, joiners)
	for i := range users {
		users[i] = newFundedUser(t, s, fmt.Sprintf("racer%02d", i), "100.00")
	}

	var wg sync.WaitGroup
	results := make([]error, joiners)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.JoinTournament(context.Background(), tour.ID, services.JoinTournamentInput{
				UserID:     users[i].ID,
				InGameName: users[i].Username,
				InGameID:   fmt.Sprintf("%d", i),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, services.ErrTournamentFull):
		default:
			t.Errorf("joiner %d failed with %v; want nil or ErrTournamentFull", i, err)
		}
	}
	if succeeded != seats {
		t.Errorf("successful joins = %d; want %d", succeeded, seats)
	}

	err := s.View(context.Background(), func(tx store.Tx) error {
		got, _ := tx.GetTournament(tour.ID)
		if got.CurrentPlayers != seats {
			t.Errorf("CurrentPlayers = %d; want %d", got.CurrentPlayers, seats)
		}
		if n := len(tx.ListParticipants(tour.ID)); n != seats {
			t.Errorf("participant rows = %d; want %d", n, seats)
		}

		feeType := models.TransactionEntryFee
		fees := tx.ListTransactions(store.TransactionFilter{Type: &feeType})
		if len(fees) != seats {
			t.Errorf("fee records = %d; want %d", len(fees), seats)
		}

		charged := 0
		for _, u := range users {
			stored, _ := tx.GetUser(u.ID)
			switch {
			case stored.WalletBalance.Equal(models.MustMoney("70.00")):
				charged++
			case stored.WalletBalance.Equal(models.MustMoney("100.00")):
			default:
				t.Errorf("user %s balance = %s; want 70.00 or 100.00", u.Username, stored.WalletBalance)
			}
		}
		if charged != seats {
			t.Errorf("charged users = %d; want %d", charged, seats)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
