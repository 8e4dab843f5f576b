// Package store holds the authoritative ledger: user balances, tournaments,
// participation records, transactions and leaderboard snapshots. Every read
// and write of that state goes through a Store; no other component mutates
// it directly.
package store

import (
	"context"
	"errors"

	"github.com/gamearena/gamearena/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("email is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentInvalid  = errors.New("invalid tournament")
	ErrTournamentFull     = errors.New("tournament is full")
	// ErrTournamentInUse guards deletion while participants still hold
	// unresolved prize obligations.
	ErrTournamentInUse = errors.New("tournament has unresolved participants")

	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyJoined       = errors.New("user is already registered for this tournament")

	ErrTransactionNotFound = errors.New("transaction not found")
)

// TournamentFilter narrows ListTournaments. Featured selects WAITING and
// LIVE tournaments, newest first, capped at six.
type TournamentFilter struct {
	Game     *models.Game
	Status   *models.TournamentStatus
	Featured bool
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	UserID *string
	Type   *models.TransactionType
	Status *models.TransactionStatus
}

// Tx exposes the ledger operations. All methods return deep copies, so
// values may be used freely after the enclosing View/Update returns.
type Tx interface {
	// Users.
	CreateUser(u *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	UpdateUser(u *models.User) error
	// AdjustBalance applies a signed delta rounded to two fractional digits
	// and rejects any adjustment that would drive the balance negative.
	AdjustBalance(userID string, delta models.Money) (*models.User, error)
	ListUsers() []*models.User
	CountUsers() int

	// Tournaments.
	CreateTournament(t *models.Tournament) error
	GetTournament(id string) (*models.Tournament, error)
	ListTournaments(f TournamentFilter) []*models.Tournament
	UpdateTournament(t *models.Tournament) error
	DeleteTournament(id string) error
	CountTournaments(statuses ...models.TournamentStatus) int

	// Participants. AddParticipant enforces capacity and the one-row-per-
	// (tournament,user) invariant and increments CurrentPlayers atomically.
	AddParticipant(p *models.Participant) error
	GetParticipant(id string) (*models.Participant, error)
	FindParticipant(tournamentID, userID string) (*models.Participant, error)
	ListParticipants(tournamentID string) []*models.Participant
	ListUserParticipations(userID string) []*models.Participant
	UpdateParticipant(p *models.Participant) error

	// Transactions, appended in the order balance mutations are applied.
	RecordTransaction(tr *models.Transaction) error
	UpdateTransactionStatus(id string, status models.TransactionStatus) (*models.Transaction, error)
	ListUserTransactions(userID string) []*models.Transaction
	ListTransactions(f TransactionFilter) []*models.Transaction
	CountTransactions() int

	// Leaderboard snapshots.
	UpsertLeaderboardEntry(e *models.LeaderboardEntry)
	ReplaceLeaderboard(period models.LeaderboardPeriod, entries []*models.LeaderboardEntry)
	ListLeaderboard(period models.LeaderboardPeriod, limit int) []*models.LeaderboardEntry
}

// Store is the unit-of-work boundary over the ledger. Update serializes all
// mutations (single logical writer); View allows concurrent reads.
//
// Atomicity contract: within one Update, callers perform every failable
// validation before the first mutation. Because the whole callback runs in
// one critical section, a compound operation then either fully applies or
// leaves no trace; partial state is never observable.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}
