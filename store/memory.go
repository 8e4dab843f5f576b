package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamearena/gamearena/models"
)

const featuredLimit = 6

// MemoryStore is the in-process ledger. A single RWMutex serializes all
// mutations, so every Update is linearizable with respect to every other
// (the single-logical-writer model).
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]*models.User
	emailIdx    map[string]string // lower(email) -> user id
	usernameIdx map[string]string // lower(username) -> user id

	tournaments  map[string]*models.Tournament
	participants map[string]*models.Participant

	txByID map[string]*models.Transaction
	txLog  []*models.Transaction // append order == balance mutation order

	leaderboards map[models.LeaderboardPeriod][]*models.LeaderboardEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		emailIdx:     make(map[string]string),
		usernameIdx:  make(map[string]string),
		tournaments:  make(map[string]*models.Tournament),
		participants: make(map[string]*models.Participant),
		txByID:       make(map[string]*models.Transaction),
		leaderboards: make(map[models.LeaderboardPeriod][]*models.LeaderboardEntry),
	}
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{s: s})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

// memTx operates on the store while the enclosing View/Update holds the
// lock. All returned values are deep copies.
type memTx struct {
	s *MemoryStore
}

// --- users ---

func (tx *memTx) CreateUser(u *models.User) error {
	if _, taken := tx.s.emailIdx[strings.ToLower(u.Email)]; taken {
		return ErrUserEmailConflict
	}
	if _, taken := tx.s.usernameIdx[strings.ToLower(u.Username)]; taken {
		return ErrUserUsernameConflict
	}

	stored := u.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt
	// Registration starts with a zero wallet and zero stats; the admin flag
	// is never granted at creation time.
	stored.WalletBalance = models.MoneyZero()
	stored.TotalWinnings = models.MoneyZero()
	stored.TotalGames = 0
	stored.WinRate = models.MoneyZero()
	stored.Rank = 0
	stored.IsAdmin = false

	tx.s.users[stored.ID] = stored
	tx.s.emailIdx[strings.ToLower(stored.Email)] = stored.ID
	tx.s.usernameIdx[strings.ToLower(stored.Username)] = stored.ID

	*u = *stored.Clone()
	return nil
}

func (tx *memTx) GetUser(id string) (*models.User, error) {
	u, ok := tx.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

func (tx *memTx) GetUserByEmail(email string) (*models.User, error) {
	id, ok := tx.s.emailIdx[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return tx.s.users[id].Clone(), nil
}

func (tx *memTx) GetUserByUsername(username string) (*models.User, error) {
	id, ok := tx.s.usernameIdx[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return tx.s.users[id].Clone(), nil
}

// UpdateUser replaces the stored row except for the wallet balance, which
// changes only through AdjustBalance so the transaction log can never drift
// from balance history.
func (tx *memTx) UpdateUser(u *models.User) error {
	current, ok := tx.s.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	if !strings.EqualFold(current.Email, u.Email) {
		if _, taken := tx.s.emailIdx[strings.ToLower(u.Email)]; taken {
			return ErrUserEmailConflict
		}
		delete(tx.s.emailIdx, strings.ToLower(current.Email))
		tx.s.emailIdx[strings.ToLower(u.Email)] = u.ID
	}
	if !strings.EqualFold(current.Username, u.Username) {
		if _, taken := tx.s.usernameIdx[strings.ToLower(u.Username)]; taken {
			return ErrUserUsernameConflict
		}
		delete(tx.s.usernameIdx, strings.ToLower(current.Username))
		tx.s.usernameIdx[strings.ToLower(u.Username)] = u.ID
	}

	stored := u.Clone()
	stored.WalletBalance = current.WalletBalance
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	tx.s.users[u.ID] = stored

	*u = *stored.Clone()
	return nil
}

func (tx *memTx) AdjustBalance(userID string, delta models.Money) (*models.User, error) {
	u, ok := tx.s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	next := u.WalletBalance.Add(delta)
	if next.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	u.WalletBalance = next
	u.UpdatedAt = time.Now().UTC()
	return u.Clone(), nil
}

func (tx *memTx) ListUsers() []*models.User {
	out := make([]*models.User, 0, len(tx.s.users))
	for _, u := range tx.s.users {
		out = append(out, u.Clone())
	}
	return out
}

func (tx *memTx) CountUsers() int {
	return len(tx.s.users)
}

// --- tournaments ---

func (tx *memTx) CreateTournament(t *models.Tournament) error {
	if t.MaxPlayers <= 0 {
		return fmt.Errorf("%w: max_players must be positive", ErrTournamentInvalid)
	}
	if t.EntryFee.IsNegative() {
		return fmt.Errorf("%w: entry_fee must not be negative", ErrTournamentInvalid)
	}
	if t.PrizePool.IsNegative() {
		return fmt.Errorf("%w: prize_pool must not be negative", ErrTournamentInvalid)
	}

	stored := t.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt
	stored.CurrentPlayers = 0
	if stored.Status == "" {
		stored.Status = models.StatusWaiting
	}
	tx.s.tournaments[stored.ID] = stored

	*t = *stored.Clone()
	return nil
}

func (tx *memTx) GetTournament(id string) (*models.Tournament, error) {
	t, ok := tx.s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (tx *memTx) ListTournaments(f TournamentFilter) []*models.Tournament {
	out := make([]*models.Tournament, 0, len(tx.s.tournaments))
	for _, t := range tx.s.tournaments {
		if f.Game != nil && t.Game != *f.Game {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Featured && t.Status != models.StatusWaiting && t.Status != models.StatusLive {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Featured && len(out) > featuredLimit {
		out = out[:featuredLimit]
	}
	return out
}

// UpdateTournament replaces the stored row except for CurrentPlayers, which
// moves only with the participant set.
func (tx *memTx) UpdateTournament(t *models.Tournament) error {
	current, ok := tx.s.tournaments[t.ID]
	if !ok {
		return ErrTournamentNotFound
	}
	if t.MaxPlayers < current.CurrentPlayers {
		return fmt.Errorf("%w: max_players below current player count", ErrTournamentInvalid)
	}
	stored := t.Clone()
	stored.CurrentPlayers = current.CurrentPlayers
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	tx.s.tournaments[t.ID] = stored

	*t = *stored.Clone()
	return nil
}

func (tx *memTx) DeleteTournament(id string) error {
	t, ok := tx.s.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	if t.CurrentPlayers > 0 && t.Status != models.StatusFinished {
		return ErrTournamentInUse
	}
	delete(tx.s.tournaments, id)
	return nil
}

func (tx *memTx) CountTournaments(statuses ...models.TournamentStatus) int {
	if len(statuses) == 0 {
		return len(tx.s.tournaments)
	}
	n := 0
	for _, t := range tx.s.tournaments {
		for _, st := range statuses {
			if t.Status == st {
				n++
				break
			}
		}
	}
	return n
}

// --- participants ---

func (tx *memTx) AddParticipant(p *models.Participant) error {
	t, ok := tx.s.tournaments[p.TournamentID]
	if !ok {
		return ErrTournamentNotFound
	}
	if _, ok := tx.s.users[p.UserID]; !ok {
		return ErrUserNotFound
	}
	if t.CurrentPlayers >= t.MaxPlayers {
		return ErrTournamentFull
	}
	for _, existing := range tx.s.participants {
		if existing.TournamentID == p.TournamentID && existing.UserID == p.UserID {
			return ErrAlreadyJoined
		}
	}

	stored := p.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.JoinedAt.IsZero() {
		stored.JoinedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = models.ParticipantJoined
	}
	tx.s.participants[stored.ID] = stored
	t.CurrentPlayers++
	t.UpdatedAt = time.Now().UTC()

	*p = *stored.Clone()
	return nil
}

func (tx *memTx) GetParticipant(id string) (*models.Participant, error) {
	p, ok := tx.s.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p.Clone(), nil
}

func (tx *memTx) FindParticipant(tournamentID, userID string) (*models.Participant, error) {
	for _, p := range tx.s.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			return p.Clone(), nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (tx *memTx) ListParticipants(tournamentID string) []*models.Participant {
	out := make([]*models.Participant, 0)
	for _, p := range tx.s.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p.Clone())
		}
	}
	sortParticipants(out)
	return out
}

func (tx *memTx) ListUserParticipations(userID string) []*models.Participant {
	out := make([]*models.Participant, 0)
	for _, p := range tx.s.participants {
		if p.UserID == userID {
			out = append(out, p.Clone())
		}
	}
	sortParticipants(out)
	return out
}

func sortParticipants(ps []*models.Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].JoinedAt.Equal(ps[j].JoinedAt) {
			return ps[i].JoinedAt.Before(ps[j].JoinedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}

func (tx *memTx) UpdateParticipant(p *models.Participant) error {
	current, ok := tx.s.participants[p.ID]
	if !ok {
		return ErrParticipantNotFound
	}
	stored := p.Clone()
	stored.TournamentID = current.TournamentID
	stored.UserID = current.UserID
	stored.JoinedAt = current.JoinedAt
	tx.s.participants[p.ID] = stored

	*p = *stored.Clone()
	return nil
}

// --- transactions ---

func (tx *memTx) RecordTransaction(tr *models.Transaction) error {
	if _, ok := tx.s.users[tr.UserID]; !ok {
		return ErrUserNotFound
	}
	if !tr.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", tr.Type)
	}
	if tr.Amount.IsNegative() {
		return fmt.Errorf("transaction amount must not be negative")
	}

	stored := tr.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = models.TransactionPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	tx.s.txByID[stored.ID] = stored
	tx.s.txLog = append(tx.s.txLog, stored)

	*tr = *stored.Clone()
	return nil
}

func (tx *memTx) UpdateTransactionStatus(id string, status models.TransactionStatus) (*models.Transaction, error) {
	tr, ok := tx.s.txByID[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	tr.Status = status
	return tr.Clone(), nil
}

func (tx *memTx) ListUserTransactions(userID string) []*models.Transaction {
	out := make([]*models.Transaction, 0)
	// txLog is oldest-first; the history view wants newest first.
	for i := len(tx.s.txLog) - 1; i >= 0; i-- {
		if tx.s.txLog[i].UserID == userID {
			out = append(out, tx.s.txLog[i].Clone())
		}
	}
	return out
}

func (tx *memTx) ListTransactions(f TransactionFilter) []*models.Transaction {
	out := make([]*models.Transaction, 0)
	for _, tr := range tx.s.txLog {
		if f.UserID != nil && tr.UserID != *f.UserID {
			continue
		}
		if f.Type != nil && tr.Type != *f.Type {
			continue
		}
		if f.Status != nil && tr.Status != *f.Status {
			continue
		}
		out = append(out, tr.Clone())
	}
	return out
}

func (tx *memTx) CountTransactions() int {
	return len(tx.s.txLog)
}

// --- leaderboard ---

func (tx *memTx) UpsertLeaderboardEntry(e *models.LeaderboardEntry) {
	entries := tx.s.leaderboards[e.Period]
	for i, existing := range entries {
		if existing.UserID == e.UserID {
			stored := e.Clone()
			stored.ID = existing.ID
			stored.UpdatedAt = time.Now().UTC()
			entries[i] = stored
			return
		}
	}
	stored := e.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()
	tx.s.leaderboards[e.Period] = append(entries, stored)
}

func (tx *memTx) ReplaceLeaderboard(period models.LeaderboardPeriod, entries []*models.LeaderboardEntry) {
	tx.s.leaderboards[period] = nil
	for _, e := range entries {
		e.Period = period
		tx.UpsertLeaderboardEntry(e)
	}
}

func (tx *memTx) ListLeaderboard(period models.LeaderboardPeriod, limit int) []*models.LeaderboardEntry {
	entries := tx.s.leaderboards[period]
	out := make([]*models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
