package models

import "time"

type TransactionType string

const (
	TransactionEntryFee   TransactionType = "ENTRY_FEE"
	TransactionPrizeWin   TransactionType = "PRIZE_WIN"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEntryFee, TransactionPrizeWin, TransactionDeposit, TransactionWithdrawal:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// Transaction is the audit record of one balance-affecting event. Amount is
// always stored positive; the direction is implied by Type.
type Transaction struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	TournamentID   *string           `json:"tournament_id,omitempty"`
	Type           TransactionType   `json:"type"`
	Amount         Money             `json:"amount"`
	Status         TransactionStatus `json:"status"`
	Description    string            `json:"description,omitempty"`
	PaymentGateway *string           `json:"payment_gateway,omitempty"`
	TransactionRef *string           `json:"transaction_ref,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Delta is the signed balance change this transaction represents. Summing
// deltas of COMPLETED transactions for a user reproduces their balance.
func (t *Transaction) Delta() Money {
	switch t.Type {
	case TransactionEntryFee, TransactionWithdrawal:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}

func (t *Transaction) Clone() *Transaction {
	c := *t
	c.TournamentID = clonePtr(t.TournamentID)
	c.PaymentGateway = clonePtr(t.PaymentGateway)
	c.TransactionRef = clonePtr(t.TransactionRef)
	return &c
}
