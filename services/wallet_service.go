package services

import (
	"context"
	"fmt"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

type WalletService interface {
	// Deposit credits the wallet and records a DEPOSIT transaction. The
	// record is created PENDING and completed once the credit applies.
	Deposit(ctx context.Context, userID string, amount models.Money, description string) (*models.Transaction, error)
	// Withdraw debits the wallet if funds suffice and records a COMPLETED
	// WITHDRAWAL transaction.
	Withdraw(ctx context.Context, userID string, amount models.Money, description string) (*models.Transaction, error)
	// Transactions returns the user's history, newest first.
	Transactions(ctx context.Context, userID string) ([]*models.Transaction, error)
}

type walletService struct {
	ledger store.Store
}

func NewWalletService(ledger store.Store) WalletService {
	return &walletService{ledger: ledger}
}

func (s *walletService) Deposit(ctx context.Context, userID string, amount models.Money, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrValidation)
	}
	if description == "" {
		description = "Wallet deposit"
	}

	var record *models.Transaction
	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return mapUserErr(err)
		}
		record = &models.Transaction{
			UserID:      userID,
			Type:        models.TransactionDeposit,
			Amount:      amount,
			Status:      models.TransactionPending,
			Description: description,
		}
		if err := tx.RecordTransaction(record); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(userID, amount); err != nil {
			return err
		}
		completed, err := tx.UpdateTransactionStatus(record.ID, models.TransactionCompleted)
		if err != nil {
			return err
		}
		record = completed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID string, amount models.Money, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", ErrValidation)
	}
	if description == "" {
		description = "Wallet withdrawal"
	}

	var record *models.Transaction
	err := s.ledger.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return mapUserErr(err)
		}
		if _, err := tx.AdjustBalance(userID, amount.Neg()); err != nil {
			return mapBalanceErr(err)
		}
		record = &models.Transaction{
			UserID:      userID,
			Type:        models.TransactionWithdrawal,
			Amount:      amount,
			Status:      models.TransactionCompleted,
			Description: description,
		}
		return tx.RecordTransaction(record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *walletService) Transactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	var history []*models.Transaction
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return mapUserErr(err)
		}
		history = tx.ListUserTransactions(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
