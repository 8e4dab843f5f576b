package store

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gamearena/gamearena/models"
)

// SeedDemoData loads a demo admin and a demo player so a fresh instance is
// usable immediately. The player's opening balance is funded through a real
// deposit transaction, keeping the ledger reconcilable. Calling it twice is
// a no-op.
func SeedDemoData(ctx context.Context, s Store) error {
	return s.Update(ctx, func(tx Tx) error {
		if _, err := tx.GetUserByEmail("admin@gamearena.com"); err == nil {
			return nil
		}

		adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		admin := &models.User{
			Username:     "admin",
			Email:        "admin@gamearena.com",
			PasswordHash: string(adminHash),
			FullName:     "Admin User",
		}
		if err := tx.CreateUser(admin); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		admin.IsAdmin = true
		if err := tx.UpdateUser(admin); err != nil {
			return fmt.Errorf("failed to promote seed admin: %w", err)
		}

		playerHash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		phone := "+91-9876543210"
		player := &models.User{
			Username:     "ProGamer_99",
			Email:        "user@gamearena.com",
			PasswordHash: string(playerHash),
			FullName:     "Pro Gamer",
			PhoneNumber:  &phone,
		}
		if err := tx.CreateUser(player); err != nil {
			return fmt.Errorf("failed to seed player: %w", err)
		}

		opening := models.MustMoney("2450.00")
		deposit := &models.Transaction{
			UserID:      player.ID,
			Type:        models.TransactionDeposit,
			Amount:      opening,
			Description: "Demo opening balance",
		}
		if err := tx.RecordTransaction(deposit); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(player.ID, opening); err != nil {
			return err
		}
		if _, err := tx.UpdateTransactionStatus(deposit.ID, models.TransactionCompleted); err != nil {
			return err
		}
		return nil
	})
}
