package services

import (
	"context"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/store"
)

type AdminService interface {
	// Stats aggregates platform-wide figures for the admin dashboard.
	// Revenue counts COMPLETED entry fees only.
	Stats(ctx context.Context, adminID string) (*models.AdminStats, error)
}

type adminService struct {
	ledger store.Store
}

func NewAdminService(ledger store.Store) AdminService {
	return &adminService{ledger: ledger}
}

func (s *adminService) Stats(ctx context.Context, adminID string) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		admin, err := tx.GetUser(adminID)
		if err != nil || !admin.IsAdmin {
			return ErrForbidden
		}

		feeType := models.TransactionEntryFee
		completed := models.TransactionCompleted
		for _, tr := range tx.ListTransactions(store.TransactionFilter{Type: &feeType, Status: &completed}) {
			stats.TotalRevenue = stats.TotalRevenue.Add(tr.Amount)
		}

		stats.ActiveTournaments = tx.CountTournaments(models.StatusWaiting, models.StatusLive)
		stats.TotalUsers = tx.CountUsers()
		stats.TotalTransactions = tx.CountTransactions()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
