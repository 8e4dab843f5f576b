package models

// AdminStats are the aggregate totals shown on the admin dashboard.
type AdminStats struct {
	TotalRevenue      Money `json:"total_revenue"`
	ActiveTournaments int   `json:"active_tournaments"`
	TotalUsers        int   `json:"total_users"`
	TotalTransactions int   `json:"total_transactions"`
}
