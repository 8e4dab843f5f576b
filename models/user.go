package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"full_name"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	Avatar        *string   `json:"avatar,omitempty"`
	AvatarKey     *string   `json:"-"`
	WalletBalance Money     `json:"wallet_balance"`
	TotalWinnings Money     `json:"total_winnings"`
	TotalGames    int       `json:"total_games"`
	WinRate       Percent   `json:"win_rate"`
	Rank          int       `json:"rank"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy so ledger snapshots can leave the store's
// critical section safely.
func (u *User) Clone() *User {
	c := *u
	c.PhoneNumber = clonePtr(u.PhoneNumber)
	c.Avatar = clonePtr(u.Avatar)
	c.AvatarKey = clonePtr(u.AvatarKey)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
