package model

import "time"

// Account is a registered user able to receive anonymous messages.
type Account struct {
	ID               string    `json:"_id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	IsVerified       bool      `json:"isVerified"`
	VerifyCode       string    `json:"-"`
	VerifyCodeExpiry time.Time `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// VerificationExpired reports whether the pending verification code is no
// longer usable at the given instant.
func (a Account) VerificationExpired(now time.Time) bool {
	return !now.Before(a.VerifyCodeExpiry)
}

// Message is an immutable piece of content received by one Account.
type Message struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
