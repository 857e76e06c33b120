package models

import (
	"time"
)

// GuestName is the display name exposed to templates for anonymous requests
const GuestName = "Guest"

// User represents a registered author or reader
type User struct {
	ID        int64     `json:"user_id" db:"user_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	Email     string    `json:"email" db:"email"`
	Password  *string   `json:"-" db:"password"` // bcrypt hash, nil for federated accounts
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsFederated reports whether the account was created through OAuth and has no local password
func (u *User) IsFederated() bool {
	return u.Password == nil
}

// Guest returns the placeholder user rendered for anonymous visitors
func Guest() *User {
	return &User{UserName: GuestName}
}

// IsGuest reports whether u is the anonymous placeholder
func (u *User) IsGuest() bool {
	return u == nil || u.ID == 0
}
