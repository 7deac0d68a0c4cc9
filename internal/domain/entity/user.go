package entity

import (
	"time"
)

// User is the aggregate root of the auth service.
// Passwords are stored as bcrypt hashes in HashedPassword.
type User struct {
	ID             UserID
	Email          string
	Username       string
	FullName       string
	HashedPassword string
	IsActive       bool
	AvatarURL      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity projects the fields other services are allowed to see.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Username: u.Username}
}
