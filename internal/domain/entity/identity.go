package entity

// UserID identifies a user across services. The event and notification
// services store it without any foreign key to the auth database.
type UserID int64

// Identity is what the auth service vouches for behind a bearer token.
type Identity struct {
	ID       UserID `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
