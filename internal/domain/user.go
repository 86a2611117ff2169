package domain

import "time"

// User represents an account in the system. PasswordHash is empty for
// accounts created through federated login; such accounts cannot log in
// with a local password.
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	Username        string
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
