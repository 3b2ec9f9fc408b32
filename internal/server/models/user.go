package models

import "time"

// Roles assignable to a credential.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a principal's credential record. PasswordHash holds the bcrypt
// digest; the plaintext password never crosses into persistence.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
