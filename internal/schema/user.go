package schema

import "time"

// UserRole enumerates the access levels a user account can hold.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// User is an account record in the users table.
//
// The JSON tags here are the storage encoding; user records are not exposed
// over the API, so PasswordHash round-trips through the store but never
// leaves the process.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"password_hash"`
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
