package models

// User is a registered account, keyed by email in the users collection.
// Passwords are stored as Argon2id hashes, never as entered.
type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	Phone        string `json:"phone,omitempty"`
}
