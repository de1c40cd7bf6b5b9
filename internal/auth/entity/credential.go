package entity

import "time"

// Credential is the login identity stored on a `users` row. It is created on
// register and read on login; this package never deletes it.
type Credential struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password"`
	Role         string    `db:"role"`
	RegisteredAt time.Time `db:"registered_at"`
}
