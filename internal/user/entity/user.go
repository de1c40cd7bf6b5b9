package entity

import "time"

// User is the public view of a `users` row. The password hash lives in the
// same row but is never selected through this type.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     *string   `json:"username" db:"username"`
	Name         *string   `json:"name" db:"name"`
	Avatar       *string   `json:"avatar" db:"avatar"`
	Birthdate    *string   `json:"birthdate" db:"birthdate"`
	Bio          *string   `json:"bio" db:"bio"`
	Role         string    `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
