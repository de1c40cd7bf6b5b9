package entity

import "time"

// TeamMember is a row of the team_members table.
type TeamMember struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email" db:"email"`
	Avatar    *string   `json:"avatar" db:"avatar"`
	Status    string    `json:"status" db:"status"` // pending / processing / success / failed
	Role      string    `json:"role" db:"role"`
	Bio       *string   `json:"bio" db:"bio"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
