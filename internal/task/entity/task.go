package entity

import "time"

// Task is a row of the tasks table.
type Task struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Status    string    `json:"status" db:"status"`
	Label     string    `json:"label" db:"label"`
	Priority  string    `json:"priority" db:"priority"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

var (
	Statuses   = []string{"TODO", "IN_PROGRESS", "DONE", "CANCELLED"}
	Labels     = []string{"BUG", "FEATURE", "IMPROVEMENT", "DOCUMENTATION"}
	Priorities = []string{"LOW", "MEDIUM", "HIGH", "URGENT"}
)
