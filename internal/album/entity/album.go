package entity

import "time"

// Album is a row of the albums table.
type Album struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Cover            *string   `json:"cover" db:"cover"`
	URL              *string   `json:"url" db:"url"`
	Slogan           *string   `json:"slogan" db:"slogan"`
	DigitalDownloads *float64  `json:"digitalDownloads" db:"digital_downloads"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}
