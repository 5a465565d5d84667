package models

import "time"

// Service is a bookable treatment. Duration and BufferTime are stored as
// HH:MM:SS clock strings.
type Service struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Duration   string    `db:"duration" json:"duration"`
	BufferTime string    `db:"buffer_time" json:"buffer_time"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
