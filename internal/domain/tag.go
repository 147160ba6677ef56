package domain

import "time"

type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#3B82F6"
