package domain

import "time"

// Profile is the canonical user row, keyed by a normalized UUID.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preferences are per-profile UI settings.
type Preferences struct {
	Theme    string `json:"theme"`
	ViewMode string `json:"view_mode"`
}

// DefaultPreferences is returned when a profile never saved any.
var DefaultPreferences = Preferences{Theme: "system", ViewMode: "grid"}

func IsValidTheme(s string) bool {
	return s == "light" || s == "dark" || s == "system"
}

func IsValidViewMode(s string) bool {
	return s == "grid" || s == "list" || s == "kanban"
}
