package domain

import "time"

// LinkStatus is the outcome of one reachability check of a URL.
type LinkStatus struct {
	URL          string    `json:"url"`
	IsValid      bool      `json:"isValid"`
	StatusCode   int       `json:"statusCode,omitempty"`
	Error        string    `json:"error,omitempty"`
	ResponseTime int64     `json:"responseTime"` // milliseconds
	RedirectURL  string    `json:"redirectUrl,omitempty"`
	CheckedAt    time.Time `json:"checkedAt"`
}

// LinkTarget is one bookmark URL to validate in the background scan.
type LinkTarget struct {
	BookmarkID string
	UserID     string
	URL        string
}
