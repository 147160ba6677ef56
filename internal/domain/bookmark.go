package domain

import (
	"net/url"
	"strings"
	"time"
)

// Goal status and priority values accepted on a bookmark.
const (
	GoalPending    = "pending"
	GoalInProgress = "in_progress"
	GoalCompleted  = "completed"
	GoalPaused     = "paused"
	GoalCancelled  = "cancelled"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Bookmark is a saved URL owned by exactly one profile.
//
// UserID always holds the normalized profile ID, never a raw
// identity-provider ID.
type Bookmark struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	FaviconURL  string  `json:"favicon_url"`
	FolderID    *string `json:"folder_id"`

	// FolderName is filled by list queries that join folders.
	FolderName string `json:"folder_name,omitempty"`

	VisitCount    int        `json:"visit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at"`
	IsFavorite    bool       `json:"is_favorite"`
	IsArchived    bool       `json:"is_archived"`

	// Position is set once the user reorders manually.
	Position *int `json:"position"`

	BookmarkGoal

	Tags []Tag `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkGoal holds the optional goal-tracking fields stored on a bookmark row.
type BookmarkGoal struct {
	GoalDescription string     `json:"goal_description"`
	GoalType        string     `json:"goal_type"`
	GoalStatus      string     `json:"goal_status"`
	GoalPriority    string     `json:"goal_priority"`
	GoalProgress    int        `json:"goal_progress"`
	GoalNotes       string     `json:"goal_notes"`
	DeadlineDate    *time.Time `json:"deadline_date"`
}

// BookmarkFilter narrows List. Nil pointers mean "any".
type BookmarkFilter struct {
	FolderID   *string
	IsFavorite *bool
	IsArchived *bool
	Limit      int
	Offset     int
}

// BookmarkPatch is a partial update. Only non-nil fields are written.
type BookmarkPatch struct {
	URL             *string
	Title           *string
	Description     *string
	Notes           *string
	FaviconURL      *string
	FolderID        *string // "" clears the folder
	IsFavorite      *bool
	IsArchived      *bool
	GoalDescription *string
	GoalType        *string
	GoalStatus      *string
	GoalPriority    *string
	GoalProgress    *int
	GoalNotes       *string
	DeadlineDate    *time.Time
}

// IsValidURL reports whether raw is an absolute http(s) URL with a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Hostname returns the lowercased host of raw without a leading "www.".
// It returns "" for unparsable URLs.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func IsValidGoalStatus(s string) bool {
	switch s {
	case GoalPending, GoalInProgress, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}

func IsValidGoalPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
