package domain

import "time"

// TimeCapsule is an insert-once snapshot of a user's bookmarks.
type TimeCapsule struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SnapshotDate  time.Time `json:"snapshot_date"`
	BookmarkCount int       `json:"bookmark_count"`
	FolderCount   int       `json:"folder_count"`
	TagCount      int       `json:"tag_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Bookmarks []CapsuleBookmark `json:"bookmarks,omitempty"`
}

type CapsuleBookmark struct {
	ID                 string       `json:"id"`
	CapsuleID          string       `json:"capsule_id"`
	OriginalBookmarkID string       `json:"original_bookmark_id"`
	Title              string       `json:"title"`
	URL                string       `json:"url"`
	Description        string       `json:"description"`
	FaviconURL         string       `json:"favicon_url"`
	FolderName         string       `json:"folder_name"`
	IsFavorite         bool         `json:"is_favorite"`
	VisitCount         int          `json:"visit_count"`
	LastVisitedAt      *time.Time   `json:"last_visited_at"`
	Tags               []CapsuleTag `json:"tags"`
}

type CapsuleTag struct {
	CapsuleBookmarkID string `json:"capsule_bookmark_id"`
	TagName           string `json:"tag_name"`
	TagColor          string `json:"tag_color"`
}

type CapsuleStats struct {
	TotalCapsules              int        `json:"totalCapsules"`
	TotalBookmarksInCapsules   int        `json:"totalBookmarksInCapsules"`
	OldestCapsule              *time.Time `json:"oldestCapsule"`
	NewestCapsule              *time.Time `json:"newestCapsule"`
	AverageBookmarksPerCapsule float64    `json:"averageBookmarksPerCapsule"`
}

type RestoreResult struct {
	Restored int      `json:"restored"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// CapsuleInput selects what a new capsule snapshots.
type CapsuleInput struct {
	Name            string
	Description     string
	IncludeArchived bool
	// FolderIDs keeps unfiled bookmarks and those in the listed folders.
	// Empty means every folder.
	FolderIDs []string
}

// RestoreOptions controls how a capsule is re-inserted.
type RestoreOptions struct {
	FolderID     *string // target folder, nil leaves bookmarks unfiled
	SkipExisting bool    // skip URLs the owner already has
}
