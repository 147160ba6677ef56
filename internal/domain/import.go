package domain

import "time"

// ImportedBookmark is one parsed entry of an import file, before it is
// bound to an owner.
type ImportedBookmark struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Notes       string     `json:"notes"`
	FaviconURL  string     `json:"favicon_url"`
	FolderPath  string     `json:"folder"` // "/"-separated, "" for unfiled
	Tags        []string   `json:"tags"`
	IsFavorite  bool       `json:"is_favorite"`
	CreatedAt   *time.Time `json:"created_at"`
}

// ImportOutcome reports what a commit wrote.
type ImportOutcome struct {
	Created        int `json:"created"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
	FoldersCreated int `json:"foldersCreated"`
	TagsLinked     int `json:"tagsLinked"`
}
