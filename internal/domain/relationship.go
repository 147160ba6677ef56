package domain

import "time"

const (
	RelationRelated    = "related"
	RelationSimilar    = "similar"
	RelationDependency = "dependency"
	RelationReference  = "reference"
)

// Relationship is a directed edge between two bookmarks of the same owner.
type Relationship struct {
	ID                string    `json:"id"`
	BookmarkID        string    `json:"bookmark_id"`
	RelatedBookmarkID string    `json:"related_bookmark_id"`
	RelationshipType  string    `json:"relationship_type"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// Edge is one hop seen from a given bookmark: OtherID is always the far end.
type Edge struct {
	RelationshipID   string    `json:"relationship_id"`
	OtherID          string    `json:"related_bookmark_id"`
	RelationshipType string    `json:"relationship_type"`
	Direction        string    `json:"direction"` // "outgoing" | "incoming"
	CreatedAt        time.Time `json:"created_at"`
}

func IsValidRelationType(s string) bool {
	switch s {
	case RelationRelated, RelationSimilar, RelationDependency, RelationReference:
		return true
	}
	return false
}
