package domain

import "time"

// DNA event types recorded in the activity log.
const (
	EventBookmarkAdded   = "bookmark_added"
	EventBookmarkVisited = "bookmark_visited"
	EventBookmarkDeleted = "bookmark_deleted"
	EventTagAdded        = "tag_added"
	EventTagRemoved      = "tag_removed"
	EventFolderCreated   = "folder_created"
	EventSearch          = "search_performed"
)

func IsValidEventType(s string) bool {
	switch s {
	case EventBookmarkAdded, EventBookmarkVisited, EventBookmarkDeleted,
		EventTagAdded, EventTagRemoved, EventFolderCreated, EventSearch:
		return true
	}
	return false
}

type DNAEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	EventType string         `json:"event_type"`
	EventData map[string]any `json:"event_data"`
	CreatedAt time.Time      `json:"created_at"`
}

// Traits are 0-100 scores derived by fixed formulas.
type Traits struct {
	Curiosity    int `json:"curiosity"`
	Focus        int `json:"focus"`
	Organization int `json:"organization"`
	Exploration  int `json:"exploration"`
}

type InteractionStyle struct {
	OrganizationLevel string `json:"organizationLevel"` // minimal | moderate | extensive
	TaggingBehavior   string `json:"taggingBehavior"`   // none | basic | detailed
	FolderUsage       string `json:"folderUsage"`       // flat | hierarchical | mixed
}

type LearningStyle struct {
	Preference   string `json:"preference"` // exploratory | structured
	Pace         string `json:"pace"`       // deep | broad
	Organization string `json:"organization"`
}

type ContentAffinity struct {
	TopCategories        []string           `json:"topCategories"`
	CategoryDistribution map[string]float64 `json:"categoryDistribution"`
}

// DNAProfile is the stored result of the last analysis.
type DNAProfile struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Traits           Traits           `json:"personality_traits"`
	PeakHours        []int            `json:"peak_hours"`
	InteractionStyle InteractionStyle `json:"interaction_style"`
	LearningStyle    LearningStyle    `json:"learning_style"`
	ContentAffinity  ContentAffinity  `json:"content_affinity"`
	ConfidenceScore  float64          `json:"confidence_score"`
	AnalysisVersion  string           `json:"analysis_version"`
	LastAnalyzedAt   time.Time        `json:"last_analyzed_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Insight struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	InsightType     string         `json:"insight_type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	InsightData     map[string]any `json:"insight_data"`
	ConfidenceScore float64        `json:"confidence_score"`
	CreatedAt       time.Time      `json:"created_at"`
}

const (
	RecommendationActive    = "active"
	RecommendationApplied   = "applied"
	RecommendationDismissed = "dismissed"
)

type Recommendation struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	RecommendationType string         `json:"recommendation_type"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	ActionData         map[string]any `json:"action_data"`
	PriorityScore      int            `json:"priority_score"`
	Status             string         `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type DNAStats struct {
	TotalEvents       int            `json:"totalEvents"`
	EventsByType      map[string]int `json:"eventsByType"`
	DaysSinceCreation int            `json:"daysSinceCreation"`
	LastAnalyzedAt    *time.Time     `json:"lastAnalyzedAt"`
	ConfidenceScore   float64        `json:"confidenceScore"`
	ActivityPattern   string         `json:"activityPattern"` // daily | weekly | sporadic
}
