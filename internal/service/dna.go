package service

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/dna"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

const (
	autoAnalyzeWindow    = 7 * 24 * time.Hour
	autoAnalyzeMinEvents = 10
	reanalyzeAfter       = 7 * 24 * time.Hour
)

type DNAStore interface {
	InsertEvent(ctx context.Context, e domain.DNAEvent) (domain.DNAEvent, error)
	ListEvents(ctx context.Context, owner string, since time.Time) ([]domain.DNAEvent, error)
	CountEventsByType(ctx context.Context, owner string) (map[string]int, error)
	GetDNAProfile(ctx context.Context, owner string) (domain.DNAProfile, error)
	UpsertDNAProfile(ctx context.Context, p domain.DNAProfile) (domain.DNAProfile, error)
	ReplaceInsights(ctx context.Context, owner string, insights []domain.Insight) error
	ListInsights(ctx context.Context, owner string) ([]domain.Insight, error)
	ReplaceActiveRecommendations(ctx context.Context, owner string, recs []domain.Recommendation) error
	ListRecommendations(ctx context.Context, owner, status string) ([]domain.Recommendation, error)
	SetRecommendationStatus(ctx context.Context, owner, id, status string) (domain.Recommendation, error)
	ListBookmarks(ctx context.Context, owner string, f domain.BookmarkFilter) ([]domain.Bookmark, error)
	ListFolders(ctx context.Context, owner string) ([]domain.Folder, error)
	GetProfile(ctx context.Context, id string) (domain.Profile, error)
}

// DNAView is the profile together with its current insights and active
// recommendations.
type DNAView struct {
	Profile         domain.DNAProfile       `json:"profile"`
	Insights        []domain.Insight        `json:"insights"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

type DNAService struct {
	store DNAStore
	log   logger.Logger
	now   func() time.Time

	// analyzing guards against two concurrent analyses of the same owner.
	analyzing sync.Map
}

func NewDNAService(store DNAStore, log logger.Logger) *DNAService {
	return &DNAService{store: store, log: log, now: time.Now}
}

// SetClock replaces time.Now. Tests only.
func (s *DNAService) SetClock(now func() time.Time) { s.now = now }

// Track appends an event and, once enough recent activity piled up since
// the last analysis, refreshes the profile.
func (s *DNAService) Track(ctx context.Context, owner, eventType string, data map[string]any) (domain.DNAEvent, error) {
	if !domain.IsValidEventType(eventType) {
		return domain.DNAEvent{}, apperror.ValidationFailed("event_type", "unknown event type: "+eventType)
	}
	e, err := s.store.InsertEvent(ctx, domain.DNAEvent{
		UserID:    owner,
		EventType: eventType,
		EventData: data,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.DNAEvent{}, err
	}

	if s.shouldAutoAnalyze(ctx, owner) {
		if _, err := s.Analyze(ctx, owner); err != nil {
			s.log.Warn("dna auto-analysis failed", logger.String("user_id", owner), logger.Error(err))
		}
	}
	return e, nil
}

// Record is Track for callers that must not fail on analytics.
func (s *DNAService) Record(ctx context.Context, owner, eventType string, data map[string]any) {
	if _, err := s.Track(ctx, owner, eventType, data); err != nil {
		s.log.Warn("dna event not recorded",
			logger.String("user_id", owner), logger.String("event_type", eventType), logger.Error(err))
	}
}

func (s *DNAService) shouldAutoAnalyze(ctx context.Context, owner string) bool {
	now := s.now()
	recent, err := s.store.ListEvents(ctx, owner, now.Add(-autoAnalyzeWindow))
	if err != nil || len(recent) < autoAnalyzeMinEvents {
		return false
	}
	p, err := s.store.GetDNAProfile(ctx, owner)
	if apperror.IsNotFound(err) {
		return true
	}
	if err != nil {
		return false
	}
	return now.Sub(p.LastAnalyzedAt) > reanalyzeAfter
}

// Analyze recomputes the owner's profile from the last 30 days of events
// and the current bookmarks and folders, then regenerates insights and
// recommendations. Recommendation types the owner dismissed stay dismissed.
func (s *DNAService) Analyze(ctx context.Context, owner string) (DNAView, error) {
	if _, busy := s.analyzing.LoadOrStore(owner, struct{}{}); busy {
		return s.load(ctx, owner)
	}
	defer s.analyzing.Delete(owner)

	now := s.now().UTC()
	events, err := s.store.ListEvents(ctx, owner, now.AddDate(0, 0, -dna.EventWindowDays))
	if err != nil {
		return DNAView{}, err
	}
	bookmarks, err := s.store.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	if err != nil {
		return DNAView{}, err
	}
	folders, err := s.store.ListFolders(ctx, owner)
	if err != nil {
		return DNAView{}, err
	}

	analysis := dna.Analyze(events, bookmarks, folders)
	profile := analysis.Profile(owner)
	profile.LastAnalyzedAt = now

	stored, err := s.store.UpsertDNAProfile(ctx, profile)
	if err != nil {
		return DNAView{}, err
	}
	if err := s.store.ReplaceInsights(ctx, owner, dna.Insights(analysis)); err != nil {
		return DNAView{}, err
	}
	if err := s.store.ReplaceActiveRecommendations(ctx, owner, dna.Recommendations(analysis)); err != nil {
		return DNAView{}, err
	}

	s.log.Debug("dna profile analyzed",
		logger.String("user_id", owner),
		logger.Int("events", len(events)),
		logger.Float64("confidence", stored.ConfidenceScore))

	view, err := s.load(ctx, owner)
	if err != nil {
		return DNAView{}, err
	}
	view.Profile = stored
	return view, nil
}

// Profile returns the stored profile, analyzing first when there is none
// yet or when refresh is set.
func (s *DNAService) Profile(ctx context.Context, owner string, refresh bool) (DNAView, error) {
	if refresh {
		return s.Analyze(ctx, owner)
	}
	view, err := s.load(ctx, owner)
	if apperror.IsNotFound(err) {
		return s.Analyze(ctx, owner)
	}
	return view, err
}

func (s *DNAService) load(ctx context.Context, owner string) (DNAView, error) {
	p, err := s.store.GetDNAProfile(ctx, owner)
	if err != nil {
		return DNAView{}, err
	}
	insights, err := s.store.ListInsights(ctx, owner)
	if err != nil {
		return DNAView{}, err
	}
	recs, err := s.store.ListRecommendations(ctx, owner, domain.RecommendationActive)
	if err != nil {
		return DNAView{}, err
	}
	return DNAView{Profile: p, Insights: insights, Recommendations: recs}, nil
}

// Recommendations lists by status; empty means active.
func (s *DNAService) Recommendations(ctx context.Context, owner, status string) ([]domain.Recommendation, error) {
	switch status {
	case "":
		status = domain.RecommendationActive
	case domain.RecommendationActive, domain.RecommendationApplied, domain.RecommendationDismissed:
	default:
		return nil, apperror.ValidationFailed("status", "status must be one of active, applied, dismissed")
	}
	return s.store.ListRecommendations(ctx, owner, status)
}

func (s *DNAService) ApplyRecommendation(ctx context.Context, owner, id string) (domain.Recommendation, error) {
	return s.store.SetRecommendationStatus(ctx, owner, id, domain.RecommendationApplied)
}

// DismissRecommendation hides id; later analyses will not bring its type back.
func (s *DNAService) DismissRecommendation(ctx context.Context, owner, id string) (domain.Recommendation, error) {
	return s.store.SetRecommendationStatus(ctx, owner, id, domain.RecommendationDismissed)
}

func (s *DNAService) Stats(ctx context.Context, owner string) (domain.DNAStats, error) {
	byType, err := s.store.CountEventsByType(ctx, owner)
	if err != nil {
		return domain.DNAStats{}, err
	}
	stats := domain.DNAStats{EventsByType: byType}
	for _, n := range byType {
		stats.TotalEvents += n
	}

	now := s.now()
	if p, err := s.store.GetProfile(ctx, owner); err == nil {
		stats.DaysSinceCreation = int(now.Sub(p.CreatedAt) / (24 * time.Hour))
	} else if !apperror.IsNotFound(err) {
		return domain.DNAStats{}, err
	}

	p, err := s.store.GetDNAProfile(ctx, owner)
	switch {
	case err == nil:
		last := p.LastAnalyzedAt
		stats.LastAnalyzedAt = &last
		stats.ConfidenceScore = p.ConfidenceScore
	case !apperror.IsNotFound(err):
		return domain.DNAStats{}, err
	}

	events, err := s.store.ListEvents(ctx, owner, now.AddDate(0, 0, -dna.EventWindowDays))
	if err != nil {
		return domain.DNAStats{}, err
	}
	stats.ActivityPattern = dna.Frequency(events, now)
	return stats, nil
}
