package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

func (s *Store) InsertEvent(ctx context.Context, e domain.DNAEvent) (domain.DNAEvent, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.EventData == nil {
		e.EventData = map[string]any{}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.timestamp()
	}
	data, err := marshalJSON(e.EventData)
	if err != nil {
		return domain.DNAEvent{}, fmt.Errorf("encode event data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO dna_profile_events (id, user_id, event_type, event_data, created_at) VALUES (?, ?, ?, ?, ?)`),
		e.ID, e.UserID, e.EventType, data, e.CreatedAt.UTC())
	if err != nil {
		return domain.DNAEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// ListEvents returns the owner's events since the given time, oldest first.
// A zero since returns everything.
func (s *Store) ListEvents(ctx context.Context, owner string, since time.Time) ([]domain.DNAEvent, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, event_type, event_data, created_at
		FROM dna_profile_events WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at`), owner, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DNAEvent, 0, 32)
	for rows.Next() {
		var (
			e    domain.DNAEvent
			data string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EventData = map[string]any{}
		if err := unmarshalJSON(data, &e.EventData); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountEventsByType returns the owner's event counts keyed by type.
func (s *Store) CountEventsByType(ctx context.Context, owner string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT event_type, COUNT(*) FROM dna_profile_events WHERE user_id = ? GROUP BY event_type`), owner)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

const dnaProfileColumns = `id, user_id, personality_traits, peak_hours, interaction_style, learning_style,
	content_affinity, confidence_score, analysis_version, last_analyzed_at, created_at, updated_at`

func (s *Store) GetDNAProfile(ctx context.Context, owner string) (domain.DNAProfile, error) {
	var (
		p                                      domain.DNAProfile
		traits, peaks, interaction, learn, aff string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+dnaProfileColumns+` FROM user_dna_profiles WHERE user_id = ?`), owner).Scan(
		&p.ID, &p.UserID, &traits, &peaks, &interaction, &learn, &aff,
		&p.ConfidenceScore, &p.AnalysisVersion, &p.LastAnalyzedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.DNAProfile{}, notFound(err, "dna profile", owner)
	}

	for _, f := range []struct {
		raw string
		dst any
	}{
		{traits, &p.Traits},
		{peaks, &p.PeakHours},
		{interaction, &p.InteractionStyle},
		{learn, &p.LearningStyle},
		{aff, &p.ContentAffinity},
	} {
		if err := unmarshalJSON(f.raw, f.dst); err != nil {
			return domain.DNAProfile{}, fmt.Errorf("decode dna profile: %w", err)
		}
	}
	return p, nil
}

// UpsertDNAProfile writes the analysis result, one row per user.
func (s *Store) UpsertDNAProfile(ctx context.Context, p domain.DNAProfile) (domain.DNAProfile, error) {
	now := s.timestamp()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.LastAnalyzedAt.IsZero() {
		p.LastAnalyzedAt = now
	}
	if p.PeakHours == nil {
		p.PeakHours = []int{}
	}

	encoded := make([]string, 0, 5)
	for _, v := range []any{p.Traits, p.PeakHours, p.InteractionStyle, p.LearningStyle, p.ContentAffinity} {
		raw, err := marshalJSON(v)
		if err != nil {
			return domain.DNAProfile{}, fmt.Errorf("encode dna profile: %w", err)
		}
		encoded = append(encoded, raw)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_dna_profiles (`+dnaProfileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			personality_traits = excluded.personality_traits,
			peak_hours = excluded.peak_hours,
			interaction_style = excluded.interaction_style,
			learning_style = excluded.learning_style,
			content_affinity = excluded.content_affinity,
			confidence_score = excluded.confidence_score,
			analysis_version = excluded.analysis_version,
			last_analyzed_at = excluded.last_analyzed_at,
			updated_at = excluded.updated_at`),
		p.ID, p.UserID, encoded[0], encoded[1], encoded[2], encoded[3], encoded[4],
		p.ConfidenceScore, p.AnalysisVersion, p.LastAnalyzedAt.UTC(), now, now)
	if err != nil {
		return domain.DNAProfile{}, fmt.Errorf("upsert dna profile: %w", err)
	}
	return s.GetDNAProfile(ctx, p.UserID)
}

// ReplaceInsights swaps the owner's insights for a fresh set.
func (s *Store) ReplaceInsights(ctx context.Context, owner string, insights []domain.Insight) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM dna_profile_insights WHERE user_id = ?`), owner); err != nil {
			return fmt.Errorf("clear insights: %w", err)
		}
		now := s.timestamp()
		for _, in := range insights {
			data, err := marshalJSON(in.InsightData)
			if err != nil {
				return fmt.Errorf("encode insight: %w", err)
			}
			if _, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO dna_profile_insights (id, user_id, insight_type, title, description, insight_data, confidence_score, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
				newID(), owner, in.InsightType, in.Title, in.Description, data, in.ConfidenceScore, now); err != nil {
				return fmt.Errorf("insert insight: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ListInsights(ctx context.Context, owner string) ([]domain.Insight, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, insight_type, title, description, insight_data, confidence_score, created_at
		FROM dna_profile_insights WHERE user_id = ? ORDER BY confidence_score DESC, title`), owner)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Insight, 0, 4)
	for rows.Next() {
		var (
			in   domain.Insight
			data string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.InsightType, &in.Title, &in.Description, &data, &in.ConfidenceScore, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in.InsightData = map[string]any{}
		if err := unmarshalJSON(data, &in.InsightData); err != nil {
			return nil, fmt.Errorf("decode insight: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// ReplaceActiveRecommendations drops the owner's active recommendations and
// inserts recs, except types the owner has dismissed before.
func (s *Store) ReplaceActiveRecommendations(ctx context.Context, owner string, recs []domain.Recommendation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, s.rebind(`
			SELECT DISTINCT recommendation_type FROM dna_profile_recommendations WHERE user_id = ? AND status = ?`),
			owner, domain.RecommendationDismissed)
		if err != nil {
			return fmt.Errorf("dismissed types: %w", err)
		}
		dismissed := make(map[string]bool)
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				rows.Close()
				return err
			}
			dismissed[t] = true
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM dna_profile_recommendations WHERE user_id = ? AND status = ?`),
			owner, domain.RecommendationActive); err != nil {
			return fmt.Errorf("clear recommendations: %w", err)
		}

		now := s.timestamp()
		for _, r := range recs {
			if dismissed[r.RecommendationType] {
				continue
			}
			data, err := marshalJSON(r.ActionData)
			if err != nil {
				return fmt.Errorf("encode recommendation: %w", err)
			}
			if _, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO dna_profile_recommendations (
					id, user_id, recommendation_type, title, description, action_data,
					priority_score, status, created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				newID(), owner, r.RecommendationType, r.Title, r.Description, data,
				r.PriorityScore, domain.RecommendationActive, now, now); err != nil {
				return fmt.Errorf("insert recommendation: %w", err)
			}
		}
		return nil
	})
}

const recommendationColumns = `id, user_id, recommendation_type, title, description, action_data, priority_score, status, created_at, updated_at`

func scanRecommendation(sc scanner) (domain.Recommendation, error) {
	var (
		r    domain.Recommendation
		data string
	)
	if err := sc.Scan(&r.ID, &r.UserID, &r.RecommendationType, &r.Title, &r.Description, &data,
		&r.PriorityScore, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return domain.Recommendation{}, err
	}
	r.ActionData = map[string]any{}
	if err := unmarshalJSON(data, &r.ActionData); err != nil {
		return domain.Recommendation{}, fmt.Errorf("decode recommendation: %w", err)
	}
	return r, nil
}

// ListRecommendations filters by status unless status is empty.
func (s *Store) ListRecommendations(ctx context.Context, owner, status string) ([]domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM dna_profile_recommendations WHERE user_id = ?`
	args := []any{owner}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY priority_score DESC, created_at`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recommendation, 0, 4)
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetRecommendationStatus(ctx context.Context, owner, id, status string) (domain.Recommendation, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE dna_profile_recommendations SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
		status, s.timestamp(), id, owner)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("set recommendation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Recommendation{}, apperror.NotFound("recommendation", id)
	}
	r, err := scanRecommendation(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+recommendationColumns+` FROM dna_profile_recommendations WHERE id = ?`), id))
	if err != nil {
		return domain.Recommendation{}, notFound(err, "recommendation", id)
	}
	return r, nil
}

// PurgeEvents deletes events created before the cutoff, across users.
func (s *Store) PurgeEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM dna_profile_events WHERE created_at < ?`), before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge events: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PurgeDismissedRecommendations deletes dismissed recommendations last
// touched before the cutoff.
func (s *Store) PurgeDismissedRecommendations(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM dna_profile_recommendations WHERE status = ? AND updated_at < ?`),
		domain.RecommendationDismissed, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge recommendations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
