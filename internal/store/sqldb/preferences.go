package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// GetPreferences returns the saved preferences or the defaults.
func (s *Store) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	var p domain.Preferences
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT theme, view_mode FROM user_preferences WHERE user_id = ?`), userID,
	).Scan(&p.Theme, &p.ViewMode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultPreferences, nil
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *Store) UpsertPreferences(ctx context.Context, userID string, p domain.Preferences) (domain.Preferences, error) {
	query := s.rebind(`
		INSERT INTO user_preferences (user_id, theme, view_mode, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			theme = excluded.theme,
			view_mode = excluded.view_mode,
			updated_at = excluded.updated_at
		RETURNING theme, view_mode`)

	var out domain.Preferences
	if err := s.db.QueryRowContext(ctx, query, userID, p.Theme, p.ViewMode, s.timestamp()).Scan(&out.Theme, &out.ViewMode); err != nil {
		return domain.Preferences{}, fmt.Errorf("upsert preferences: %w", err)
	}
	return out, nil
}
