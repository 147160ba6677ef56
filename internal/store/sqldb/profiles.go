package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const profileColumns = `id, email, full_name, created_at, updated_at`

func scanProfile(sc scanner) (domain.Profile, error) {
	var (
		p     domain.Profile
		email sql.NullString
	)
	if err := sc.Scan(&p.ID, &email, &p.FullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Profile{}, err
	}
	p.Email = email.String
	return p, nil
}

// EnsureProfile inserts the profile or returns the one that already owns it.
//
// With an email, the upsert targets the email constraint so an existing row
// with that email is adopted and its ID returned. If the insert trips the
// primary key instead (same id, other email), the row is read back by id.
// Without an email the upsert targets the id.
func (s *Store) EnsureProfile(ctx context.Context, id, email, fullName string) (domain.Profile, error) {
	now := s.timestamp()
	email = strings.TrimSpace(strings.ToLower(email))

	target := "id"
	if email != "" {
		target = "email"
	}

	query := s.rebind(fmt.Sprintf(`
		INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (%s) DO UPDATE SET updated_at = excluded.updated_at
		RETURNING %s`, target, profileColumns))

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id, nullString(email), fullName, now, now))
	if err == nil {
		return p, nil
	}
	if isConstraintViolation(err) {
		return s.GetProfile(ctx, id)
	}
	return domain.Profile{}, fmt.Errorf("upsert profile: %w", err)
}

func (s *Store) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	query := s.rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`)
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Profile{}, notFound(err, "profile", id)
	}
	return p, nil
}

// UpdateProfile rewrites email and full name. An email owned by another
// profile is a conflict.
func (s *Store) UpdateProfile(ctx context.Context, id, email, fullName string) (domain.Profile, error) {
	query := s.rebind(`
		UPDATE profiles SET email = ?, full_name = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + profileColumns)

	email = strings.TrimSpace(strings.ToLower(email))
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, nullString(email), fullName, s.timestamp(), id))
	if err != nil {
		if isConstraintViolation(err) {
			return domain.Profile{}, apperror.Conflict("email is already used by another profile")
		}
		return domain.Profile{}, notFound(err, "profile", id)
	}
	return p, nil
}
