package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const relationshipColumns = `id, bookmark_id, related_bookmark_id, relationship_type, created_by, created_at`

func scanRelationship(sc scanner) (domain.Relationship, error) {
	var r domain.Relationship
	err := sc.Scan(&r.ID, &r.BookmarkID, &r.RelatedBookmarkID, &r.RelationshipType, &r.CreatedBy, &r.CreatedAt)
	return r, err
}

// CreateRelationship inserts the edge a -> b. When the pair already exists
// the stored edge is returned with created=false and nothing is written.
func (s *Store) CreateRelationship(ctx context.Context, r domain.Relationship) (domain.Relationship, bool, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.RelationshipType == "" {
		r.RelationshipType = domain.RelationRelated
	}
	r.CreatedAt = s.timestamp()

	query := s.rebind(`
		INSERT INTO bookmark_relationships (` + relationshipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (bookmark_id, related_bookmark_id) DO NOTHING
		RETURNING ` + relationshipColumns)

	created, err := scanRelationship(s.db.QueryRowContext(ctx, query,
		r.ID, r.BookmarkID, r.RelatedBookmarkID, r.RelationshipType, r.CreatedBy, r.CreatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Relationship{}, false, fmt.Errorf("insert relationship: %w", err)
	}

	existing, err := scanRelationship(s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+relationshipColumns+` FROM bookmark_relationships
		WHERE bookmark_id = ? AND related_bookmark_id = ?`), r.BookmarkID, r.RelatedBookmarkID))
	if err != nil {
		return domain.Relationship{}, false, fmt.Errorf("load existing relationship: %w", err)
	}
	return existing, false, nil
}

// RelationshipsForBookmark returns every edge touching id, seen from id.
func (s *Store) RelationshipsForBookmark(ctx context.Context, id string) ([]domain.Edge, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, related_bookmark_id, relationship_type, 'outgoing', created_at
		FROM bookmark_relationships WHERE bookmark_id = ?
		UNION ALL
		SELECT id, bookmark_id, relationship_type, 'incoming', created_at
		FROM bookmark_relationships WHERE related_bookmark_id = ?
		ORDER BY 5 DESC`), id, id)
	if err != nil {
		return nil, fmt.Errorf("relationships for bookmark: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.Edge, 0, 4)
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.RelationshipID, &e.OtherID, &e.RelationshipType, &e.Direction, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if e.OtherID == id {
			continue
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DeleteRelationship removes the edge between a and b in either direction.
func (s *Store) DeleteRelationship(ctx context.Context, a, b string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM bookmark_relationships
		WHERE (bookmark_id = ? AND related_bookmark_id = ?)
		   OR (bookmark_id = ? AND related_bookmark_id = ?)`), a, b, b, a)
	if err != nil {
		return 0, fmt.Errorf("delete relationship: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
