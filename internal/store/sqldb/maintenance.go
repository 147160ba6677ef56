package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
)

// reassignable lists the tables whose user_id column follows the profile.
var reassignable = []string{
	"bookmarks",
	"folders",
	"tags",
	"time_capsules",
	"dna_profile_events",
}

// ReassignUserIDs moves every row owned by any of froms to to, in one
// transaction, and reports the summed count per table. Either every source
// moves or none does.
func (s *Store) ReassignUserIDs(ctx context.Context, froms []string, to string) (map[string]int64, error) {
	counts := make(map[string]int64, len(reassignable))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, from := range froms {
			for _, table := range reassignable {
				res, err := tx.ExecContext(ctx, s.rebind(`UPDATE `+table+` SET user_id = ? WHERE user_id = ?`), to, from)
				if err != nil {
					if isConstraintViolation(err) {
						return apperror.Conflict(fmt.Sprintf("cannot reassign %s: the target profile already has conflicting rows", table))
					}
					return fmt.Errorf("reassign %s: %w", table, err)
				}
				n, _ := res.RowsAffected()
				counts[table] += n
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
