package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/pkg/database"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

// FollowRepository implements repository.FollowRepository using PostgreSQL.
type FollowRepository struct {
	db database.DBTX
}

// NewFollowRepository creates a PostgreSQL-backed follow repository.
func NewFollowRepository(db database.DBTX) *FollowRepository {
	return &FollowRepository{db: db}
}

// Toggle removes the edge follower -> followee if it exists and inserts it
// otherwise, inside one transaction.
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (action domain.FollowAction, err error) {
	ctx, end := database.TraceQuery(ctx, "ToggleFollow", "DELETE/INSERT follows")
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin follow toggle: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ct, err := tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return "", mapFollowError(err)
	}

	action = domain.Unfollowed
	if ct.RowsAffected() == 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO follows (follower_id, followee_id, created_at) VALUES ($1, $2, $3)`,
			followerID, followeeID, time.Now().UTC(),
		)
		if err != nil {
			return "", mapFollowError(err)
		}
		action = domain.Followed
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit follow toggle: %w", err)
	}
	return action, nil
}

// ListFollowers returns users following userID, newest first.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error) {
	return r.list(ctx, "ListFollowers", "followee_id", "follower_id", userID, limit, offset)
}

// ListFollowing returns users userID follows, newest first.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error) {
	return r.list(ctx, "ListFollowing", "follower_id", "followee_id", userID, limit, offset)
}

// list pages the edges where matchCol = userID and joins users on joinCol.
// Column names come from the two callers above, never from input.
func (r *FollowRepository) list(ctx context.Context, op, matchCol, joinCol, userID string, limit, offset int) (_ []domain.FollowSummary, _ int, err error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM follows WHERE %s = $1`, matchCol)
	listQuery := fmt.Sprintf(`
		SELECT u.id, u.username, u.profile
		FROM follows f
		JOIN users u ON u.id = f.%s
		WHERE f.%s = $1
		ORDER BY f.created_at DESC, u.id
		LIMIT $2 OFFSET $3`, joinCol, matchCol)

	ctx, end := database.TraceQuery(ctx, op, listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, mapFollowError(err)
	}
	if total == 0 {
		return []domain.FollowSummary{}, 0, nil
	}

	rows, err := r.db.Query(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, mapFollowError(err)
	}
	defer rows.Close()

	summaries := make([]domain.FollowSummary, 0, min(limit, total))
	for rows.Next() {
		var s domain.FollowSummary
		if err = rows.Scan(&s.ID, &s.Username, &s.Profile); err != nil {
			return nil, 0, fmt.Errorf("scan follow summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate follow rows: %w", err)
	}
	return summaries, total, nil
}

func mapFollowError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err), database.IsInvalidTextRepresentation(err):
		return apperrors.NotFound("user")
	case database.IsCheckViolation(err):
		return apperrors.InvalidInput("You cannot follow yourself")
	}
	return fmt.Errorf("follow query: %w", err)
}
