package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"wishboard/internal/domain"
	"wishboard/internal/repository/wish"

	"github.com/google/uuid"
)

type LikesRepository struct {
	db *sql.DB
}

func NewLikesRepository(db *sql.DB) *LikesRepository {
	return &LikesRepository{db: db}
}

// Insert adds the relationship and reports false when the pair already exists.
func (r *LikesRepository) Insert(ctx context.Context, like *domain.LikeRelationship) (bool, error) {
	if !isUUID(like.WishID) {
		return false, wish.MapError(sql.ErrNoRows, "wish", like.WishID)
	}

	query := `
		INSERT INTO wish_likes (id, user_id, wish_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, wish_id) DO NOTHING
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, like.ID, like.UserID, like.WishID, like.CreatedAt)
	if err != nil {
		return false, wish.MapError(err, "like", like.WishID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

func (r *LikesRepository) Delete(ctx context.Context, userID, wishID string) (bool, error) {
	if !isUUID(wishID) {
		return false, nil
	}

	query := `DELETE FROM wish_likes WHERE user_id = $1 AND wish_id = $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, userID, wishID)
	if err != nil {
		return false, wish.MapError(err, "like", wishID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *LikesRepository) Exists(ctx context.Context, userID, wishID string) (bool, error) {
	if !isUUID(wishID) {
		return false, nil
	}

	query := `SELECT EXISTS (SELECT 1 FROM wish_likes WHERE user_id = $1 AND wish_id = $2)`

	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, wishID).Scan(&exists); err != nil {
		return false, wish.MapError(err, "like", wishID)
	}

	return exists, nil
}

func (r *LikesRepository) CountByWish(ctx context.Context, wishID string) (int, error) {
	if !isUUID(wishID) {
		return 0, nil
	}

	query := `SELECT COUNT(*) FROM wish_likes WHERE wish_id = $1`

	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, wishID).Scan(&count); err != nil {
		return 0, wish.MapError(err, "like", wishID)
	}

	return count, nil
}

// isUUID guards uuid columns. A malformed id would fail with 22P02 and abort
// the surrounding transaction, so it is answered as absent without a query.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
