package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wishboard/internal/domain"
	"wishboard/internal/repository/wish"

	"github.com/lib/pq"
)

const selectWish = `
	SELECT w.id, w.title, w.description, w.image_url, w.link, w.tags, w.status,
	       w.likes, w.user_id, w.created_at, w.updated_at,
	       COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''),
	       EXISTS (SELECT 1 FROM wish_likes l WHERE l.wish_id = w.id AND l.user_id = $1)
	FROM wishes w
	LEFT JOIN profiles p ON p.id = w.user_id
`

type WishesRepository struct {
	db *sql.DB
}

func NewWishesRepository(db *sql.DB) *WishesRepository {
	return &WishesRepository{db: db}
}

func (r *WishesRepository) Create(ctx context.Context, w *domain.Wish) error {
	query := `
		INSERT INTO wishes (
			id, title, description, image_url, link, tags,
			status, likes, user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		w.ID,
		w.Title,
		w.Description,
		w.ImageURL,
		w.Link,
		pq.Array(w.Tags),
		nullStatus(w.Status),
		w.LikeCount,
		w.OwnerID,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return wish.MapError(err, "wish", w.ID)
	}

	return nil
}

func (r *WishesRepository) GetByID(ctx context.Context, id, viewerID string) (*domain.Wish, error) {
	if !isUUID(id) {
		return nil, wish.MapError(sql.ErrNoRows, "wish", id)
	}

	query := selectWish + ` WHERE w.id = $2`

	w, err := scanWish(conn(ctx, r.db).QueryRowContext(ctx, query, viewerID, id))
	if err != nil {
		return nil, wish.MapError(err, "wish", id)
	}

	return w, nil
}

func (r *WishesRepository) List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error) {
	query := selectWish + `
		WHERE ($2 = '' OR w.user_id = $2)
		ORDER BY w.created_at DESC, w.id DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, filter.ViewerID, filter.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishes: %w", err)
	}
	defer rows.Close()

	wishes := make([]domain.Wish, 0)
	for rows.Next() {
		w, err := scanWish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish: %w", err)
		}
		wishes = append(wishes, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishes: %w", err)
	}

	return wishes, nil
}

// Lock takes a row lock on the wish for the rest of the transaction and
// returns its owner.
func (r *WishesRepository) Lock(ctx context.Context, id string) (string, error) {
	if !isUUID(id) {
		return "", wish.MapError(sql.ErrNoRows, "wish", id)
	}

	query := `SELECT user_id FROM wishes WHERE id = $1 FOR UPDATE`

	var ownerID string
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&ownerID); err != nil {
		return "", wish.MapError(err, "wish", id)
	}

	return ownerID, nil
}

func (r *WishesRepository) Update(ctx context.Context, id string, in domain.UpdateWishInput, updatedAt time.Time) error {
	if !isUUID(id) {
		return wish.MapError(sql.ErrNoRows, "wish", id)
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.ImageURL != nil {
		add("image_url", *in.ImageURL)
	}
	if in.Link != nil {
		add("link", *in.Link)
	}
	if in.Tags != nil {
		add("tags", pq.Array(*in.Tags))
	}
	if in.Status != nil {
		add("status", nullStatus(*in.Status))
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE wishes SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return wish.MapError(err, "wish", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return wish.MapError(sql.ErrNoRows, "wish", id)
	}

	return nil
}

// Delete removes the wish; wish_likes rows go with it through ON DELETE CASCADE.
func (r *WishesRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}

	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM wishes WHERE id = $1`, id)
	if err != nil {
		return false, wish.MapError(err, "wish", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// SyncLikeCount rewrites the cached counter from wish_likes and returns it.
// The row lock is taken in its own statement so the count that follows reads
// a snapshot that includes every toggle committed before the lock was granted.
// NO KEY UPDATE does not conflict with the KEY SHARE lock held by concurrent
// like inserts, so two togglers never deadlock here.
func (r *WishesRepository) SyncLikeCount(ctx context.Context, id string) (int, error) {
	if !isUUID(id) {
		return 0, wish.MapError(sql.ErrNoRows, "wish", id)
	}

	q := conn(ctx, r.db)

	var locked string
	if err := q.QueryRowContext(ctx, `SELECT id FROM wishes WHERE id = $1 FOR NO KEY UPDATE`, id).Scan(&locked); err != nil {
		return 0, wish.MapError(err, "wish", id)
	}

	query := `
		UPDATE wishes
		SET likes = (SELECT COUNT(*) FROM wish_likes WHERE wish_id = $1)
		WHERE id = $1
		RETURNING likes
	`

	var likes int
	if err := q.QueryRowContext(ctx, query, id).Scan(&likes); err != nil {
		return 0, wish.MapError(err, "wish", id)
	}

	return likes, nil
}

// ListDrifted returns wishes whose cached counter differs from wish_likes.
func (r *WishesRepository) ListDrifted(ctx context.Context) ([]string, error) {
	query := `
		SELECT w.id
		FROM wishes w
		LEFT JOIN wish_likes l ON l.wish_id = w.id
		GROUP BY w.id, w.likes
		HAVING w.likes <> COUNT(l.id)
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drifted wishes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan wish id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drifted wishes: %w", err)
	}

	return ids, nil
}

func (r *WishesRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, p.ID, p.FullName, p.AvatarURL, p.UpdatedAt); err != nil {
		return wish.MapError(err, "profile", p.ID)
	}

	return nil
}

func (r *WishesRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, full_name, avatar_url, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p domain.Profile
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, wish.MapError(err, "profile", id)
	}

	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWish(row scanner) (*domain.Wish, error) {
	var (
		w      domain.Wish
		status sql.NullString
	)

	err := row.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&w.ImageURL,
		&w.Link,
		pq.Array(&w.Tags),
		&status,
		&w.LikeCount,
		&w.OwnerID,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.OwnerName,
		&w.OwnerAvatarURL,
		&w.IsLiked,
	)
	if err != nil {
		return nil, err
	}

	w.Status = domain.WishStatus(status.String)
	if w.Tags == nil {
		w.Tags = []string{}
	}

	return &w, nil
}

func nullStatus(s domain.WishStatus) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != domain.StatusNone}
}
