package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Commentary is a stored line of match commentary.
type Commentary struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

const commentaryColumns = `id, match_id, text, "timestamp", created_at`

type CommentaryRepository struct {
	db DBTX
}

func NewCommentaryRepository(db DBTX) *CommentaryRepository {
	return &CommentaryRepository{db: db}
}

func scanCommentary(row pgx.Row) (Commentary, error) {
	var c Commentary
	err := row.Scan(&c.ID, &c.MatchID, &c.Text, &c.Timestamp, &c.CreatedAt)
	return c, err
}

// Create stores a line. A nil timestamp means now.
func (r *CommentaryRepository) Create(ctx context.Context, matchID, text string, ts *time.Time) (Commentary, error) {
	c, err := scanCommentary(r.db.QueryRow(ctx, `
		INSERT INTO commentary (id, match_id, text, "timestamp")
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING `+commentaryColumns,
		uuid.NewString(), matchID, text, ts,
	))
	if err != nil {
		return Commentary{}, fmt.Errorf("create commentary: %w", err)
	}
	return c, nil
}

func (r *CommentaryRepository) Get(ctx context.Context, id string) (Commentary, error) {
	c, err := scanCommentary(r.db.QueryRow(ctx, `SELECT `+commentaryColumns+` FROM commentary WHERE id = $1`, id))
	if err != nil {
		return Commentary{}, notFound(err)
	}
	return c, nil
}

// List returns commentary newest first, optionally for one match, and the
// unpaginated total.
func (r *CommentaryRepository) List(ctx context.Context, matchID string, page Page) ([]Commentary, int, error) {
	page = page.Normalize(50)

	rows, err := r.db.Query(ctx, `
		SELECT `+commentaryColumns+` FROM commentary
		WHERE ($1 = '' OR match_id = $1)
		ORDER BY "timestamp" DESC
		LIMIT $2 OFFSET $3`,
		matchID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list commentary: %w", err)
	}
	defer rows.Close()

	lines := make([]Commentary, 0)
	for rows.Next() {
		c, err := scanCommentary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan commentary: %w", err)
		}
		lines = append(lines, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM commentary WHERE ($1 = '' OR match_id = $1)`, matchID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count commentary: %w", err)
	}
	return lines, total, nil
}

func (r *CommentaryRepository) Update(ctx context.Context, id string, text *string, ts *time.Time) (Commentary, error) {
	c, err := scanCommentary(r.db.QueryRow(ctx, `
		UPDATE commentary SET
			text = COALESCE($2, text),
			"timestamp" = COALESCE($3, "timestamp")
		WHERE id = $1
		RETURNING `+commentaryColumns,
		id, text, ts,
	))
	if err != nil {
		return Commentary{}, notFound(err)
	}
	return c, nil
}

func (r *CommentaryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM commentary WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete commentary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
