package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserTimeline is a user's edited copy of a match script, stored as JSON.
type UserTimeline struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	MatchID      string          `json:"matchId"`
	TimelineData json.RawMessage `json:"timelineData"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

const userTimelineColumns = `id, user_id, match_id, timeline_data, created_at, updated_at`

type TimelineRepository struct {
	db DBTX
}

func NewTimelineRepository(db DBTX) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func scanUserTimeline(row pgx.Row) (UserTimeline, error) {
	var t UserTimeline
	err := row.Scan(&t.ID, &t.UserID, &t.MatchID, &t.TimelineData, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TimelineRepository) Get(ctx context.Context, userID, matchID string) (UserTimeline, error) {
	t, err := scanUserTimeline(r.db.QueryRow(ctx, `
		SELECT `+userTimelineColumns+` FROM user_timelines
		WHERE user_id = $1 AND match_id = $2`,
		userID, matchID,
	))
	if err != nil {
		return UserTimeline{}, notFound(err)
	}
	return t, nil
}

// Save inserts or replaces the user's timeline for a match.
func (r *TimelineRepository) Save(ctx context.Context, userID, matchID string, data json.RawMessage) (UserTimeline, error) {
	t, err := scanUserTimeline(r.db.QueryRow(ctx, `
		INSERT INTO user_timelines (id, user_id, match_id, timeline_data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, match_id)
		DO UPDATE SET timeline_data = EXCLUDED.timeline_data, updated_at = NOW()
		RETURNING `+userTimelineColumns,
		uuid.NewString(), userID, matchID, data,
	))
	if err != nil {
		return UserTimeline{}, fmt.Errorf("save user timeline: %w", err)
	}
	return t, nil
}

func (r *TimelineRepository) Delete(ctx context.Context, userID, matchID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_timelines WHERE user_id = $1 AND match_id = $2`, userID, matchID)
	if err != nil {
		return fmt.Errorf("delete user timeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
