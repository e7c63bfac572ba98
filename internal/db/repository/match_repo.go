package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MatchStatus is the lifecycle of a stored fixture.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchLive      MatchStatus = "LIVE"
	MatchFinished  MatchStatus = "FINISHED"
	MatchCancelled MatchStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchLive, MatchFinished, MatchCancelled:
		return true
	}
	return false
}

// Match is a stored fixture.
type Match struct {
	ID        string      `json:"id"`
	TeamA     string      `json:"teamA"`
	TeamB     string      `json:"teamB"`
	ScoreA    int         `json:"scoreA"`
	ScoreB    int         `json:"scoreB"`
	Status    MatchStatus `json:"status"`
	StartTime *time.Time  `json:"startTime"`
	EndTime   *time.Time  `json:"endTime"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type CreateMatchParams struct {
	TeamA     string
	TeamB     string
	Status    MatchStatus
	StartTime *time.Time
}

// UpdateMatchParams changes only the non-nil fields.
type UpdateMatchParams struct {
	TeamA     *string
	TeamB     *string
	ScoreA    *int
	ScoreB    *int
	Status    *MatchStatus
	StartTime *time.Time
	EndTime   *time.Time
}

const matchColumns = `id, team_a, team_b, score_a, score_b, status, start_time, end_time, created_at, updated_at`

// MatchRepository contains DB helpers for matches.
type MatchRepository struct {
	db DBTX
}

// NewMatchRepository constructs a new match repository.
func NewMatchRepository(db DBTX) *MatchRepository {
	return &MatchRepository{db: db}
}

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.TeamA, &m.TeamB, &m.ScoreA, &m.ScoreB, &m.Status, &m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create persists a new match row.
func (r *MatchRepository) Create(ctx context.Context, params CreateMatchParams) (Match, error) {
	if params.Status == "" {
		params.Status = MatchScheduled
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO matches (id, team_a, team_b, status, start_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+matchColumns,
		uuid.NewString(), params.TeamA, params.TeamB, params.Status, params.StartTime,
	)
	m, err := scanMatch(row)
	if err != nil {
		return Match{}, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// Get fetches one match.
func (r *MatchRepository) Get(ctx context.Context, id string) (Match, error) {
	m, err := scanMatch(r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		return Match{}, notFound(err)
	}
	return m, nil
}

// List returns matches newest first, optionally filtered by status, and the
// unpaginated total.
func (r *MatchRepository) List(ctx context.Context, status MatchStatus, page Page) ([]Match, int, error) {
	page = page.Normalize(10)

	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE ($1 = '' OR status = $1)
		ORDER BY start_time DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3`,
		string(status), page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list matches: %w", err)
	}
	matches, err := collectMatches(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE ($1 = '' OR status = $1)`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}
	return matches, total, nil
}

// Live returns every match currently marked LIVE.
func (r *MatchRepository) Live(ctx context.Context) ([]Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = $1
		ORDER BY start_time DESC NULLS LAST`,
		string(MatchLive),
	)
	if err != nil {
		return nil, fmt.Errorf("list live matches: %w", err)
	}
	return collectMatches(rows)
}

// Update applies the non-nil fields of params.
func (r *MatchRepository) Update(ctx context.Context, id string, params UpdateMatchParams) (Match, error) {
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}
	row := r.db.QueryRow(ctx, `
		UPDATE matches SET
			team_a = COALESCE($2, team_a),
			team_b = COALESCE($3, team_b),
			score_a = COALESCE($4, score_a),
			score_b = COALESCE($5, score_b),
			status = COALESCE($6, status),
			start_time = COALESCE($7, start_time),
			end_time = COALESCE($8, end_time),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+matchColumns,
		id, params.TeamA, params.TeamB, params.ScoreA, params.ScoreB, status, params.StartTime, params.EndTime,
	)
	m, err := scanMatch(row)
	if err != nil {
		return Match{}, notFound(err)
	}
	return m, nil
}

// Delete removes a match and, by cascade, its polls and commentary.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectMatches(rows pgx.Rows) ([]Match, error) {
	defer rows.Close()
	matches := make([]Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
