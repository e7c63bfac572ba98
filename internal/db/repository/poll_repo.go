package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Poll is a stored poll with its options and live counts.
type Poll struct {
	ID         string       `json:"id"`
	MatchID    string       `json:"matchId"`
	Question   string       `json:"question"`
	IsActive   bool         `json:"isActive"`
	CreatedAt  time.Time    `json:"createdAt"`
	TotalVotes int          `json:"totalVotes"`
	Options    []PollOption `json:"options"`
}

type PollOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	VoteCount int    `json:"voteCount"`
}

// Vote is one stored ballot. VoterID is nil for anonymous votes.
type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	VoterID   *string   `json:"voterId"`
	CreatedAt time.Time `json:"createdAt"`
}

type OptionResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoteCount  int    `json:"voteCount"`
	Percentage int    `json:"percentage"`
}

type PollResults struct {
	PollID     string         `json:"pollId"`
	Question   string         `json:"question"`
	IsActive   bool           `json:"isActive"`
	CreatedAt  time.Time      `json:"createdAt"`
	Results    []OptionResult `json:"results"`
	TotalVotes int            `json:"totalVotes"`
}

type CreatePollParams struct {
	MatchID  string
	Question string
	Options  []string
}

// PollFilter narrows List. Empty MatchID and nil IsActive match everything.
type PollFilter struct {
	MatchID  string
	IsActive *bool
	Page     Page
}

const pollColumns = `id, match_id, question, is_active, created_at`

// PollRepository stores polls, options and votes.
type PollRepository struct {
	db DBTX
}

func NewPollRepository(db DBTX) *PollRepository {
	return &PollRepository{db: db}
}

func scanPoll(row pgx.Row) (Poll, error) {
	var p Poll
	err := row.Scan(&p.ID, &p.MatchID, &p.Question, &p.IsActive, &p.CreatedAt)
	return p, err
}

// Create inserts a poll and its options in one transaction.
func (r *PollRepository) Create(ctx context.Context, params CreatePollParams) (Poll, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Poll{}, fmt.Errorf("begin create poll: %w", err)
	}

	p, err := scanPoll(tx.QueryRow(ctx, `
		INSERT INTO polls (id, match_id, question)
		VALUES ($1, $2, $3)
		RETURNING `+pollColumns,
		uuid.NewString(), params.MatchID, params.Question,
	))
	if err != nil {
		_ = tx.Rollback(ctx)
		return Poll{}, fmt.Errorf("create poll: %w", err)
	}

	p.Options = make([]PollOption, 0, len(params.Options))
	for i, text := range params.Options {
		id := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO poll_options (id, poll_id, text, position)
			VALUES ($1, $2, $3, $4)`,
			id, p.ID, text, i,
		); err != nil {
			_ = tx.Rollback(ctx)
			return Poll{}, fmt.Errorf("create poll option: %w", err)
		}
		p.Options = append(p.Options, PollOption{ID: id, Text: text})
	}

	if err := tx.Commit(ctx); err != nil {
		return Poll{}, fmt.Errorf("commit create poll: %w", err)
	}
	return p, nil
}

// Get fetches a poll with per-option vote counts.
func (r *PollRepository) Get(ctx context.Context, id string) (Poll, error) {
	p, err := scanPoll(r.db.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id))
	if err != nil {
		return Poll{}, notFound(err)
	}
	if err := r.loadOptions(ctx, &p); err != nil {
		return Poll{}, err
	}
	return p, nil
}

// List returns polls newest first and the unpaginated total.
func (r *PollRepository) List(ctx context.Context, filter PollFilter) ([]Poll, int, error) {
	page := filter.Page.Normalize(10)

	rows, err := r.db.Query(ctx, `
		SELECT `+pollColumns+` FROM polls
		WHERE ($1 = '' OR match_id = $1)
		  AND ($2::boolean IS NULL OR is_active = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		filter.MatchID, filter.IsActive, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list polls: %w", err)
	}
	polls, err := collectPolls(rows)
	if err != nil {
		return nil, 0, err
	}
	for i := range polls {
		if err := r.loadOptions(ctx, &polls[i]); err != nil {
			return nil, 0, err
		}
	}

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM polls
		WHERE ($1 = '' OR match_id = $1)
		  AND ($2::boolean IS NULL OR is_active = $2)`,
		filter.MatchID, filter.IsActive,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count polls: %w", err)
	}
	return polls, total, nil
}

// Update changes the question and/or active flag.
func (r *PollRepository) Update(ctx context.Context, id string, question *string, isActive *bool) (Poll, error) {
	p, err := scanPoll(r.db.QueryRow(ctx, `
		UPDATE polls SET
			question = COALESCE($2, question),
			is_active = COALESCE($3, is_active)
		WHERE id = $1
		RETURNING `+pollColumns,
		id, question, isActive,
	))
	if err != nil {
		return Poll{}, notFound(err)
	}
	if err := r.loadOptions(ctx, &p); err != nil {
		return Poll{}, err
	}
	return p, nil
}

func (r *PollRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Vote records a ballot. A voter may vote once per poll; anonymous votes
// (nil voterID) are not limited.
func (r *PollRepository) Vote(ctx context.Context, pollID, optionID string, voterID *string) (Vote, error) {
	p, err := r.Get(ctx, pollID)
	if err != nil {
		return Vote{}, err
	}
	if !p.IsActive {
		return Vote{}, ErrPollInactive
	}
	if !p.hasOption(optionID) {
		return Vote{}, ErrInvalidOption
	}

	var v Vote
	err = r.db.QueryRow(ctx, `
		INSERT INTO votes (id, poll_id, option_id, voter_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, poll_id, option_id, voter_id, created_at`,
		uuid.NewString(), pollID, optionID, voterID,
	).Scan(&v.ID, &v.PollID, &v.OptionID, &v.VoterID, &v.CreatedAt)
	if isUniqueViolation(err) {
		return Vote{}, ErrAlreadyVoted
	}
	if err != nil {
		return Vote{}, fmt.Errorf("record vote: %w", err)
	}
	return v, nil
}

// Results computes per-option counts and rounded percentages.
func (r *PollRepository) Results(ctx context.Context, pollID string) (PollResults, error) {
	p, err := r.Get(ctx, pollID)
	if err != nil {
		return PollResults{}, err
	}

	out := PollResults{
		PollID:     p.ID,
		Question:   p.Question,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		TotalVotes: p.TotalVotes,
		Results:    make([]OptionResult, 0, len(p.Options)),
	}
	for _, o := range p.Options {
		res := OptionResult{ID: o.ID, Text: o.Text, VoteCount: o.VoteCount}
		if p.TotalVotes > 0 {
			res.Percentage = int(math.Round(float64(o.VoteCount) / float64(p.TotalVotes) * 100))
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

func (r *PollRepository) loadOptions(ctx context.Context, p *Poll) error {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.text, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.position
		ORDER BY o.position`,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("load poll options: %w", err)
	}
	defer rows.Close()

	p.Options = make([]PollOption, 0, 3)
	p.TotalVotes = 0
	for rows.Next() {
		var o PollOption
		if err := rows.Scan(&o.ID, &o.Text, &o.VoteCount); err != nil {
			return fmt.Errorf("scan poll option: %w", err)
		}
		p.TotalVotes += o.VoteCount
		p.Options = append(p.Options, o)
	}
	return rows.Err()
}

func (p Poll) hasOption(optionID string) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

func collectPolls(rows pgx.Rows) ([]Poll, error) {
	defer rows.Close()
	polls := make([]Poll, 0)
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}
