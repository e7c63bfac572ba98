package model

import "time"

// DrawOptionText labels the third option of every match poll.
const DrawOptionText = "Draw"

// PollQuestion is the fixed question asked for every match.
const PollQuestion = "Who will win this match?"

// Poll is the fan prediction poll attached to a running match.
type Poll struct {
	ID         string       `json:"id"`
	MatchID    string       `json:"matchId"`
	Question   string       `json:"question"`
	IsActive   bool         `json:"isActive"`
	TotalVotes int          `json:"totalVotes"`
	CreatedAt  time.Time    `json:"createdAt"`
	EndedAt    *time.Time   `json:"endedAt,omitempty"`
	Options    []PollOption `json:"options"`
}

// PollOption is one answer; Votes is only populated in the wire shape.
type PollOption struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	VoteCount int        `json:"voteCount"`
	Votes     []VoteStub `json:"votes"`
}

// VoteStub is an anonymous placeholder per vote for frontend compatibility.
type VoteStub struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserVote records one user's choice in one match poll.
type UserVote struct {
	UserID   string    `json:"userId"`
	OptionID string    `json:"optionId"`
	VotedAt  time.Time `json:"votedAt"`
}
