package poll

// Error is a vote or lifecycle rejection with a stable code and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrPollNotFound  = &Error{Code: "poll_not_found", Message: "Poll not found"}
	ErrPollInactive  = &Error{Code: "poll_inactive", Message: "Poll is no longer active"}
	ErrAlreadyVoted  = &Error{Code: "already_voted", Message: "You have already voted"}
	ErrInvalidOption = &Error{Code: "invalid_option", Message: "Invalid option"}
)

// VoteRecordedMessage is reported for an accepted vote.
const VoteRecordedMessage = "Vote recorded successfully"
