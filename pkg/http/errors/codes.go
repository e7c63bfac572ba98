package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Simulation errors
	ErrCodeSimulationExists   = "simulation_exists"
	ErrCodeSimulationNotFound = "simulation_not_found"
	ErrCodeSimulationFailed   = "simulation_failed"
	ErrCodeStateNotFound      = "state_not_found"

	// Poll errors
	ErrCodePollNotFound  = "poll_not_found"
	ErrCodePollInactive  = "poll_inactive"
	ErrCodeAlreadyVoted  = "already_voted"
	ErrCodeInvalidOption = "invalid_option"

	// Persistence errors
	ErrCodeMatchNotFound      = "match_not_found"
	ErrCodeCommentaryNotFound = "commentary_not_found"
	ErrCodeTimelineNotFound   = "timeline_not_found"
	ErrCodeSaveFailed         = "save_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"
)
