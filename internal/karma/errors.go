package karma

import "errors"

// Sentinel errors surfaced across the engine boundary. Validation and
// policy errors are rejected before any mutation.
var (
	ErrInvalidVoteValue  = errors.New("vote value must be +1 or -1")
	ErrInvalidTargetType = errors.New("target type must be post or comment")
	ErrSelfVote          = errors.New("voting on own content is not allowed")
	ErrTargetNotFound    = errors.New("vote target not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrCommunityNotFound = errors.New("community reputation not found")
)
