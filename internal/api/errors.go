package api

import (
	"errors"

	"github.com/forumforge/reputation/internal/karma"
	"github.com/forumforge/reputation/internal/trust"
)

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

// Engine error codes. Server errors (-32000) are retryable; the rest are
// rejected before any mutation.
const (
	ErrServerError     = -32000
	ErrPolicyViolation = -32001
	ErrTargetNotFound  = -32004
)

// mapError translates a domain error into a JSON-RPC code and message
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, karma.ErrInvalidVoteValue),
		errors.Is(err, karma.ErrInvalidTargetType),
		errors.Is(err, trust.ErrInvalidTrustLevel),
		errors.Is(err, errBadParams):
		return ErrInvalidParams, "Invalid params"
	case errors.Is(err, karma.ErrSelfVote):
		return ErrPolicyViolation, "Policy violation"
	case errors.Is(err, karma.ErrTargetNotFound),
		errors.Is(err, karma.ErrUserNotFound),
		errors.Is(err, trust.ErrUserNotFound):
		return ErrTargetNotFound, "Not found"
	default:
		return ErrServerError, "Server error"
	}
}

// errBadParams marks malformed or missing request parameters
var errBadParams = errors.New("invalid parameters")
