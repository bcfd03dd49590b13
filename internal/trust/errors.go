package trust

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidTrustLevel = errors.New("trust level must be between 0 and 4")
)
