package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedToken     = errors.New("malformed token")
	ErrCannotFollowSelf   = errors.New("cannot follow yourself")
	ErrCannotUnfollowSelf = errors.New("cannot unfollow yourself")
	ErrAlreadyFollowing   = errors.New("already following this user")
	ErrNotFollowing       = errors.New("not following this user")
)

// FieldConflictError reports a uniqueness conflict on a specific logical
// field ("username", "email"). It lets handlers tell the caller which
// input collided without exposing constraint names.
type FieldConflictError struct {
	Field string
}

func (e FieldConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// IsFieldConflict reports whether err is a FieldConflictError and, if so,
// which field collided.
func IsFieldConflict(err error) (field string, ok bool) {
	var fc FieldConflictError
	if errors.As(err, &fc) {
		return fc.Field, true
	}
	return "", false
}
