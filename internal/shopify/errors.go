package shopify

import "errors"

// ErrNotConfigured is returned when the client is used without a store
// domain or access token.
var ErrNotConfigured = errors.New("shopify: client not configured")

// UserError is a platform-reported user error (stale cart id, invalid
// variant, and similar). It carries the first message the platform reported.
type UserError struct {
	Field   []string
	Message string
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// IsUserError reports whether err wraps a platform-reported user error.
func IsUserError(err error) bool {
	var target *UserError
	return errors.As(err, &target)
}
