package auth

import (
	"errors"
	"fmt"
)

// ResourceDisplayName is shown on the host's authorization prompt.
const ResourceDisplayName = "Connect to Slack"

// Callback page texts.
const (
	CallbackSuccess = "Success! You can close this tab."
	CallbackDenied  = "Denied. You can close this tab."
)

// ErrInvalidState is returned when an OAuth state parameter fails
// verification.
var ErrInvalidState = errors.New("invalid oauth state")

// AuthorizationRequiredError asks the host to send the user through the
// authorization URL before retrying.
type AuthorizationRequiredError struct {
	URL                 string
	ResourceDisplayName string
}

func (e *AuthorizationRequiredError) Error() string {
	return fmt.Sprintf("authorization required: %s", e.ResourceDisplayName)
}

// IsAuthorizationRequired reports whether err asks for (re)authorization.
func IsAuthorizationRequired(err error) bool {
	var target *AuthorizationRequiredError
	return errors.As(err, &target)
}
