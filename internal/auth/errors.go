package auth

import (
	"errors"
	"fmt"
)

// AuthError reasons.
const (
	ReasonNoCredential        = "no credential"
	ReasonExchangeFailed      = "exchange failed"
	ReasonProviderUnavailable = "provider unavailable"
	ReasonSessionExpired      = "session expired"
	ReasonFlowFailed          = "sign-in flow failed"
)

// AuthError is an identity-provider or credential-exchange failure.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an [AuthError] with the given reason, or any reason when reason is "".
func IsAuthError(err error, reason string) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	return reason == "" || authErr.Reason == reason
}
