package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired, please sign in again")
	ErrNoCredential     = fmt.Errorf("no credential received from identity provider")
	ErrSignInDeclined   = fmt.Errorf("sign-in declined")
	ErrProviderNotReady = fmt.Errorf("identity provider not initialized")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMovieNotFound      = fmt.Errorf("movie not found")

	// Flow errors
	ErrStepBlocked  = fmt.Errorf("step requirements not met")
	ErrNoTransition = fmt.Errorf("no transition from current step")
	ErrBusy         = fmt.Errorf("action already in progress")
	ErrPartialMove  = fmt.Errorf("move partially applied")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
