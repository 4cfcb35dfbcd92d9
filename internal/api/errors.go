package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// NetworkError is a transport failure: the request never produced an HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response other than a rate limit.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// RateLimitError is a 429 response. ResetTime is absolute.
type RateLimitError struct {
	Message   string
	Limit     int
	Current   int
	ResetTime time.Time
}

func (e *RateLimitError) Error() string { return e.Message }

// HoursRemaining returns the whole hours, rounded up, until ResetTime. Never negative.
func (e *RateLimitError) HoursRemaining(now time.Time) int {
	if e.ResetTime.IsZero() || !e.ResetTime.After(now) {
		return 0
	}
	return int(math.Ceil(e.ResetTime.Sub(now).Hours()))
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsRateLimit reports whether err is a [RateLimitError].
func IsRateLimit(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsNetwork reports whether err is a [NetworkError].
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorEnvelope is the JSON body of a failed response.
type errorEnvelope struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Limit     int             `json:"limit"`
	Current   int             `json:"current"`
	ResetTime json.RawMessage `json:"resetTime"`
}

// parseResetTime accepts an RFC 3339 string or a Unix millisecond number.
func parseResetTime(data json.RawMessage) (time.Time, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" || raw == `""` {
		return time.Time{}, nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}, err
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), nil
		}
		return time.Time{}, fmt.Errorf("invalid reset time %q", s)
	}

	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reset time %s", raw)
	}
	return time.UnixMilli(int64(ms)), nil
}

// decodeError classifies a non-2xx response body. An unreadable resetTime leaves ResetTime zero.
func decodeError(status int, body []byte) error {
	var env errorEnvelope
	decoded := json.Unmarshal(body, &env) == nil

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if !decoded || msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	if status == http.StatusTooManyRequests {
		reset, _ := parseResetTime(env.ResetTime)
		return &RateLimitError{
			Message:   msg,
			Limit:     env.Limit,
			Current:   env.Current,
			ResetTime: reset,
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
