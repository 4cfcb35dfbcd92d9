package identity

import (
	"context"
	"sync"
)

// Moment classifies the outcome of a prompt.
type Moment int

const (
	MomentDisplayed Moment = iota
	MomentNotDisplayed
	MomentSkipped
	MomentDismissed
)

func (m Moment) String() string {
	switch m {
	case MomentDisplayed:
		return "displayed"
	case MomentNotDisplayed:
		return "not_displayed"
	case MomentSkipped:
		return "skipped"
	case MomentDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Reasons reported alongside a [Moment].
const (
	ReasonMissingClientID    = "missing_client_id"
	ReasonNoSession          = "opt_out_or_no_session"
	ReasonAutoCancel         = "auto_cancel"
	ReasonUserCancel         = "user_cancel"
	ReasonIssuingFailed      = "issuing_failed"
	ReasonCredentialReturned = "credential_returned"
)

// Notification reports a prompt moment.
type Notification struct {
	Moment Moment
	Reason string
}

// NeedsFallback reports whether the explicit sign-in flow should be offered.
func (n Notification) NeedsFallback() bool {
	return n.Moment == MomentNotDisplayed || n.Moment == MomentSkipped
}

// CredentialResponse is what the provider hands to the callback.
//
// Depending on the flow the credential arrives in one of several fields.
type CredentialResponse struct {
	Credential string `json:"credential,omitempty"`
	IDToken    string `json:"id_token,omitempty"`
	Token      string `json:"token,omitempty"`
	SelectBy   string `json:"select_by,omitempty"`
}

// Extract returns the first non-empty credential field.
func (r CredentialResponse) Extract() string {
	for _, v := range []string{r.Credential, r.IDToken, r.Token} {
		if v != "" {
			return v
		}
	}
	return ""
}

// InitConfig registers the client with the provider.
type InitConfig struct {
	ClientID           string
	Callback           func(CredentialResponse)
	AutoSelect         bool
	CancelOnTapOutside bool
}

// NewInitConfig returns the configuration used for sign-in: no automatic account selection and
// the prompt closes when the user looks away.
func NewInitConfig(clientID string, callback func(CredentialResponse)) InitConfig {
	return InitConfig{
		ClientID:           clientID,
		Callback:           callback,
		AutoSelect:         false,
		CancelOnTapOutside: true,
	}
}

// Provider is an identity provider integration.
type Provider interface {
	// Load fetches whatever the provider needs before it can be initialized. Safe to call repeatedly.
	Load(ctx context.Context) error
	Initialize(cfg InitConfig) error
	// Prompt returns immediately; notify and the credential callback run later on another goroutine.
	Prompt(ctx context.Context, notify func(Notification))
	// RenderButton runs the explicit flow and blocks until it finishes or ctx is done.
	RenderButton(ctx context.Context) error
	Cancel()
}

// Loader runs a load function until it first succeeds. Later calls return nil immediately.
type Loader struct {
	mu    sync.Mutex
	ready bool
	load  func(ctx context.Context) error
}

// NewLoader wraps load.
func NewLoader(load func(ctx context.Context) error) *Loader {
	return &Loader{load: load}
}

// Load runs the load function unless it already succeeded. Concurrent callers wait for the attempt in progress.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return nil
	}
	if err := l.load(ctx); err != nil {
		return err
	}
	l.ready = true
	return nil
}

// Ready reports whether a load has succeeded.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}
