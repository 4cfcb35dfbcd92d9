package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// CallbackPath is the path the identity provider redirects back to.
const CallbackPath = "/callback"

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// CallbackHandler handles the authorization code callback of a PKCE flow.
type CallbackHandler struct {
	config   *oauth2.Config
	state    string
	verifier string

	resultChan chan OAuthResult
	once       sync.Once
	mu         sync.Mutex
	hit        bool
}

// NewCallbackHandler creates a handler expecting state and exchanging codes with verifier.
func NewCallbackHandler(config *oauth2.Config, state, verifier string) *CallbackHandler {
	return &CallbackHandler{
		config:     config,
		state:      state,
		verifier:   verifier,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes implements [Handler].
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPath}
}

// ServeHTTP validates the state, exchanges the code and reports the outcome on [CallbackHandler.Result].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf("authorization failed: %s - %s", q.Get("error"), q.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code, oauth2.VerifierOption(h.verifier))
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	successPage.Execute(w, nil)
}

// Send delivers result on the channel. Only the first call has an effect.
func (h *CallbackHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Signed in to CineHint</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #111827; }
        .container { text-align: center; background: #1f2937; padding: 2rem; border-radius: 8px; }
        h1 { color: #f59e0b; margin: 0 0 1rem 0; }
        p { color: #d1d5db; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Signed in</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`))
