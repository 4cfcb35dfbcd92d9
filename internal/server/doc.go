// Package server provides the loopback HTTP pieces used by the browser sign-in flow.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack. Middleware
// wraps handlers in reverse order (last added executes first). A [Handler] mounts itself under the
// patterns it reports from Routes.
//
// # OAuth Callback Handler
//
// [CallbackHandler] validates the state parameter, exchanges the authorization code (with its PKCE
// verifier) for tokens, and sends the result through a channel. It only processes one callback.
//
// # Loopback Flow
//
// [RunLoopback] starts a temporary server on the configured host and port, opens the browser at the
// authorization URL, waits for the callback, the context, or a timeout, and shuts the server down.
package server
