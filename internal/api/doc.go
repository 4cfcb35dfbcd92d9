// Package api is the gateway client for the recommendation backend.
//
// [Client.Request] is the one place requests are built: it sets the JSON content headers, a fresh
// X-Request-ID, the bearer token from the session and the client's cookie jar. Non-2xx responses are
// decoded from the backend's error envelope into typed errors:
//
//   - [*RateLimitError] for 429, carrying the limit, current count and absolute reset time
//   - [*APIError] for everything else, with the envelope's message or "HTTP <status>"
//
// Transport failures become [*NetworkError]. Use [IsUnauthorized], [IsRateLimit] and [IsNetwork] to
// classify. The typed methods (GoogleAuth, Profile, Watchlist, Recommend, ...) map one-to-one onto
// backend endpoints.
package api
