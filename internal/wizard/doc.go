// Package wizard drives the recommendation flow.
//
// A [Flow] moves from welcome through genres, movies, context and deal-breakers to a
// recommendation, with side screens (gallery, profile, watchlist, movie details) reachable once
// signed in. Every remote call that needs a session is preceded by a verification; a failed
// verification returns the flow to welcome rather than showing an error.
//
// Transitions are published on an optional channel so a renderer can show the processing step
// while a request is in flight. The channel is never blocked on; a full channel drops the update.
package wizard
