package server

import "net/http"

// Middleware decorates the loopback handler chain.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that registers itself on a [BasicRouter] under its own patterns.
type Handler interface {
	http.Handler
	Routes() []string
}
