package interfaces

import "net/http"

// HTTPHandler is the surface cmd/server wires into the HTTP server.
type HTTPHandler interface {
	http.Handler
}
