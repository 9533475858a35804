// Package httpserver holds the server construction shared by cmd binaries.
package httpserver

import (
	"net/http"
	"time"
)

// readHeaderTimeout bounds slow-header clients; per-request deadlines belong
// to the handlers.
const readHeaderTimeout = 5 * time.Second

// New builds the service's HTTP server around the given router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
