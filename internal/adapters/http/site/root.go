// Package site serves the embedded analyst page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants.
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the embedded analyst page routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/", http.FileServer(FS()))
}
