// Package site serves the embedded landing page with a shot tester form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded site to the root of mux. Paths that match no
// embedded file get 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/", http.FileServer(FS()))
}
