//go:build !embed

package web

import "net/http"

// embeddedStaticFS reports no embedded dashboard; the server then looks for
// frontend/dist on disk. Build with -tags=embed to compile the assets in.
func embeddedStaticFS() (http.FileSystem, error) {
	return nil, nil
}
