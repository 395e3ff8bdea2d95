package butterytoast

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/jefferyq2/ButteryToast/client"
)

var (
	clientJSETag  = assetETag(client.ToastJS)
	indexHTMLETag = assetETag(client.IndexHTML)
)

func assetETag(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}

func (a *App) handleClientJS(w http.ResponseWriter, r *http.Request) {
	a.serveAsset(w, r, client.ToastJS, "application/javascript; charset=utf-8", clientJSETag)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.serveAsset(w, r, client.IndexHTML, "text/html; charset=utf-8", indexHTMLETag)
}

// serveAsset writes an embedded asset with ETag-based caching. In dev
// mode assets are served no-store to avoid stale client behavior while
// iterating; in prod they revalidate via ETag so updates are picked up
// safely without a versioned URL.
func (a *App) serveAsset(w http.ResponseWriter, r *http.Request, body []byte, contentType, etag string) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if a.devMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	// Handle lists: If-None-Match: "abc", W/"def"
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag {
			return true
		}
		if strings.HasPrefix(candidate, "W/") && strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
