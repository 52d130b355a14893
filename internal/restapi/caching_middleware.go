package restapi

import (
	"fmt"
	"net/http"
)

const noStore = "no-cache, no-store, must-revalidate"

// cacheHeader is the Cache-Control value for a max-age tier in seconds.
// Results only change when the dataset is refreshed, so successful
// responses can be shared by intermediaries.
func cacheHeader(maxAge int) string {
	if maxAge <= 0 {
		return noStore
	}
	return fmt.Sprintf("public, max-age=%d", maxAge)
}

// CacheControlMiddleware sets Cache-Control on successful responses from
// next. Errors are never cached.
func CacheControlMiddleware(maxAge int, next http.Handler) http.Handler {
	value := cacheHeader(maxAge)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, value: value}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	value   string
	written bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		v := w.value
		if code < 200 || code >= 300 {
			v = noStore
		}
		w.ResponseWriter.Header().Set("Cache-Control", v)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
