package myhttp

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// HostnameWithScheme prefers the configured base-url and falls back to the host of the request.
func HostnameWithScheme(r *http.Request, baseURL string) string {
	if baseURL != "" {
		return strings.TrimSuffix(baseURL, "/")
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// CORS allows any origin to call the wrapped handler and answers preflight requests itself.
func CORS(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"}),
	)(next)
}

func IsFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
