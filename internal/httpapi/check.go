package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jelius-sama/SelfAuth/internal/obs"
	"github.com/jelius-sama/SelfAuth/internal/web"
)

// handleCheck is the forward-auth decision point: the reverse proxy calls it
// for every protected request and forwards our verdict.
func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	token, ok := tokenFromCookies(r)
	if !ok || !a.sessions.IsValid(token) {
		target := sanitizeRedirectPath(r.Header.Get(originalURIHeader))
		obs.AuthDecisions.WithLabelValues("redirected").Inc()
		w.Header().Set("Location", loginPath+"?redirect="+url.QueryEscape(target))
		w.WriteHeader(http.StatusFound)
		return
	}

	obs.AuthDecisions.WithLabelValues("allowed").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(web.AuthorizedPage)
}

// tokenFromCookies scans the request's Cookie headers for the auth token;
// the first match wins.
func tokenFromCookies(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// sanitizeRedirectPath clamps the proxy-forwarded original path to a safe
// same-origin target. Anything that would loop back into the check endpoint,
// is not an absolute path, or is a protocol-relative URL ("//evil.com")
// collapses to "/".
func sanitizeRedirectPath(raw string) string {
	path := strings.TrimSpace(raw)
	switch {
	case path == "":
		return "/"
	case strings.HasPrefix(path, checkPath):
		return "/"
	case !strings.HasPrefix(path, "/"):
		return "/"
	case strings.HasPrefix(path, "//"):
		return "/"
	default:
		return path
	}
}
