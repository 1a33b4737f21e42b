// Package httpapi is the HTTP surface consumed by the reverse proxy: the
// forward-auth check endpoint, the login page and the credential submission
// endpoint, plus liveness and metrics.
package httpapi

import (
	"net/http"

	"github.com/jelius-sama/SelfAuth/internal/auth"
	"github.com/jelius-sama/SelfAuth/internal/obs"
	"github.com/jelius-sama/SelfAuth/internal/session"
)

const (
	checkPath  = "/_auth/check"
	loginPath  = "/_auth/login"
	submitPath = "/_auth/submit"

	// originalURIHeader carries the client's original path, set by the
	// reverse proxy when it delegates the decision to us.
	originalURIHeader = "X-SelfAuth-Original-URI"

	cookieName = "auth_token"
)

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	flow     *auth.Service
	sessions *session.Store
	version  string
}

// New registers all routes against the given flow and session store.
func New(flow *auth.Service, sessions *session.Store, version string) *API {
	a := &API{
		mux:      http.NewServeMux(),
		flow:     flow,
		sessions: sessions,
		version:  version,
	}

	a.mux.HandleFunc(checkPath, a.handleCheck)
	a.mux.HandleFunc(loginPath, a.handleLogin)
	a.mux.HandleFunc(submitPath, a.handleSubmit)

	a.mux.HandleFunc("/health", a.handleHealth)
	a.mux.HandleFunc("/version", a.handleVersion)

	// Prometheus metrics. The proxy should not expose this route publicly.
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h) // outermost so the logger sees the id
	return obs.Instrument(h)
}
