// Package api exposes the story service over HTTP.
package api

import (
	"net/http"

	"livetsstemme/internal/metrics"
	"livetsstemme/internal/story/nest"

	"github.com/gorilla/mux"
)

const defaultMaxUpload = 50 << 20

type Options struct {
	Nest           *nest.Nest
	CORSOrigins    []string
	MaxUploadBytes int64
	// CloneRate is the per client request rate of the voice clone proxy.
	CloneRate  float64
	CloneBurst int

	// TrustedProxies are the peer addresses whose X-Forwarded-For is believed.
	TrustedProxies []string
}

type Server struct {
	nest      *nest.Nest
	origins   map[string]bool
	maxUpload int64
	limiter   *RateLimiter
	router    *mux.Router
}

func New(opts Options) *Server {
	s := &Server{
		nest:      opts.Nest,
		origins:   map[string]bool{},
		maxUpload: opts.MaxUploadBytes,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUpload
	}
	for _, o := range opts.CORSOrigins {
		s.origins[o] = true
	}

	rate, burst := opts.CloneRate, opts.CloneBurst
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 3
	}
	s.limiter = NewRateLimiter(rate, burst, opts.TrustedProxies...)

	s.router = s.routes()
	return s
}

// Handler returns the router wrapped in the outer middleware. CORS and
// recovery sit outside mux so preflight requests never hit a 405.
func (s *Server) Handler() http.Handler {
	return s.recoverer(s.logRequests(s.cors(s.router)))
}

// Limiter is exposed so the caller can schedule its cleanup.
func (s *Server) Limiter() *RateLimiter {
	return s.limiter
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/signout", s.handleSignOut).Methods(http.MethodPost)

	api.HandleFunc("/me", s.authed(s.handleGetMe)).Methods(http.MethodGet)
	api.HandleFunc("/me", s.authed(s.handleUpdateMe)).Methods(http.MethodPatch)
	api.HandleFunc("/me", s.authed(s.handleDeleteMe)).Methods(http.MethodDelete)
	api.HandleFunc("/me/family", s.authed(s.handleListFamily)).Methods(http.MethodGet)
	api.HandleFunc("/me/family", s.authed(s.handleInvite)).Methods(http.MethodPost)
	api.HandleFunc("/me/family/{id}/respond", s.authed(s.handleRespond)).Methods(http.MethodPost)
	api.HandleFunc("/me/family/{id}", s.authed(s.handleRemoveMember)).Methods(http.MethodDelete)
	api.HandleFunc("/family/{ownerID}/stories", s.authed(s.handleFamilyStories)).Methods(http.MethodGet)

	api.HandleFunc("/stories", s.authed(s.handleListStories)).Methods(http.MethodGet)
	api.HandleFunc("/stories", s.authed(s.handleSaveStory)).Methods(http.MethodPost)
	api.HandleFunc("/stories/record", s.authed(s.handleRecord)).Methods(http.MethodPost)
	api.HandleFunc("/stories/{id}", s.authed(s.handleGetStory)).Methods(http.MethodGet)
	api.HandleFunc("/stories/{id}", s.authed(s.handleUpdateStory)).Methods(http.MethodPut)
	api.HandleFunc("/stories/{id}", s.authed(s.handleDeleteStory)).Methods(http.MethodDelete)
	api.HandleFunc("/stories/{id}/play", s.authed(s.handlePlay)).Methods(http.MethodPost)
	api.HandleFunc("/stories/{id}/audio", s.authed(s.handleAudio)).Methods(http.MethodGet)
	api.HandleFunc("/stories/{id}/share", s.authed(s.handleShare)).Methods(http.MethodPut)
	api.HandleFunc("/shared/{id}", s.handleShared).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", s.authed(s.handleDashboard)).Methods(http.MethodGet)
	api.HandleFunc("/prompts", s.handlePrompts).Methods(http.MethodGet)
	api.HandleFunc("/tags/suggested", s.handleSuggestedTags).Methods(http.MethodGet)
	api.Handle("/voice-clone", s.limiter.Handler(http.HandlerFunc(s.handleVoiceClone))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
