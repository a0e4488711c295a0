package httpapi

import (
	"net/http"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/config"
	"github.com/adil-khursheed/mysterymessage/internal/logging"
	"github.com/adil-khursheed/mysterymessage/internal/metrics"
	"github.com/adil-khursheed/mysterymessage/internal/session"
	"github.com/adil-khursheed/mysterymessage/internal/store"
	"github.com/adil-khursheed/mysterymessage/internal/suggest"
)

type Server struct {
	cfg       config.Config
	store     store.Store
	suggester suggest.Suggester
	sessions  *session.Manager
	codes     CodeSender
	logger    logging.Logger
	metrics   *metrics.Metrics
	limiter   *rateLimiter
	mux       *http.ServeMux
	bus       *eventBus
	now       func() time.Time
}

type Option func(*Server)

// WithCodeSender replaces the default sender, which only logs the code.
func WithCodeSender(c CodeSender) Option {
	return func(s *Server) { s.codes = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func NewServer(cfg config.Config, st store.Store, sg suggest.Suggester, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		store:     st,
		suggester: sg,
		sessions:  session.NewManager(cfg.SessionSecret, cfg.SecureCookies),
		logger:    logger,
		limiter:   newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		mux:       http.NewServeMux(),
		bus:       newEventBus(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codes == nil {
		s.codes = logCodeSender{logger: logger}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.metrics.Instrument(h, s.routePattern)
	h = loggingMiddleware(s.logger, h)
	h = corsMiddleware(s.cfg.AllowedOrigins, h)
	h = recoverMiddleware(s.logger, h)
	h = requestIDMiddleware(h)
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("POST /api/sign-up", s.handleSignUp)
	s.mux.HandleFunc("POST /api/verify-code", s.handleVerifyCode)
	s.mux.HandleFunc("GET /api/check-username-unique", s.handleCheckUsernameUnique)
	s.mux.HandleFunc("POST /api/sign-in", s.handleSignIn)
	s.mux.HandleFunc("POST /api/sign-out", s.handleSignOut)

	s.mux.HandleFunc("GET /api/get-messages", s.requireSession(s.handleGetMessages))
	s.mux.HandleFunc("DELETE /api/delete-message/{messageId}", s.requireSession(s.handleDeleteMessage))
	s.mux.HandleFunc("GET /api/message-stream", s.requireSession(s.handleMessageStream))
	s.mux.HandleFunc("POST /api/send-message", s.withIdentity(s.rateLimited(s.handleSendMessage)))
	s.mux.HandleFunc("POST /api/suggest-messages", s.withIdentity(s.rateLimited(s.handleSuggestMessages)))
}

// routePattern labels metrics with the matched pattern instead of the raw
// path so message ids do not explode cardinality.
func (s *Server) routePattern(r *http.Request) string {
	_, pattern := s.mux.Handler(r)
	if pattern == "" {
		return "unmatched"
	}
	return pattern
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": s.now().UTC().Format(time.RFC3339Nano),
	})
}
