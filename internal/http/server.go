package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"cardspend/internal/log"
	"cardspend/internal/middleware/ratelimit"
	"cardspend/internal/middleware/security"
	"cardspend/internal/services"
)

// Pinger reports datastore readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP surface settings.
type Config struct {
	Addr               string
	JWTSecret          string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	AllowedOrigins     []string
}

type Server struct {
	http.Server
	svc         *services.Services
	db          Pinger
	rateLimiter *ratelimit.Limiter
	clientIPs   *security.ClientIPResolver
	logger      zerolog.Logger
}

func NewServer(cfg Config, svc *services.Services, db Pinger, logger zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		svc:       svc,
		db:        db,
		clientIPs: security.NewClientIPResolver(),
		logger:    log.WithComponent(logger, log.ComponentHTTP),
	}
	if cfg.RateLimitPerMinute > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(s.limitWrites)
		r.Use(authenticate([]byte(cfg.JWTSecret)))

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", s.handleCreatePurchase)
			r.Get("/", s.handleListPurchases)
			r.Get("/{id}", s.handleGetPurchase)
			r.Patch("/{id}", s.handleUpdatePurchase)
			r.Delete("/{id}", s.handleDeletePurchase)
			r.Get("/{id}/installments", s.handleListPurchaseInstallments)
		})

		r.Get("/installments/{id}", s.handleGetInstallment)
		r.Patch("/installments/{id}", s.handleUpdateInstallment)

		r.Route("/statements", func(r chi.Router) {
			r.Get("/", s.handleListStatements)
			r.Post("/", s.handleCreateStatement)
			r.Get("/by-card/{creditCardId}", s.handleListStatementsByCard)
			r.Get("/{id}", s.handleGetStatement)
			r.Patch("/{id}", s.handleUpdateStatement)
			r.Delete("/{id}", s.handleDeleteStatement)
		})

		r.Route("/credit-cards", func(r chi.Router) {
			r.Post("/", s.handleCreateCreditCard)
			r.Get("/", s.handleListCreditCards)
			r.Patch("/{id}", s.handleUpdateCreditCard)
		})

		r.Post("/payment-methods", s.handleCreatePaymentMethod)
	})

	return r
}

// limitWrites rate limits mutating requests per client IP. Reads are not
// limited.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	limited := s.rateLimiter.Middleware(s.clientIPs.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Warn().
			Str(log.FieldClientIP, s.clientIPs.ClientIP(r)).
			Str(log.FieldPath, r.URL.Path).
			Msg("Rate limit exceeded")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
			Kind:    "rate_limited",
			Message: "rate limit exceeded, please try again later",
		}})
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
