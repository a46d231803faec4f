package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stock/internal/inventory"
	"stock/internal/log"
	"stock/internal/middleware/ratelimit"
	"stock/internal/middleware/security"
	"stock/internal/middleware/trace"
	"stock/internal/stock"
	appweb "stock/web"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
}

// Server renders the stock page and its HTMX partials.
type Server struct {
	http.Server
	templates *template.Template
	store     *inventory.Store
	probe     stock.ItemLister

	logger           *log.Logger
	errors           *log.StructuredLogger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// appMetrics counts domain events for /metrics
type appMetrics struct {
	uptime           time.Time
	itemsCreated     int64
	quantityAdjusted int64
	itemsRemoved     int64
	refreshes        int64
	backendErrors    int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
// probe is listed by /readyz to check the backend.
func NewServer(addr string, store *inventory.Store, probe stock.ItemLister, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:            store,
		probe:            probe,
		logger:           logger,
		errors:           log.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(rlConfig),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(middleware.GetReqID))
	r.Use(s.traceMiddleware.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.securityDetector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited,
			http.MethodPost, http.MethodPatch, http.MethodDelete))

		r.Get("/", s.handleIndex)
		r.Get("/views/{view}", s.handleSelectView)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Post("/items/{id}/quantity", s.handleAdjustQuantity)
		r.Delete("/items/{id}", s.handleDeleteItem)
	})

	return r
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many changes, please wait a moment.").
		TriggerErrorNotification("Too many changes, please wait a moment.").
		Write(w)
}
