package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/crm-api/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/crm-api/internal/http/middleware"
	"github.com/wolfman30/crm-api/pkg/logging"
)

type Config struct {
	Logger         *logging.Logger
	Contacts       *handlers.ContactsHandler
	Leads          *handlers.LeadsHandler
	MetricsHandler http.Handler
	// Metrics receives per-route request observations when set.
	Metrics            httpmiddleware.RequestRecorder
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.Tracing(cfg.TracerProvider))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Metrics != nil {
		r.Use(httpmiddleware.Metrics(cfg.Metrics))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		if cfg.Contacts != nil {
			api.Mount("/contacts", cfg.Contacts.Routes())
		}
		if cfg.Leads != nil {
			api.Mount("/leads", cfg.Leads.Routes())
		}
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
