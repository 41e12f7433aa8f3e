/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logging:    zap request log + Prometheus request metrics, keyed by
                 route pattern so IDs do not explode label cardinality
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/debtors/*        Resident registry
  /api/receivables/*    Fees owed to the condominium
  /api/payables/*       Expenses owed by the condominium
  /api/delinquency/*    Dossiers
  /api/billing/*        Batch invoicing
  /api/collections/*    Collection cases
  /api/reports/*        Period ledger
  /api/scenarios/*      Demo scenarios
  /api/admin/*          Admin operations
  /metrics              Prometheus
  /healthz              Liveness
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present. Falls back to
  index.html for client-side routing.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/logger"
	"github.com/warp/condo-ledger/observability/metrics"
)

// RouterOptions configures NewRouter. Zero values are usable.
type RouterOptions struct {
	AllowedOrigins []string
	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics   http.Handler
	StaticDir string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Debtor routes
		r.Route("/debtors", func(r chi.Router) {
			r.Get("/", h.ListDebtors)
			r.Post("/", h.CreateDebtor)
		})

		// Item routes
		r.Route("/receivables", func(r chi.Router) {
			itemRoutes(r, h, core.CollectionReceivables)
			r.Get("/{id}/penalty", h.GetPenalty)
		})
		r.Route("/payables", func(r chi.Router) {
			itemRoutes(r, h, core.CollectionPayables)
		})

		// Delinquency routes
		r.Route("/delinquency", func(r chi.Router) {
			r.Get("/dossiers", h.ListDossiers)
			r.Get("/dossiers.xlsx", h.ExportDossiers)
		})

		// Billing routes
		r.Route("/billing", func(r chi.Router) {
			r.Post("/batch", h.RunBatch)
		})

		// Collection case routes
		r.Route("/collections", func(r chi.Router) {
			r.Get("/statuses", h.ListCaseStatuses)
			r.Get("/cases", h.ListCases)
			r.Post("/cases", h.OpenCase)
			r.Get("/cases/{id}", h.GetCase)
			r.Post("/cases/{id}/status", h.TransitionCase)
			r.Post("/cases/{id}/notes", h.AddCaseNote)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/ledger", h.LedgerReport)
			r.Get("/ledger.xlsx", h.ExportLedger)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", h.RunSweep)
			r.Get("/sweep/status", h.SweepStatus)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetStore)
		})
	})

	// Serve static files (frontend build)
	staticDir := opts.StaticDir
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}

func itemRoutes(r chi.Router, h *Handler, coll core.Collection) {
	r.Get("/", h.ListItems(coll))
	r.Post("/", h.CreateItem(coll))
	r.Get("/{id}", h.GetItem(coll))
	r.Post("/{id}/payment", h.RecordPayment(coll))
}

// requestLogger stores a request-scoped zap logger in the context, logs
// each request and records it in the HTTP metrics.
func requestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLog := base.With(zap.String("request_id", middleware.GetReqID(r.Context())))

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.ObserveHTTP(r.Method, route, status, elapsed)

			reqLog.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
			)
		})
	}
}
