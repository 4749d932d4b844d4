package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"vmreport/internal/backend"
	"vmreport/internal/middleware/ratelimit"
	"vmreport/internal/middleware/security"
	"vmreport/internal/middleware/trace"
	"vmreport/internal/services"
	appweb "vmreport/web"
)

type Server struct {
	http.Server
	templates *template.Template
	backend   backend.Backend
	reports   *services.ReportService

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, be backend.Backend, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		backend:     be,
		reports:     reports,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	limited := s.rateLimiter.Middleware(extractClientIP, nil)

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/ui/report-table", s.handleReportTable)
	mux.HandleFunc("/api/report", s.handleReportJSON)
	mux.HandleFunc("/api/report/chart", s.handleReportChart)
	mux.Handle("/events", limited(http.HandlerFunc(s.handleCreateEvent)))
	mux.Handle("/api/events", limited(http.HandlerFunc(s.handleCreateEventJSON)))
	mux.HandleFunc("/api/events/recent", s.handleRecentEvents)

	// Tracing wraps security headers, which wrap the mux.
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)
	handler := tracer.Middleware(headers.Middleware(mux))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The backend is wired at startup; a failing count query means the
	// store is not usable yet.
	if _, err := s.backend.CountsByUserMonth(r.Context(), "2000-01"); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
