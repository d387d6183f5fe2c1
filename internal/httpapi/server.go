// Package httpapi exposes the metrics engine, saved reports and the admin
// console over JSON HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/admin"
	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/auth"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/reports"
)

const maxBodyBytes = 1 << 20

// Deps wires the services behind the API. A nil PDF renderer makes PDF
// export answer 503.
type Deps struct {
	Auth    *auth.Service
	Reports *reports.Service
	Admin   *admin.Service
	PDF     reports.PDFRenderer
	Logger  *zap.Logger
	Version string
}

type Server struct {
	auth    *auth.Service
	reports *reports.Service
	admin   *admin.Service
	pdf     reports.PDFRenderer
	logger  *zap.Logger
	version string
	started time.Time
}

func NewServer(d Deps) http.Handler {
	s := &Server{
		auth:    d.Auth,
		reports: d.Reports,
		admin:   d.Admin,
		pdf:     d.PDF,
		logger:  logging.OrNop(d.Logger).Named("http"),
		version: d.Version,
		started: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/metrics", s.handleComputeMetrics)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireUser)
				r.Post("/logout", s.handleLogout)
				r.Post("/logout-all", s.handleLogoutAll)
				r.Get("/session", s.handleSession)
				r.Put("/profile", s.handleUpdateProfile)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListReports)
			r.Post("/", s.handleSubmitReport)
			r.Get("/{id}", s.handleGetReport)
			r.Delete("/{id}", s.handleDeleteReport)
			r.Get("/{id}/markdown", s.handleReportMarkdown)
			r.Get("/{id}/pdf", s.handleReportPDF)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireUser, requireAdmin)
			r.Get("/overview", s.handleOverview)
			r.Get("/users", s.handleListUsers)
			r.Get("/reports", s.handleAllReports)
			r.Get("/companies", s.handleListCompanies)
			r.Post("/companies", s.handleCreateCompany)
			r.Put("/companies/{id}", s.handleUpdateCompany)
			r.Delete("/companies/{id}", s.handleDeleteCompany)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(code, message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": message}}
}

func writeError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	writeJSON(w, e.Status, errorBody(e.Code, e.Message))
}

// decodeJSON reads a bounded request body into dst. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation(fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes))
		}
		return apperr.InvalidJSON(err)
	}
	if len(strings.TrimSpace(string(blob))) == 0 {
		blob = []byte("{}")
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return apperr.InvalidJSON(err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var in metrics.ProjectInputs
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	m, err := s.reports.Compute(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
