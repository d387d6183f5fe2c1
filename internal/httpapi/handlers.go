package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/admin"
	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/auth"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/reports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var p auth.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.auth.Register(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), currentToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.auth.LogoutAll(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionsEnded": n})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p auth.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.auth.UpdateProfile(r.Context(), currentUser(r).ID, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var in metrics.ProjectInputs
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	rep, err := s.reports.Submit(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reps, err := s.reports.ListForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reps})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func reportFilename(name, id, ext string) string {
	base := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "-"), "-")
	if base == "" {
		base = "report-" + id
	}
	return base + "." + ext
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", reportFilename(rep.Data.ProjectName, rep.ID, "md")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(reports.Markdown(rep)))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if s.pdf == nil {
		writeError(w, apperr.Unavailable("pdf export is not configured", nil))
		return
	}
	pdf, err := s.pdf.Render(r.Context(), rep)
	if err != nil {
		s.logger.Error("render pdf", zap.String("report_id", rep.ID), zap.Error(err))
		writeError(w, apperr.Unavailable("pdf rendering failed", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(rep.Data.ProjectName, rep.ID, "pdf")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.admin.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleAllReports(w http.ResponseWriter, r *http.Request) {
	reps, err := s.reports.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reps})
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.admin.ListCompanies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var in admin.CompanyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.admin.CreateCompany(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var in admin.CompanyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, moved, err := s.admin.UpdateCompany(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c, "usersUpdated": moved})
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
