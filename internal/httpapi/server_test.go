package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/admin"
	"github.com/joelkehle/metria/internal/auth"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
	"github.com/joelkehle/metria/internal/reports"
	"github.com/joelkehle/metria/internal/store"
)

type fakePDF struct{ err error }

func (f fakePDF) Render(context.Context, models.SavedReport) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func newServerForTest(t *testing.T, pdf reports.PDFRenderer) http.Handler {
	t.Helper()
	repos := store.NewRepos(store.NewMemoryStore())
	if err := store.Seed(context.Background(), repos, auth.HashPassword, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewServer(Deps{
		Auth:    auth.NewService(repos, time.Hour, nil),
		Reports: reports.NewService(repos, nil, nil),
		Admin:   admin.NewService(repos, nil),
		PDF:     pdf,
		Version: "test",
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
	return out
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s status=%d body=%s", email, rr.Code, rr.Body.String())
	}
	return decode[auth.Session](t, rr).Token
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, status, rr.Body.String())
	}
	if got := decode[errorEnvelope](t, rr).Error.Code; got != code {
		t.Fatalf("error code=%q want=%q", got, code)
	}
}

func reportInputs() metrics.ProjectInputs {
	return metrics.ProjectInputs{
		Mode:        metrics.ModePro,
		ProjectName: "Route optimiser",
		ValueType:   metrics.ValueCostReduction,
		Costs:       metrics.Costs{DirectCost: 1000, LaborRate: 50, LaborHours: 10, DurationMonths: 3},
		Operational: metrics.OperationalMetrics{CurrentUnitCost: 100, NewUnitCost: 80, VolumeTraded: 50},
	}
}

func TestHealth(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := doJSON(t, h, http.MethodGet, "/v1/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := decode[map[string]any](t, rr); got["ok"] != true || got["version"] != "test" {
		t.Fatalf("unexpected health: %v", got)
	}
}

func TestComputeMetricsIsPublic(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := doJSON(t, h, http.MethodPost, "/v1/metrics", "", reportInputs())
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	m := decode[metrics.CalculatedMetrics](t, rr)
	if m.TotalCost != 2500 || m.EconomicValue != 3000 || m.PaybackPeriodMonths != 2.5 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if !strings.Contains(rr.Body.String(), `"pocTotalCost":2500`) {
		t.Fatalf("expected wire name pocTotalCost: %s", rr.Body.String())
	}
}

func TestComputeMetricsRejectsBadInput(t *testing.T) {
	h := newServerForTest(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assertError(t, rr, http.StatusBadRequest, "validation")

	in := reportInputs()
	in.Mode = "enterprise"
	assertError(t, doJSON(t, h, http.MethodPost, "/v1/metrics", "", in), http.StatusBadRequest, "validation")
}

func TestAuthFlow(t *testing.T) {
	h := newServerForTest(t, nil)

	rr := doJSON(t, h, http.MethodPost, "/v1/auth/register", "", auth.Profile{Name: "Dana", Email: "Dana@Example.com", Password: "pw"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}
	sess := decode[auth.Session](t, rr)
	if sess.Token == "" || sess.User.Role != models.RoleUser || sess.User.PasswordHash != "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	assertError(t, doJSON(t, h, http.MethodPost, "/v1/auth/register", "", auth.Profile{Name: "D2", Email: "dana@example.com", Password: "x"}),
		http.StatusConflict, "conflict")
	assertError(t, doJSON(t, h, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "dana@example.com", "password": "nope"}),
		http.StatusUnauthorized, "unauthorized")

	token := login(t, h, "DANA@example.com", "pw")
	rr = doJSON(t, h, http.MethodGet, "/v1/auth/session", token, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "dana@example.com") {
		t.Fatalf("session status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodPut, "/v1/auth/profile", token, auth.Profile{City: "Lisbon"})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Lisbon") {
		t.Fatalf("profile status=%d body=%s", rr.Code, rr.Body.String())
	}

	if rr = doJSON(t, h, http.MethodPost, "/v1/auth/logout", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("logout status=%d", rr.Code)
	}
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/auth/session", token, nil), http.StatusUnauthorized, "unauthorized")
}

func TestLogoutAllRevokesEveryToken(t *testing.T) {
	h := newServerForTest(t, nil)
	first := login(t, h, "ana@startuplab.com", "123")
	second := login(t, h, "ana@startuplab.com", "123")

	rr := doJSON(t, h, http.MethodPost, "/v1/auth/logout-all", first, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout-all status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]any](t, rr)["sessionsEnded"]; got != float64(2) {
		t.Fatalf("sessionsEnded=%v want=2", got)
	}
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/auth/session", second, nil), http.StatusUnauthorized, "unauthorized")
}

func TestReportsRequireBearerToken(t *testing.T) {
	h := newServerForTest(t, nil)
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/reports", "", nil), http.StatusUnauthorized, "unauthorized")
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/reports", "not-a-token", nil), http.StatusUnauthorized, "unauthorized")
}

func TestReportLifecycle(t *testing.T) {
	h := newServerForTest(t, fakePDF{})
	carlos := login(t, h, "carlos@techcorp.com.br", "123")
	ana := login(t, h, "ana@startuplab.com", "123")
	adminToken := login(t, h, "admin@metria.com", "admin")

	rr := doJSON(t, h, http.MethodPost, "/v1/reports", carlos, reportInputs())
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit status=%d body=%s", rr.Code, rr.Body.String())
	}
	rep := decode[models.SavedReport](t, rr)
	if rep.UserID != "user-001" || rep.Metrics.TotalCost != 2500 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	list := decode[struct {
		Reports []models.SavedReport `json:"reports"`
	}](t, doJSON(t, h, http.MethodGet, "/v1/reports", carlos, nil))
	if len(list.Reports) != 1 || list.Reports[0].ID != rep.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	assertError(t, doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID, ana, nil), http.StatusNotFound, "not_found")
	if rr = doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID, adminToken, nil); rr.Code != http.StatusOK {
		t.Fatalf("admin get status=%d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID+"/markdown", carlos, nil)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Body.String(), "# Route optimiser") {
		t.Fatalf("markdown status=%d body=%s", rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "Route-optimiser.md") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID+"/pdf", carlos, nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf status=%d headers=%v", rr.Code, rr.Header())
	}

	assertError(t, doJSON(t, h, http.MethodDelete, "/v1/reports/"+rep.ID, ana, nil), http.StatusNotFound, "not_found")
	if rr = doJSON(t, h, http.MethodDelete, "/v1/reports/"+rep.ID, carlos, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID, carlos, nil), http.StatusNotFound, "not_found")
}

func TestReportPDFUnavailable(t *testing.T) {
	for name, pdf := range map[string]reports.PDFRenderer{
		"not configured": nil,
		"render fails":   fakePDF{err: errors.New("chrome crashed")},
	} {
		t.Run(name, func(t *testing.T) {
			h := newServerForTest(t, pdf)
			token := login(t, h, "carlos@techcorp.com.br", "123")
			rep := decode[models.SavedReport](t, doJSON(t, h, http.MethodPost, "/v1/reports", token, reportInputs()))
			assertError(t, doJSON(t, h, http.MethodGet, "/v1/reports/"+rep.ID+"/pdf", token, nil), http.StatusServiceUnavailable, "unavailable")
		})
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newServerForTest(t, nil)
	carlos := login(t, h, "carlos@techcorp.com.br", "123")
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/admin/overview", carlos, nil), http.StatusForbidden, "forbidden")
	assertError(t, doJSON(t, h, http.MethodPost, "/v1/admin/companies", carlos, admin.CompanyInput{Name: "X"}), http.StatusForbidden, "forbidden")
}

func TestAdminOverviewAndCompanies(t *testing.T) {
	h := newServerForTest(t, nil)
	carlos := login(t, h, "carlos@techcorp.com.br", "123")
	adminToken := login(t, h, "admin@metria.com", "admin")
	for i := 0; i < 2; i++ {
		doJSON(t, h, http.MethodPost, "/v1/reports", carlos, reportInputs())
	}

	ov := decode[admin.Overview](t, doJSON(t, h, http.MethodGet, "/v1/admin/overview", adminToken, nil))
	if ov.TotalUsers != 4 || ov.TotalProjects != 2 || ov.TotalCompanies != 4 || ov.AvgProjectsPerUser != 0.5 {
		t.Fatalf("unexpected overview: %+v", ov)
	}
	if ov.TopCompanies[0].Name != "TechCorp Solutions" || ov.TopCompanies[0].Projects != 2 {
		t.Fatalf("unexpected top companies: %+v", ov.TopCompanies)
	}

	rr := doJSON(t, h, http.MethodPut, "/v1/admin/companies/comp-002", adminToken, admin.CompanyInput{Name: "TechCorp Global", Industry: "IT"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]any](t, rr)["usersUpdated"]; got != float64(1) {
		t.Fatalf("usersUpdated=%v want=1", got)
	}
	rr = doJSON(t, h, http.MethodGet, "/v1/auth/session", carlos, nil)
	if !strings.Contains(rr.Body.String(), "TechCorp Global") {
		t.Fatalf("user company not renamed: %s", rr.Body.String())
	}

	assertError(t, doJSON(t, h, http.MethodDelete, "/v1/admin/companies/comp-002", adminToken, nil), http.StatusConflict, "conflict")

	rr = doJSON(t, h, http.MethodPost, "/v1/admin/companies", adminToken, admin.CompanyInput{Name: "Initech", Industry: "Software"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[models.Company](t, rr)
	if rr = doJSON(t, h, http.MethodDelete, "/v1/admin/companies/"+created.ID, adminToken, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}

	list := decode[struct {
		Companies []models.Company `json:"companies"`
	}](t, doJSON(t, h, http.MethodGet, "/v1/admin/companies", adminToken, nil))
	if len(list.Companies) != 4 {
		t.Fatalf("expected 4 companies, got %d", len(list.Companies))
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	h := newServerForTest(t, nil)
	assertError(t, doJSON(t, h, http.MethodGet, "/v1/nope", "", nil), http.StatusNotFound, "not_found")
}
