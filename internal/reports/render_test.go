package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
)

func sampleReport() models.SavedReport {
	in := sampleInputs()
	in.AssociatedCompany = "TechCorp Solutions"
	in.ConfidenceAnswers = []metrics.Answer{"sim", "sim", "sim", "sim", "sim", "sim", "sim", "sim"}
	in.Operational.VolumeTraded = 5000
	return models.SavedReport{
		ID:        "rep-1",
		UserID:    "u1",
		CreatedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		Data:      in,
		Metrics:   metrics.Compute(in),
		Analysis: &models.Analysis{
			StrategicAnalysis: "Strong fit.",
			RiskAssessment:    "Moderate.",
			MarketViability:   "Viable.",
			Recommendations:   []string{"Pilot first", "Track unit cost"},
			MarketFitScore:    8,
		},
	}
}

func TestMarkdownIncludesKeyFigures(t *testing.T) {
	md := Markdown(sampleReport())
	for _, want := range []string{
		"# Smart routing",
		"**Company:** TechCorp Solutions",
		"| Total cost | 2500.00 |",
		"| Realistic |",
		"## Rollout Projection",
		"| 1 |",
		"## AI Analysis",
		"2. Track unit cost",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestMarkdownStandardOmitsSensitivityRows(t *testing.T) {
	rep := sampleReport()
	rep.Data.Mode = metrics.ModeStandard
	rep.Metrics = metrics.Compute(rep.Data)
	rep.Analysis = nil
	rep.Warning = "AI analysis unavailable"
	md := Markdown(rep)
	if strings.Contains(md, "| Pessimistic |") || strings.Contains(md, "N/A") {
		t.Fatalf("standard report should not list sensitivity scenarios:\n%s", md)
	}
	if strings.Contains(md, "## AI Analysis") {
		t.Fatalf("unexpected analysis section:\n%s", md)
	}
	if !strings.Contains(md, "> AI analysis unavailable") {
		t.Fatalf("expected warning callout:\n%s", md)
	}
}

func TestBuildHTMLRendersTables(t *testing.T) {
	doc, err := buildHTML(sampleReport())
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	for _, want := range []string{"<table>", `<h2 data-page-break-before="true">AI Analysis</h2>`, `<td class="num">2500.00</td>`, "badge-high"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected %q in html", want)
		}
	}
}

func TestApplyPrintLayoutHooksNoopWithoutMatches(t *testing.T) {
	in := "<h2>Summary</h2><p>x</p><td>Realistic</td>"
	if out := applyPrintLayoutHooks(in); out != in {
		t.Fatalf("expected no change, got: %s", out)
	}
}

func TestChromiumRender(t *testing.T) {
	r := NewChromiumPDFRenderer("")
	if r.chromePath == "" {
		t.Skip("chromium not installed")
	}
	pdf, err := r.Render(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}
