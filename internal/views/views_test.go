package views

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/export"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

func renderString(t *testing.T, fn func(*strings.Builder) error) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, fn(&b))
	return b.String()
}

func TestReportCards(t *testing.T) {
	feedback := &report.FeedbackReport{
		Prioritize: report.Section{
			"Relevance":  {Score: "High", Rationale: "Users schedule <meetings> daily"},
			"Capability": {Score: "M"},
		},
	}
	maturity := &report.MaturityReport{
		Classification: report.Classification{
			Agent:                  "Calendar agent",
			AutonomyLevel:          "Medium",
			MaturityClassification: "L1",
		},
		Suggestions: report.Suggestions{"Add proactive reminders"},
	}

	html := renderString(t, func(b *strings.Builder) error {
		return ReportCards(ReportHeader{IdeaSummary: "Calendar sync agent"}, report.Render(feedback, maturity)).
			Render(context.Background(), b)
	})

	assert.Contains(t, html, `<h2 class="idea-summary">Calendar sync agent</h2>`)
	assert.Contains(t, html, `<h3>Prioritize</h3>`)
	assert.Contains(t, html, "Users schedule &lt;meetings&gt; daily")
	assert.NotContains(t, html, "<meetings>")
	assert.Contains(t, html, `<li class="badge selected">M</li>`)
	assert.Contains(t, html, `class="attribute defaulted" data-key="StrategicAlignment"`)
	assert.Contains(t, html, "Agent Maturity: L1 Task Agent")
	assert.Contains(t, html, `<span class="stop current" style="left:50%;color:yellow">`)
	assert.Contains(t, html, "<li>Add proactive reminders</li>")
}

func TestReportCards_ErrorHeader(t *testing.T) {
	html := renderString(t, func(b *strings.Builder) error {
		return ReportCards(ReportHeader{SummaryError: true, Error: models.MsgFeedbackParse}, report.View{}).
			Render(context.Background(), b)
	})
	assert.Contains(t, html, `<h2 class="idea-summary">Agent idea</h2>`)
	assert.Contains(t, html, `<p class="error">Error parsing feedback. Please try again.</p>`)
}

func TestSummaryPage(t *testing.T) {
	steps := wizard.DefaultSteps()
	responses := wizard.ResponseSet{}
	responses.Record("market", steps[1].Questions[0], "Fewer missed meetings & less noise")

	tests := []struct {
		name     string
		doc      export.Document
		contains []string
		excludes []string
	}{
		{
			name: "answered step with narrative",
			doc: export.Document{
				Steps:     steps,
				Responses: responses,
				Feedback:  map[string]string{"market": "Strong positioning"},
				Narrative: "## Overall\nSolid idea",
			},
			contains: []string{
				"<h2>Market</h2>",
				"Fewer missed meetings &amp; less noise",
				"<h3>AI Feedback</h3>",
				"## Overall\nSolid idea",
				`download="ai-success-blueprint-summary.md"`,
			},
			excludes: []string{"<h2>Prioritize</h2>", "No responses found"},
		},
		{
			name:     "narrative failed",
			doc:      export.Document{Steps: steps, Responses: responses, NarrativeFailed: true},
			contains: []string{models.MsgSummaryFailed},
		},
		{
			name:     "nothing answered",
			doc:      export.Document{Steps: steps},
			contains: []string{"No responses found. Please complete the steps first."},
			excludes: []string{"High-Level Summary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderString(t, func(b *strings.Builder) error {
				return SummaryPage(tt.doc).Render(context.Background(), b)
			})
			for _, s := range tt.contains {
				assert.Contains(t, html, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, html, s)
			}
		})
	}
}
