// Package export assembles the downloadable blueprint summary.
package export

import (
	"fmt"
	"strings"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

const (
	// Filename is the fixed download name of the summary.
	Filename    = "ai-success-blueprint-summary.md"
	ContentType = "text/markdown; charset=utf-8"

	title        = "AI Success Blueprint Summary"
	noResponses  = "No responses found. Please complete the steps first."
	overallTitle = "High-Level Summary & Overall Evaluation"
)

// Document is everything that goes into the summary file.
type Document struct {
	Steps     []wizard.Step
	Responses wizard.ResponseSet
	// Feedback holds the assistant feedback per step id.
	Feedback map[string]string
	// Narrative is the generated overview. NarrativeFailed replaces it with
	// the fixed error line.
	Narrative       string
	NarrativeFailed bool
}

// Markdown renders the document. Steps without answers are left out.
func (d Document) Markdown() string {
	var b strings.Builder
	b.WriteString("# " + title + "\n")

	switch {
	case d.NarrativeFailed:
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", overallTitle, models.MsgSummaryFailed)
	case strings.TrimSpace(d.Narrative) != "":
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", overallTitle, strings.TrimSpace(d.Narrative))
	}

	written := 0
	for _, step := range d.Steps {
		answers, ok := d.Responses[step.ID]
		if !ok || len(answers) == 0 {
			continue
		}
		written++

		fmt.Fprintf(&b, "\n## %s\n\n", step.Title)
		if recap := Recap(step, answers); recap != "" {
			b.WriteString(recap + "\n\n")
		}
		for _, q := range step.Questions {
			a, ok := answers[q]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- **%s** %s\n", q, a)
		}
		if fb := strings.TrimSpace(d.Feedback[step.ID]); fb != "" {
			fmt.Fprintf(&b, "\n### AI Feedback\n\n%s\n", fb)
		}
	}

	if written == 0 {
		b.WriteString("\n" + noResponses + "\n")
	}
	return b.String()
}

// Recap is the one-line restatement shown above a step's answers. Only the
// prioritize step has one.
func Recap(step wizard.Step, answers map[string]string) string {
	if step.ID != "prioritize" || len(step.Questions) < 5 {
		return ""
	}
	a := func(i int) string { return answers[step.Questions[i]] }
	if a(0) == "" {
		return ""
	}
	return fmt.Sprintf(
		"You described the use case as: %q. You rated its Relevance as %s, Capability as %s, Strategic Alignment as %s, and Business Impact as %s.",
		a(0), orUnanswered(a(1)), orUnanswered(a(2)), orUnanswered(a(3)), orUnanswered(a(4)),
	)
}

func orUnanswered(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unanswered"
	}
	return s
}
