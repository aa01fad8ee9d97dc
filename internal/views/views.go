// Package views renders the report cards and the summary page as HTML.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/export"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
)

// ContentType is the content type of every rendered view.
const ContentType = "text/html; charset=utf-8"

// htmlWriter keeps the first write error so components can write freely.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// ReportHeader is the text shown above the cards.
type ReportHeader struct {
	IdeaSummary  string
	SummaryError bool
	Error        string
}

// ReportCards renders one card per section followed by the maturity card.
func ReportCards(header ReportHeader, view report.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="report">`)
		switch {
		case header.IdeaSummary != "":
			h.raw(`<h2 class="idea-summary">`)
			h.text(header.IdeaSummary)
			h.raw(`</h2>`)
		case header.SummaryError:
			h.raw(`<h2 class="idea-summary">Agent idea</h2>`)
		}
		if header.Error != "" {
			h.raw(`<p class="error">`)
			h.text(header.Error)
			h.raw(`</p>`)
		}
		for _, section := range view.Sections {
			writeSection(h, section)
		}
		if view.Maturity != nil {
			writeMaturity(h, *view.Maturity)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func writeSection(h *htmlWriter, s report.SectionView) {
	h.rawf(`<section class="card" id="%s">`, templ.EscapeString(s.Key))
	h.raw(`<h3>`)
	h.text(s.Title)
	h.raw(`</h3>`)
	for _, attr := range s.Attributes {
		writeAttribute(h, attr)
	}
	h.raw(`</section>`)
}

func writeAttribute(h *htmlWriter, a report.AttributeView) {
	class := "attribute"
	if a.Defaulted {
		class += " defaulted"
	}
	h.rawf(`<div class="%s" data-key="%s">`, class, templ.EscapeString(a.Key))
	h.raw(`<div class="attribute-name">`)
	h.text(a.Name)
	h.raw(`</div>`)

	if len(a.Badges) > 0 {
		h.raw(`<ul class="badges">`)
		for _, b := range a.Badges {
			if b.Selected {
				h.raw(`<li class="badge selected">`)
			} else {
				h.raw(`<li class="badge">`)
			}
			h.text(b.Option)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}
	if a.Scored {
		h.rawf(`<div class="bar"><div class="bar-fill" style="width:%.0f%%;background:%s"></div></div>`,
			a.Position, templ.EscapeString(a.Color))
		h.raw(`<span class="level-label">`)
		h.text(a.LevelLabel)
		h.raw(`</span>`)
	} else if len(a.Badges) == 0 {
		h.raw(`<span class="value">`)
		h.text(a.Value)
		h.raw(`</span>`)
	}
	for _, p := range []string{a.Rationale, a.Description, a.Reference} {
		if p == "" {
			continue
		}
		h.raw(`<p>`)
		h.text(p)
		h.raw(`</p>`)
	}
	h.raw(`</div>`)
}

func writeMaturity(h *htmlWriter, m report.MaturityView) {
	h.raw(`<section class="card maturity">`)
	h.raw(`<h3>Agent Maturity: `)
	h.text(string(m.Level) + " " + m.LevelName)
	h.raw(`</h3><p>`)
	h.text(m.LevelDescription)
	h.raw(`</p>`)

	h.raw(`<div class="slider">`)
	for _, stop := range m.Stops {
		class := "stop"
		if stop.Level == m.Level {
			class += " current"
		}
		h.rawf(`<span class="%s" style="left:%.0f%%;color:%s">`, class, stop.Position, templ.EscapeString(stop.Color))
		h.text(stop.Name)
		h.raw(`</span>`)
	}
	h.rawf(`<span class="marker" style="left:%.0f%%"></span>`, m.SliderPosition)
	h.raw(`</div>`)

	for _, attr := range m.Attributes {
		writeAttribute(h, attr)
	}
	if len(m.Suggestions) > 0 {
		h.raw(`<h4>Suggestions</h4><ul class="suggestions">`)
		for _, s := range m.Suggestions {
			h.raw(`<li>`)
			h.text(s)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}
	h.raw(`</section>`)
}

// SummaryPage renders the blueprint summary as a standalone page.
func SummaryPage(doc export.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>AI Success Blueprint Summary</title></head><body><main>`)
		h.raw(`<h1>AI Success Blueprint Summary</h1>`)

		switch {
		case doc.NarrativeFailed:
			h.raw(`<section class="overall"><h2>High-Level Summary &amp; Overall Evaluation</h2><p class="error">`)
			h.text(models.MsgSummaryFailed)
			h.raw(`</p></section>`)
		case strings.TrimSpace(doc.Narrative) != "":
			h.raw(`<section class="overall"><h2>High-Level Summary &amp; Overall Evaluation</h2><pre>`)
			h.text(strings.TrimSpace(doc.Narrative))
			h.raw(`</pre></section>`)
		}

		answered := 0
		for _, step := range doc.Steps {
			answers := doc.Responses[step.ID]
			if len(answers) == 0 {
				continue
			}
			answered++
			h.rawf(`<section class="step" id="%s"><h2>`, templ.EscapeString(step.ID))
			h.text(step.Title)
			h.raw(`</h2>`)
			if recap := export.Recap(step, answers); recap != "" {
				h.raw(`<p class="recap">`)
				h.text(recap)
				h.raw(`</p>`)
			}
			h.raw(`<dl>`)
			for _, q := range step.Questions {
				a, ok := answers[q]
				if !ok {
					continue
				}
				h.raw(`<dt>`)
				h.text(q)
				h.raw(`</dt><dd>`)
				h.text(a)
				h.raw(`</dd>`)
			}
			h.raw(`</dl>`)
			if fb := strings.TrimSpace(doc.Feedback[step.ID]); fb != "" {
				h.raw(`<h3>AI Feedback</h3><pre class="feedback">`)
				h.text(fb)
				h.raw(`</pre>`)
			}
			h.raw(`</section>`)
		}
		if answered == 0 {
			h.raw(`<p>No responses found. Please complete the steps first.</p>`)
		}
		h.rawf(`<a href="/api/summary/export" download="%s">Download summary</a>`, export.Filename)
		h.raw(`</main></body></html>`)
		return h.err
	})
}
