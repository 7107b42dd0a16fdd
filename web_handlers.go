package main

import (
	"embed"
	"html"
	"html/template"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"schoolprofile/internal/profile"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

// WebHandler handles HTMX HTML requests
type WebHandler struct {
	Service    *ProfileService
	Overviewer *AISummaryService
	templates  *template.Template
}

// NewWebHandler creates a new WebHandler with parsed templates
func NewWebHandler(svc *ProfileService, overviewer *AISummaryService) *WebHandler {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html", "templates/partials/*.html"))
	return &WebHandler{
		Service:    svc,
		Overviewer: overviewer,
		templates:  tmpl,
	}
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// IndexPage lists the grade levels
func (h *WebHandler) IndexPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", map[string]interface{}{
		"Title":  "School Profile",
		"Levels": h.Service.GradeLevels(),
	})
}

// SchoolsPage renders the school picker for a level
func (h *WebHandler) SchoolsPage(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	query := r.URL.Query().Get("q")

	schools, err := h.Service.Schools(level, query)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.render(w, "schools.html", map[string]interface{}{
		"Title":   level + " Schools",
		"Level":   level,
		"Query":   query,
		"Schools": schools,
		"Count":   len(schools),
	})
}

// SchoolResults returns the filtered school list partial
func (h *WebHandler) SchoolResults(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	query := r.URL.Query().Get("q")

	schools, err := h.Service.Schools(level, query)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.render(w, "school_results.html", map[string]interface{}{
		"Level":   level,
		"Query":   query,
		"Schools": schools,
		"Count":   len(schools),
	})
}

// ProfilePage renders a full profile
func (h *WebHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	req := profileRequest(r)
	p, err := h.Service.Profile(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	level, err := h.Service.Dataset().Level(p.Selection.GradeLevel)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	var others []string
	for _, s := range level.Schools() {
		if s != p.Selection.School {
			others = append(others, s)
		}
	}

	h.render(w, "profile.html", map[string]interface{}{
		"Title":      p.Title,
		"Profile":    p,
		"Advisories": advisoryHTML(p.Advisories),
		"Charts":     chartViews(p),
		"Selectors":  yearSelectors(p),
		"Schools":    others,
		"AIEnabled":  h.Overviewer != nil,
	})
}

// Overview returns the AI overview partial
func (h *WebHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.Overviewer == nil {
		http.Error(w, "AI overview not available: ANTHROPIC_API_KEY not set", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	r.URL.RawQuery = r.PostForm.Encode()

	p, err := h.Service.Profile(profileRequest(r))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	text, err := h.Overviewer.Overview(r.Context(), p)
	if err != nil {
		log.Printf("AI overview error: %v", err)
		http.Error(w, "AI overview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.render(w, "overview.html", map[string]interface{}{
		"Overview": text,
	})
}

type barView struct {
	Label string
	Text  string
	Width float64
	Left  float64
	Color string
}

type seriesView struct {
	Years []string
	Rows  []seriesRowView
}

type seriesRowView struct {
	Name   string
	Color  string
	Values []string
}

type chartView struct {
	Key        string
	Title      string
	Annotation string
	Bars       []barView
	Series     *seriesView
	Narrative  template.HTML
}

type yearSelector struct {
	Family   string
	Label    string
	Selected string
	Options  []yearOption
}

type yearOption struct {
	Value string
	Label string
}

// narrativeHTML escapes a narrative and restores its <b> emphasis.
func narrativeHTML(text string) template.HTML {
	escaped := html.EscapeString(text)
	escaped = strings.NewReplacer("&lt;b&gt;", "<b>", "&lt;/b&gt;", "</b>").Replace(escaped)
	return template.HTML(escaped)
}

// advisoryPolicy keeps the markup used by school messages: emphasis, line
// breaks and links to http(s) or mailto targets.
var advisoryPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "br", "p")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

func advisoryHTML(advisories []string) []template.HTML {
	out := make([]template.HTML, len(advisories))
	for i, a := range advisories {
		out[i] = template.HTML(advisoryPolicy.Sanitize(a))
	}
	return out
}

func yearSelectors(p *profile.Profile) []yearSelector {
	var out []yearSelector
	for _, f := range profile.YearFamilies {
		years := p.YearOptions[f]
		if len(years) == 0 {
			continue
		}
		sel := yearSelector{
			Family:   string(f),
			Label:    familyLabels[f],
			Selected: p.Selection.Year(f),
		}
		for _, y := range years {
			sel.Options = append(sel.Options, yearOption{Value: y, Label: profile.YearLabel(y)})
		}
		out = append(out, sel)
	}
	return out
}

// percentWidth scales v against max into 0-100.
func percentWidth(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Min(100, math.Abs(v)/max*100)
}

func chartViews(p *profile.Profile) []chartView {
	var views []chartView
	narrated := make(map[profile.Family]bool)
	for i, c := range p.Charts {
		v := chartView{Key: c.Key, Title: c.Title, Annotation: c.Annotation}

		switch {
		case c.Comparison != nil:
			m := c.Comparison
			if m.Year != "" {
				v.Title += " (" + profile.YearLabel(m.Year) + ")"
			}
			max := m.AxisLimit
			if max == 0 {
				for _, e := range m.Entries {
					if e.Value.Valid {
						max = math.Max(max, math.Abs(e.Value.Float64))
					}
				}
				if m.Format == profile.FormatPercent {
					max = math.Max(max, 1)
				}
			}
			for _, e := range m.Entries {
				b := barView{Label: e.Name, Text: formatValue(e.Value, m.Format), Color: e.Color}
				if e.Value.Valid {
					b.Width = percentWidth(e.Value.Float64, max)
					if m.AxisLimit > 0 {
						// Diverging around the centre line
						b.Width /= 2
						b.Left = 50
						if e.Value.Float64 < 0 {
							b.Left = 50 - b.Width
						}
					}
				}
				v.Bars = append(v.Bars, b)
			}
		case c.Category != nil:
			for _, e := range c.Category.Entries {
				v.Bars = append(v.Bars, barView{
					Label: e.Label,
					Text:  formatValue(e.Value, c.Category.Format),
					Width: percentWidth(e.Value.Float64, 1),
					Color: e.Color,
				})
			}
		case c.Grouped != nil:
			g := c.Grouped
			for ci, cat := range g.Categories {
				for si, s := range g.Series {
					v.Bars = append(v.Bars, barView{
						Label: cat + ": " + s.Name,
						Text:  formatValue(s.Values[ci], g.Format),
						Width: percentWidth(s.Values[ci].Float64, 1),
						Color: profile.LinePalette[si%len(profile.LinePalette)],
					})
				}
			}
		case c.Series != nil:
			sv := &seriesView{}
			for _, y := range c.Series.Years {
				sv.Years = append(sv.Years, profile.YearLabel(y))
			}
			for _, r := range c.Series.Rows {
				row := seriesRowView{Name: r.Name, Color: r.Color}
				for _, val := range r.Values {
					row.Values = append(row.Values, formatValue(val, c.Series.Format))
				}
				sv.Rows = append(sv.Rows, row)
			}
			v.Series = sv
		}

		// The family's narrative follows the last chart of its first run
		if !narrated[c.Family] && (i == len(p.Charts)-1 || p.Charts[i+1].Family != c.Family) {
			if n, ok := p.Narratives.Get(c.Family); ok {
				v.Narrative = narrativeHTML(n.Text)
			}
			narrated[c.Family] = true
		}
		views = append(views, v)
	}
	return views
}
