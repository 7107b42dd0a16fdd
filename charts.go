package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"schoolprofile/internal/profile"
)

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	annotationStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	advisoryStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(profile.AverageColor)).
			Padding(0, 1)
	emptyBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const missingLabel = "n/a"

// formatValue renders a value in a chart's number format.
func formatValue(v profile.Value, format profile.NumberFormat) string {
	if !v.Valid {
		return missingLabel
	}
	switch format {
	case profile.FormatPercent:
		return fmt.Sprintf("%.0f%%", v.Float64*100)
	case profile.FormatInteger:
		return formatThousands(int64(math.Round(v.Float64)))
	default:
		return fmt.Sprintf("%.1f", v.Float64)
	}
}

func formatThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []string
	for len(s) > 3 {
		out = append([]string{s[len(s)-3:]}, out...)
		s = s[:len(s)-3]
	}
	out = append([]string{s}, out...)
	res := strings.Join(out, ",")
	if neg {
		res = "-" + res
	}
	return res
}

// BarChart creates a horizontal bar scaled against max.
func BarChart(label string, value, max float64, width int, color lipgloss.Color, text string) string {
	if max == 0 {
		max = value
	}

	filledWidth := 0
	if max > 0 {
		filledWidth = int(math.Round(float64(width) * value / max))
	}
	if filledWidth < 0 {
		filledWidth = 0
	}
	if filledWidth > width {
		filledWidth = width
	}

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)
	return fmt.Sprintf("%s %s%s %s", label, barStyle.Render(filled), emptyBarStyle.Render(empty), text)
}

// DivergingBar draws a bar left or right of a centre axis bounded by limit.
func DivergingBar(label string, value, limit float64, width int, color lipgloss.Color, text string) string {
	half := width / 2
	n := 0
	if limit > 0 {
		n = int(math.Round(float64(half) * math.Min(math.Abs(value), limit) / limit))
	}
	barStyle := lipgloss.NewStyle().Foreground(color)

	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if value < 0 {
		left = strings.Repeat(" ", half-n) + barStyle.Render(strings.Repeat("█", n))
	} else {
		right = barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", half-n)
	}
	return fmt.Sprintf("%s %s│%s %s", label, left, right, text)
}

// Sparkline creates a sparkline; missing years are blank.
func Sparkline(values []profile.Value) string {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !v.Valid {
			continue
		}
		min = math.Min(min, v.Float64)
		max = math.Max(max, v.Float64)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, v := range values {
		if !v.Valid {
			result.WriteRune(' ')
			continue
		}
		idx := len(chars) / 2
		if max > min {
			idx = int((v.Float64 - min) / (max - min) * float64(len(chars)-1))
		}
		result.WriteRune(chars[idx])
	}
	return result.String()
}

func padLabel(label string, width int) string {
	if lipgloss.Width(label) > width {
		r := []rune(label)
		return string(r[:width-1]) + "…"
	}
	return label + strings.Repeat(" ", width-lipgloss.Width(label))
}

func labelWidth(labels []string) int {
	w := 8
	for _, l := range labels {
		if lw := lipgloss.Width(l); lw > w {
			w = lw
		}
	}
	if w > 24 {
		w = 24
	}
	return w
}

func barWidth(width, label int) int {
	w := width - label - 10
	if w < 10 {
		w = 10
	}
	return w
}

// ComparisonBars renders a comparison matrix, one bar per entry.
func ComparisonBars(m profile.ComparisonMatrix, width int) string {
	lw := labelWidth(m.Names())
	bw := barWidth(width, lw)

	max := 0.0
	for _, e := range m.Entries {
		if e.Value.Valid && math.Abs(e.Value.Float64) > max {
			max = math.Abs(e.Value.Float64)
		}
	}
	if m.Format == profile.FormatPercent && max < 1 {
		max = 1
	}

	var lines []string
	for _, e := range m.Entries {
		label := padLabel(e.Name, lw)
		text := formatValue(e.Value, m.Format)
		color := lipgloss.Color(e.Color)
		switch {
		case m.AxisLimit > 0:
			lines = append(lines, DivergingBar(label, e.Value.Float64, m.AxisLimit, bw, color, text))
		default:
			lines = append(lines, BarChart(label, e.Value.Float64, max, bw, color, text))
		}
	}
	return strings.Join(lines, "\n")
}

// CategoryBars renders a single-school composition chart.
func CategoryBars(m profile.CategoryMatrix, width int) string {
	lw := labelWidth(m.Labels())
	bw := barWidth(width, lw)

	var lines []string
	for _, e := range m.Entries {
		lines = append(lines, BarChart(padLabel(e.Label, lw), e.Value.Float64, 1, bw, lipgloss.Color(e.Color), formatValue(e.Value, m.Format)))
	}
	return strings.Join(lines, "\n")
}

// GroupedBars renders a two-school composition chart: one bar per school
// under each category.
func GroupedBars(g profile.GroupedMatrix, width int) string {
	var names []string
	for _, s := range g.Series {
		names = append(names, "  "+s.Name)
	}
	lw := labelWidth(append(names, g.Categories...))
	bw := barWidth(width, lw)

	var lines []string
	for i, cat := range g.Categories {
		lines = append(lines, padLabel(cat, lw))
		for j, s := range g.Series {
			v := s.Values[i]
			color := lipgloss.Color(profile.LinePalette[j%len(profile.LinePalette)])
			lines = append(lines, BarChart(padLabel("  "+s.Name, lw), v.Float64, 1, bw, color, formatValue(v, g.Format)))
		}
	}
	return strings.Join(lines, "\n")
}

// SeriesLines renders a time series as one sparkline per row with its
// latest value.
func SeriesLines(s profile.SeriesMatrix, width int) string {
	var names []string
	for _, r := range s.Rows {
		names = append(names, r.Name)
	}
	lw := labelWidth(names)

	var lines []string
	if len(s.Years) > 0 {
		lines = append(lines, padLabel("", lw)+" "+s.Years[0]+" → "+s.Years[len(s.Years)-1])
	}
	for _, r := range s.Rows {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color))
		year, v := s.Latest(r.Name)
		latest := missingLabel
		if year != "" {
			latest = fmt.Sprintf("%s (%s)", formatValue(v, s.Format), profile.YearLabel(year))
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s", padLabel(r.Name, lw), style.Render(Sparkline(r.Values)), latest))
	}
	return strings.Join(lines, "\n")
}

// RenderChart renders one chart with its title and annotation.
func RenderChart(c profile.Chart, width int) string {
	title := c.Title
	if c.Comparison != nil && c.Comparison.Year != "" {
		title += " (" + profile.YearLabel(c.Comparison.Year) + ")"
	}

	var body string
	switch {
	case c.Comparison != nil:
		body = ComparisonBars(*c.Comparison, width)
	case c.Category != nil:
		body = CategoryBars(*c.Category, width)
	case c.Grouped != nil:
		body = GroupedBars(*c.Grouped, width)
	case c.Series != nil:
		body = SeriesLines(*c.Series, width)
	}

	out := chartTitleStyle.Render(title)
	if body != "" {
		out += "\n" + body
	}
	if c.Annotation != "" {
		out += "\n" + annotationStyle.Render(c.Annotation)
	}
	return out
}

// renderProfile renders every chart followed by its family's narrative.
func renderProfile(p *profile.Profile, width int) (string, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n\n")

	for _, a := range p.Advisories {
		b.WriteString(advisoryStyle.Width(width - 4).Render(stripTags(a)))
		b.WriteString("\n")
	}

	written := make(map[profile.Family]bool)
	for i, c := range p.Charts {
		b.WriteString(RenderChart(c, width))
		b.WriteString("\n")

		last := i == len(p.Charts)-1 || p.Charts[i+1].Family != c.Family
		if !last || written[c.Family] {
			b.WriteString("\n")
			continue
		}
		written[c.Family] = true
		if n, ok := p.Narratives.Get(c.Family); ok {
			text, err := renderMarkdown(n.Markdown(), width)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// stripTags removes simple HTML tags from advisory messages.
func stripTags(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
