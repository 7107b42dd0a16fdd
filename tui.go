package main

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"schoolprofile/internal/profile"
)

type view int

const (
	levelView view = iota
	schoolView
	profileView
	compareView
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	focusedYearStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	yearStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
)

var familyLabels = map[profile.Family]string{
	profile.FamilyCCRPI:      "CCRPI",
	profile.FamilyMilestones: "Milestones",
	profile.FamilySGP:        "Growth",
	profile.FamilyBTO:        "Beat the Odds",
	profile.FamilyAttendance: "Attendance",
	profile.FamilyGraduation: "Graduation",
	profile.FamilyClimate:    "Climate",
}

type model struct {
	svc        *ProfileService
	overviewer *AISummaryService

	currentView   view
	levels        list.Model
	schoolInput   textinput.Model
	schools       list.Model
	viewport      viewport.Model
	level         *profile.Level
	selection     profile.Selection
	profile       *profile.Profile
	focusFamily   int
	overview      string
	loadingAI     bool
	status        string
	err           error
	width         int
	height        int
	viewportReady bool
}

type levelItem struct {
	name    string
	schools int
}

func (i levelItem) Title() string       { return i.name }
func (i levelItem) Description() string { return fmt.Sprintf("%d schools", i.schools) }
func (i levelItem) FilterValue() string { return i.name }

type schoolItem struct {
	name  string
	short string
}

func (i schoolItem) Title() string       { return i.name }
func (i schoolItem) Description() string { return i.short }
func (i schoolItem) FilterValue() string { return i.name }

type profileMsg struct {
	profile *profile.Profile
	err     error
}

type overviewMsg struct {
	text string
	err  error
}

type exportMsg struct {
	path string
	err  error
}

func buildProfile(svc *ProfileService, sel profile.Selection) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Build(sel)
		return profileMsg{profile: p, err: err}
	}
}

func fetchOverview(ov *AISummaryService, p *profile.Profile) tea.Cmd {
	return func() tea.Msg {
		text, err := ov.Overview(context.Background(), p)
		return overviewMsg{text: text, err: err}
	}
}

func exportProfile(p *profile.Profile, path string) tea.Cmd {
	return func() tea.Msg {
		return exportMsg{path: path, err: ExportProfileXLSX(p, path)}
	}
}

func initialModel(svc *ProfileService, overviewer *AISummaryService) model {
	ti := textinput.New()
	ti.Placeholder = "Type the start of a school name..."
	ti.CharLimit = 100
	ti.Width = 60

	levelDelegate := list.NewDefaultDelegate()
	levels := list.New(nil, levelDelegate, 0, 0)
	levels.Title = "Grade Level"
	levels.SetFilteringEnabled(false)
	levels.Styles.Title = lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1)

	var items []list.Item
	for _, name := range svc.GradeLevels() {
		count := 0
		if l, err := svc.Dataset().Level(name); err == nil {
			count = len(l.Schools())
		}
		items = append(items, levelItem{name: name, schools: count})
	}
	levels.SetItems(items)

	schoolDelegate := list.NewDefaultDelegate()
	schoolDelegate.SetHeight(2)
	schools := list.New(nil, schoolDelegate, 0, 0)
	schools.SetShowStatusBar(true)
	schools.SetFilteringEnabled(false)
	schools.Styles.Title = levels.Styles.Title

	vp := viewport.New(80, 20)

	return model{
		svc:         svc,
		overviewer:  overviewer,
		currentView: levelView,
		levels:      levels,
		schoolInput: ti,
		schools:     schools,
		viewport:    vp,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.levels.SetSize(msg.Width-4, msg.Height-6)
		m.schools.SetSize(msg.Width-4, msg.Height-10)

		// Reserve lines for the year bar, status and help
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.viewportReady = true
		m.updateProfileViewport()
		return m, nil

	case tea.KeyMsg:
		switch m.currentView {
		case levelView:
			return m.handleLevelViewKeys(msg)
		case schoolView, compareView:
			return m.handleSchoolViewKeys(msg)
		case profileView:
			return m.handleProfileViewKeys(msg)
		}

	case tea.MouseMsg:
		if m.currentView == profileView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case profileMsg:
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("Failed to build profile", "error", msg.err, "school", m.selection.School)
			}
			return m, nil
		}
		m.profile = msg.profile
		m.err = nil
		m.currentView = profileView
		m.clampFocus()
		m.updateProfileViewport()
		return m, nil

	case overviewMsg:
		m.loadingAI = false
		if msg.err != nil {
			m.err = fmt.Errorf("AI overview failed: %w", msg.err)
			return m, nil
		}
		m.overview = msg.text
		m.updateProfileViewport()
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("export failed: %w", msg.err)
			return m, nil
		}
		m.status = "Exported to " + msg.path
		return m, nil
	}

	return m, nil
}

func (m model) handleLevelViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		item, ok := m.levels.SelectedItem().(levelItem)
		if !ok {
			return m, nil
		}
		level, err := m.svc.Dataset().Level(item.name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.level = level
		m.err = nil
		m.currentView = schoolView
		m.schools.Title = level.Name() + " Schools"
		m.schoolInput.SetValue("")
		m.schoolInput.Focus()
		m.filterSchools()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.levels, cmd = m.levels.Update(msg)
	return m, cmd
}

func (m model) handleSchoolViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.err = nil
		if m.currentView == compareView {
			m.currentView = profileView
			return m, nil
		}
		m.currentView = levelView
		return m, nil
	case tea.KeyTab:
		if m.schoolInput.Focused() {
			m.schoolInput.Blur()
		} else {
			m.schoolInput.Focus()
		}
		return m, textinput.Blink
	case tea.KeyEnter:
		item, ok := m.schools.SelectedItem().(schoolItem)
		if !ok {
			return m, nil
		}
		return m.choose(item.name)
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.schools, cmd = m.schools.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.schoolInput.Focused() {
		m.schoolInput, cmd = m.schoolInput.Update(msg)
		m.filterSchools()
	} else {
		m.schools, cmd = m.schools.Update(msg)
	}
	return m, cmd
}

// choose applies a picked school as the selection or the compare school.
func (m model) choose(name string) (tea.Model, tea.Cmd) {
	var sel profile.Selection
	var err error
	if m.currentView == compareView {
		sel, err = m.selection.WithCompare(m.level, name)
	} else {
		sel, err = profile.NewSelection(m.level, name)
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.selection = sel
	m.overview = ""
	m.status = ""
	m.viewport.GotoTop()
	return m, buildProfile(m.svc, sel)
}

func (m *model) filterSchools() {
	if m.level == nil {
		return
	}
	names := profile.MatchPrefix(m.level.Schools(), m.schoolInput.Value())
	items := make([]list.Item, 0, len(names))
	for _, n := range names {
		if m.currentView == compareView && n == m.selection.School {
			continue
		}
		items = append(items, schoolItem{name: n, short: m.level.ShortName(n)})
	}
	m.schools.SetItems(items)
}

func (m model) handleProfileViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.currentView = schoolView
		m.profile = nil
		m.overview = ""
		m.status = ""
		m.err = nil
		return m, nil
	case tea.KeyTab:
		m.focusFamily++
		m.clampFocus()
		m.updateProfileViewport()
		return m, nil
	case tea.KeyShiftTab:
		m.focusFamily--
		m.clampFocus()
		m.updateProfileViewport()
		return m, nil
	case tea.KeyLeft:
		return m.cycleYear(-1)
	case tea.KeyRight:
		return m.cycleYear(1)
	case tea.KeyCtrlY:
		if m.profile != nil {
			if err := clipboard.WriteAll(plainNarratives(m.profile)); err != nil {
				m.err = fmt.Errorf("copy failed: %w", err)
			} else {
				m.status = "Copied narratives to clipboard"
			}
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "c":
		m.currentView = compareView
		m.schools.Title = "Compare " + m.selection.School + " with..."
		m.schoolInput.SetValue("")
		m.schoolInput.Focus()
		m.filterSchools()
		return m, textinput.Blink
	case "x":
		if m.selection.Compare == "" {
			return m, nil
		}
		m.selection = m.selection.WithoutCompare()
		m.overview = ""
		return m, buildProfile(m.svc, m.selection)
	case "e":
		if m.profile != nil {
			return m, exportProfile(m.profile, exportFilename(m.profile))
		}
	case "a":
		if m.profile != nil && m.overviewer != nil && !m.loadingAI {
			m.loadingAI = true
			m.err = nil
			return m, fetchOverview(m.overviewer, m.profile)
		}
	}
	return m, nil
}

// yearFamilies lists the families the current profile offers years for.
func (m model) yearFamilies() []profile.Family {
	if m.profile == nil {
		return nil
	}
	var out []profile.Family
	for _, f := range profile.YearFamilies {
		if len(m.profile.YearOptions[f]) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func (m *model) clampFocus() {
	n := len(m.yearFamilies())
	if n == 0 {
		m.focusFamily = 0
		return
	}
	m.focusFamily = ((m.focusFamily % n) + n) % n
}

// cycleYear moves the focused family to the previous or next year.
func (m model) cycleYear(delta int) (tea.Model, tea.Cmd) {
	families := m.yearFamilies()
	if len(families) == 0 {
		return m, nil
	}
	f := families[m.focusFamily]
	options := m.profile.YearOptions[f]

	current := 0
	for i, y := range options {
		if y == m.selection.Year(f) {
			current = i
		}
	}
	next := ((current+delta)%len(options) + len(options)) % len(options)

	sel, err := m.selection.WithYear(m.level, f, options[next])
	if err != nil {
		m.err = err
		return m, nil
	}
	m.selection = sel
	m.overview = ""
	return m, buildProfile(m.svc, sel)
}

func (m model) yearBar() string {
	var parts []string
	for i, f := range m.yearFamilies() {
		text := fmt.Sprintf("%s: %s", familyLabels[f], profile.YearLabel(m.selection.Year(f)))
		if i == m.focusFamily {
			parts = append(parts, focusedYearStyle.Render(text))
		} else {
			parts = append(parts, yearStyle.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *model) updateProfileViewport() {
	if !m.viewportReady || m.profile == nil {
		return
	}
	content, err := renderProfile(m.profile, m.width)
	if err != nil {
		m.err = err
		return
	}
	if m.overview != "" {
		content = titleStyle.Render("Overview") + "\n" + m.overview + "\n\n" + content
	}
	m.viewport.SetContent(content)
}

func (m model) View() string {
	switch m.currentView {
	case schoolView, compareView:
		return m.schoolViewRender()
	case profileView:
		return m.profileViewRender()
	}
	return m.levelViewRender()
}

func (m model) levelViewRender() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🏫 School Profile"))
	b.WriteString("\n\n")
	b.WriteString(m.levels.View())
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	b.WriteString("\n" + helpStyle.Render("Enter: Select | Esc/Ctrl+C: Quit"))
	return b.String()
}

func (m model) schoolViewRender() string {
	var b strings.Builder
	b.WriteString(inputStyle.Render(m.schoolInput.View()))
	b.WriteString("\n\n")
	b.WriteString(m.schools.View())
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	help := "Type to filter | Tab: Switch focus | Enter: Select | Esc: Back | Ctrl+C: Quit"
	b.WriteString("\n" + helpStyle.Render(help))
	return b.String()
}

func (m model) profileViewRender() string {
	if !m.viewportReady || m.profile == nil {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.yearBar())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.viewport.TotalLineCount() > m.viewport.Height {
		scrollPercent := int(m.viewport.ScrollPercent() * 100)
		b.WriteString(helpStyle.Render(fmt.Sprintf("─── %d%% ───", scrollPercent)))
		b.WriteString("\n")
	}
	if m.loadingAI {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Render("⏳ Writing overview..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(okStyle.Render("✓ " + m.status))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("❌ Error: %v", m.err)))
		b.WriteString("\n")
	}

	help := "↑/↓: Scroll | Tab: Year selector | ←/→: Change year | c: Compare | x: Clear compare | e: Export | Ctrl+Y: Copy text"
	if m.overviewer != nil {
		help += " | a: AI overview"
	}
	help += " | Esc: Back"
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

// plainNarratives joins every narrative as plain text.
func plainNarratives(p *profile.Profile) string {
	var parts []string
	for _, n := range p.Narratives {
		parts = append(parts, n.Plain())
	}
	return strings.Join(parts, "\n\n")
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func exportFilename(p *profile.Profile) string {
	name := unsafeFilename.ReplaceAllString(strings.ToLower(p.Title), "_")
	return filepath.Clean(strings.Trim(name, "_") + ".xlsx")
}
