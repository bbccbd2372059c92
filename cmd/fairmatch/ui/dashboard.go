package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fairmatch/internal/backend"
	"fairmatch/internal/engine"
	"fairmatch/internal/store"
	"fairmatch/internal/transform"
)

// page selects what the main area shows once a timeline is loaded.
type page int

const (
	pageSimulation page = iota
	pageStatistics
	pageHelp
)

// state is the dashboard mode: collecting parameters or playing a
// timeline.
type state int

const (
	stateConfiguring state = iota
	stateLoading
	stateViewing
)

// form field indices.
const (
	fieldOrigin = iota
	fieldMode
	fieldTeamSize
	fieldPNorm
	fieldQNorm
	fieldFairnessWeight
	fieldQueueWeight
	fieldMatches
	fieldCount
)

type queryDoneMsg struct {
	result backend.QueryResult
}

type saveDoneMsg struct {
	id  string
	err error
}

type tickMsg time.Time

// Model is the dashboard's bubbletea model. All matchmaking work happens
// behind the facade in background commands; Update and View only touch
// recorded snapshots.
type Model struct {
	facade *backend.Facade
	runs   *store.RunStore // nil when persistence is disabled

	styles       Styles
	tickInterval time.Duration

	state state
	page  page

	inputs     []textinput.Model
	focusIndex int

	spinner spinner.Model
	status  string

	origin   string
	params   transform.Params
	timeline *transform.Timeline
	stepIdx  int
	playing  bool

	width  int
	height int
}

// Options configures the dashboard.
type Options struct {
	Facade       *backend.Facade
	Runs         *store.RunStore
	Theme        Theme
	TickInterval time.Duration
	Origin       string

	// Replay preloads a saved run instead of starting at the form.
	Replay *store.Run
}

// NewModel creates the dashboard model.
func NewModel(opts Options) Model {
	styles := NewStyles(opts.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	placeholders := []struct {
		label string
		value string
	}{
		{"origin", opts.Origin},
		{"mode (unrestricted | time_sensitive)", "unrestricted"},
		{"team size (1-5)", "2"},
		{"fairness norm p (>=1, inf)", "1"},
		{"uniformity norm q (>=1, inf)", "1"},
		{"fairness weight α (>0)", "0.1"},
		{"queue weight β (>=0)", "0.1"},
		{"matches (-1 = all)", "-1"},
	}
	inputs := make([]textinput.Model, fieldCount)
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p.label
		in.SetValue(p.value)
		in.CharLimit = 64
		in.Width = 42
		inputs[i] = in
	}
	inputs[fieldOrigin].Focus()

	m := Model{
		facade:       opts.Facade,
		runs:         opts.Runs,
		styles:       styles,
		tickInterval: opts.TickInterval,
		inputs:       inputs,
		spinner:      sp,
		state:        stateConfiguring,
	}

	if opts.Replay != nil {
		m.state = stateViewing
		m.origin = opts.Replay.Origin
		m.timeline = &transform.Timeline{
			Steps:      opts.Replay.Steps,
			Stats:      opts.Replay.Stats,
			Parameters: replayParameters(opts.Replay.Config),
		}
		m.status = fmt.Sprintf("replaying run %s", opts.Replay.ID)
	}
	return m
}

func replayParameters(cfg engine.Config) map[string]float64 {
	params := map[string]float64{
		"team_size":       float64(cfg.TeamSize),
		"p_norm":          cfg.PNorm,
		"q_norm":          cfg.QNorm,
		"fairness_weight": cfg.FairnessWeight,
		"skill_window":    float64(cfg.SkillWindow()),
	}
	if cfg.Mode == engine.ModeTimeSensitive {
		params["queue_weight"] = cfg.QueueWeight
	}
	return params
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case queryDoneMsg:
		return m.handleQueryDone(msg)

	case saveDoneMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved run " + msg.id
		}
		return m, nil

	case tickMsg:
		if m.state != stateViewing || !m.playing {
			return m, nil
		}
		if m.stepIdx < m.maxStep() {
			m.stepIdx++
		}
		if m.stepIdx >= m.maxStep() {
			m.playing = false
			return m, nil
		}
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleQueryDone(msg queryDoneMsg) (tea.Model, tea.Cmd) {
	if !msg.result.OK() {
		m.state = stateConfiguring
		m.status = fmt.Sprintf("%s: %s", msg.result.Err.Kind, msg.result.Err.Message)
		return m, nil
	}
	view := msg.result.View
	if view.Timeline == nil || len(view.Timeline.Steps) == 0 {
		m.state = stateConfiguring
		m.status = "simulation produced no recorded steps"
		return m, nil
	}
	m.state = stateViewing
	m.page = pageSimulation
	m.timeline = view.Timeline
	m.stepIdx = 0
	m.playing = true
	m.status = fmt.Sprintf("%d steps, %d matches", len(view.Timeline.Steps), len(view.Rows))
	return m, m.tick()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key := msg.String(); key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateConfiguring:
		return m.handleFormKey(msg)
	case stateLoading:
		return m, nil
	default:
		return m.handleViewerKey(msg)
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		if m.inputs[m.focusIndex].Value() == "" || msg.String() == "esc" {
			return m, tea.Quit
		}
	case "tab", "down":
		return m.focusField(m.focusIndex + 1)
	case "shift+tab", "up":
		return m.focusField(m.focusIndex - 1)
	case "enter":
		return m.startSimulation()
	}
	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = (i + fieldCount) % fieldCount
	return m, m.inputs[m.focusIndex].Focus()
}

func (m Model) startSimulation() (tea.Model, tea.Cmd) {
	m.origin = strings.TrimSpace(m.inputs[fieldOrigin].Value())
	m.params = transform.Params{
		"mode":            strings.TrimSpace(m.inputs[fieldMode].Value()),
		"team_size":       strings.TrimSpace(m.inputs[fieldTeamSize].Value()),
		"p_norm":          strings.TrimSpace(m.inputs[fieldPNorm].Value()),
		"q_norm":          strings.TrimSpace(m.inputs[fieldQNorm].Value()),
		"fairness_weight": strings.TrimSpace(m.inputs[fieldFairnessWeight].Value()),
		"queue_weight":    strings.TrimSpace(m.inputs[fieldQueueWeight].Value()),
		"matches":         strings.TrimSpace(m.inputs[fieldMatches].Value()),
	}
	m.state = stateLoading
	m.status = "running simulation..."

	facade := m.facade
	origin := m.origin
	params := m.params
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return queryDoneMsg{result: facade.Query(context.Background(), origin, "simulate", params)}
	})
}

func (m Model) handleViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ":
		if m.stepIdx >= m.maxStep() {
			m.stepIdx = 0
		}
		m.playing = !m.playing
		if m.playing {
			return m, m.tick()
		}
	case "right", "l":
		m.playing = false
		if m.stepIdx < m.maxStep() {
			m.stepIdx++
		}
	case "left", "h":
		m.playing = false
		if m.stepIdx > 0 {
			m.stepIdx--
		}
	case "home", "g":
		m.playing = false
		m.stepIdx = 0
	case "end", "G":
		m.playing = false
		m.stepIdx = m.maxStep()
	case "tab":
		m.page = (m.page + 1) % 3
	case "s":
		return m.saveRun()
	case "r", "esc":
		m.state = stateConfiguring
		m.playing = false
		m.status = ""
		return m, m.inputs[m.focusIndex].Focus()
	}
	return m, nil
}

func (m Model) saveRun() (tea.Model, tea.Cmd) {
	if m.runs == nil {
		m.status = "run persistence is disabled"
		return m, nil
	}
	if m.timeline == nil {
		return m, nil
	}
	cfg, err := ConfigFromTimeline(m.params, m.timeline)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return m, nil
	}
	runs := m.runs
	origin := m.origin
	tl := m.timeline
	matches := tl.Steps[len(tl.Steps)-1].Matches
	return m, func() tea.Msg {
		id, err := runs.Save(origin, cfg, matches, tl.Stats, tl.Steps)
		return saveDoneMsg{id: id, err: err}
	}
}

// ConfigFromTimeline rebuilds the engine config from a timeline's recorded
// parameters for persistence. The explicit mode param wins when present
// since unrestricted runs record no queue weight.
func ConfigFromTimeline(params transform.Params, tl *transform.Timeline) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	p := tl.Parameters
	cfg.TeamSize = int(p["team_size"])
	cfg.PNorm = p["p_norm"]
	cfg.QNorm = p["q_norm"]
	cfg.FairnessWeight = p["fairness_weight"]
	if beta, ok := p["queue_weight"]; ok {
		cfg.Mode = engine.ModeTimeSensitive
		cfg.QueueWeight = beta
	}
	if mode, ok := params["mode"]; ok && mode != "" {
		cfg.Mode = engine.Mode(mode)
	}
	return cfg, cfg.Validate()
}

func (m Model) tick() tea.Cmd {
	interval := m.tickInterval
	if interval <= 0 {
		interval = 400 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) maxStep() int {
	if m.timeline == nil {
		return 0
	}
	return len(m.timeline.Steps) - 1
}

// View renders the dashboard.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}

	header := m.styles.Header.Width(width).Render("fairmatch dashboard")
	var body string
	switch m.state {
	case stateConfiguring:
		body = m.viewForm()
	case stateLoading:
		body = fmt.Sprintf("\n  %s %s\n", m.spinner.View(), m.status)
	default:
		body = m.viewTimeline(width)
	}

	footer := m.styles.Footer.Width(width).Render(m.footerText())
	return header + "\n" + body + "\n" + footer
}

func (m Model) viewForm() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(m.styles.Title.Render("  Configuration"))
	sb.WriteString("\n\n")
	labels := []string{
		"Origin", "Mode", "Team Size (k)", "Fairness Norm (p)",
		"Uniformity Norm (q)", "Fairness Weight (α)", "Queue Weight (β)", "Matches",
	}
	for i, in := range m.inputs {
		cursor := "  "
		if i == m.focusIndex {
			cursor = m.styles.Success.Render("> ")
		}
		sb.WriteString(fmt.Sprintf("  %s%-22s %s\n", cursor, labels[i], in.View()))
	}
	if m.status != "" {
		sb.WriteString("\n  " + m.styles.Error.Render(m.status) + "\n")
	}
	return sb.String()
}

func (m Model) viewTimeline(width int) string {
	tl := m.timeline
	step := tl.Steps[m.stepIdx]
	_, timeSensitive := tl.Parameters["queue_weight"]

	panelWidth := max(40, width-4)

	var sections []string
	switch m.page {
	case pageSimulation:
		half := max(30, (width-6)/2)
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			QueuePanel(step, m.styles, half),
			" ",
			ParametersPanel(tl.Parameters, m.styles, max(28, width-half-7)))
		sections = append(sections, top,
			HeapPanel(step, m.styles, panelWidth),
			MatchesPanel(step, m.styles, panelWidth))
	case pageStatistics:
		sections = append(sections, StatsPanel(tl.Stats, m.styles, panelWidth, timeSensitive))
	default:
		sections = append(sections, m.viewHelp(panelWidth))
	}

	progress := fmt.Sprintf("step %d/%d", m.stepIdx+1, len(tl.Steps))
	if m.playing {
		progress += "  ▶ playing"
	} else {
		progress += "  ⏸ paused"
	}
	if m.status != "" {
		progress += "  " + m.status
	}
	return strings.Join(sections, "\n") + "\n" + m.styles.Muted.Render("  "+progress)
}

func (m Model) footerText() string {
	switch m.state {
	case stateConfiguring:
		return "tab: next field • enter: run • esc: quit"
	case stateLoading:
		return "running..."
	default:
		return "space: play/pause • ←/→: step • g/G: start/end • tab: page • s: save • r: reconfigure • q: quit"
	}
}
