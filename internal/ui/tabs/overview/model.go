// Package overview provides the visits overview tab.
package overview

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/components"
)

const (
	animationInterval = 40 * time.Millisecond
	animationDuration = 800 * time.Millisecond
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(animationInterval, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// countAnimation eases the displayed visits count towards the latest one.
type countAnimation struct {
	start   time.Time
	from    float64
	target  float64
	current float64
}

// retarget starts a new animation when target changed. It reports whether
// the count is still moving.
func (a *countAnimation) retarget(target float64, now time.Time) bool {
	if target != a.target {
		a.from = a.current
		a.target = target
		a.start = now
	}
	return a.current != a.target
}

func (a *countAnimation) step(now time.Time) {
	if a.current == a.target {
		return
	}
	elapsed := now.Sub(a.start)
	if elapsed >= animationDuration {
		a.current = a.target
		return
	}
	progress := elapsed.Seconds() / animationDuration.Seconds()
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.current = a.from + (a.target-a.from)*ease
}

// Model represents the overview tab state.
type Model struct {
	state     *app.State
	spinner   components.LoadingSpinner
	keys      keyMap
	viewport  viewport.Model
	count     countAnimation
	location  *time.Location
	width     int
	height    int
	animating bool
}

// New creates a new overview model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Connecting..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		location: time.Local,
	}
}

// Init initializes the overview tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the overview tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(time.Time(msg)))

	case app.ServiceEventMsg, app.VisitsRefreshedMsg, app.ConnectResultMsg:
		cmds = append(cmds, m.startAnimation(time.Now()))

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		next := m.state.GetTimeRange().Next()
		return func() tea.Msg {
			return app.ChangeTimeRangeMsg{Range: next}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// startAnimation retargets the count and starts ticking unless a tick is
// already pending.
func (m *Model) startAnimation(now time.Time) tea.Cmd {
	overview := m.state.GetOverview()
	if overview.Loading || overview.Error {
		return nil
	}
	if !m.count.retarget(float64(overview.VisitsCount), now) || m.animating {
		return nil
	}
	m.animating = true
	return animationTickCmd()
}

func (m *Model) handleAnimationTick(now time.Time) tea.Cmd {
	overview := m.state.GetOverview()
	if !overview.Loading && !overview.Error {
		m.count.retarget(float64(overview.VisitsCount), now)
	}
	m.count.step(now)

	if m.count.current != m.count.target {
		return animationTickCmd()
	}
	m.animating = false
	return nil
}

// displayedCount is the animated visits count while an animation runs.
func (m *Model) displayedCount(actual int) int {
	if !m.animating {
		return actual
	}
	return int(m.count.current + 0.5)
}

// SetSize sets the available size for the overview tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Up,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
