package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/internal/logging"
	"github.com/tonhe/promenade/internal/theme"
	"github.com/tonhe/promenade/tui/components"
	"github.com/tonhe/promenade/tui/keys"
	"github.com/tonhe/promenade/tui/styles"
	"github.com/tonhe/promenade/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateDashboard AppState = iota
	StateSwitcher
)

// TickMsg triggers a periodic redraw so relative times stay current.
type TickMsg time.Time

// UpdateMsg reports that the coordinator has new widget state.
type UpdateMsg struct{}

// Options configures the application model.
type Options struct {
	Version string
	// OnThemeChange is called after the user cycles the theme.
	OnThemeChange func(*theme.Theme)
	Logger        *log.Logger
}

// AppModel is the root Bubble Tea model. It reads render plans from the
// coordinator and forwards navigation keys to it; it never touches widget
// state directly.
type AppModel struct {
	state     AppState
	coord     *coordinator.Coordinator
	opts      Options
	log       *log.Logger
	theme     *theme.Theme
	sty       *styles.Styles
	frame     coordinator.Frame
	dashboard views.DashboardView
	switcher  views.SwitcherView
	help      views.HelpView
	spinner   spinner.Model
	now       time.Time
	width     int
	height    int
}

// NewAppModel creates the root model for a started coordinator.
func NewAppModel(c *coordinator.Coordinator, opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	t := c.Theme()
	sty := styles.NewStyles(t)
	m := AppModel{
		state:     StateDashboard,
		coord:     c,
		opts:      opts,
		log:       opts.Logger,
		theme:     t,
		sty:       sty,
		dashboard: views.NewDashboardView(sty),
		switcher:  views.NewSwitcherView(sty),
		help:      views.NewHelpView(sty),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(sty.Pending)),
		now:       time.Now(),
	}
	m.refresh()
	return m
}

// Init starts the tick loop, the spinner and the coordinator listener.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, waitForUpdate(m.coord.Updates()))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForUpdate blocks on the coordinator's coalesced update signal.
func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return UpdateMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := m.bodyHeight()
		m.dashboard.SetSize(msg.Width, body)
		m.switcher.SetSize(msg.Width, body)
		m.help.SetSize(msg.Width, body)
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, tickCmd()

	case UpdateMsg:
		m.refresh()
		return m, waitForUpdate(m.coord.Updates())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.dashboard.SetSpinner(m.spinner.View())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap

	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.help.IsVisible() {
		if key.Matches(msg, km.Help) || key.Matches(msg, km.Escape) {
			m.help.Toggle()
		}
		return m, nil
	}

	if m.state == StateSwitcher {
		var action views.SwitcherAction
		m.switcher, _, action = m.switcher.Update(msg)
		switch action {
		case views.ActionClose:
			m.state = StateDashboard
		case views.ActionSwitch:
			if err := m.coord.Show(m.switcher.Cursor()); err != nil {
				m.log.Error("show dashboard", "err", err)
			}
			m.state = StateDashboard
			m.refresh()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, km.Quit):
		return m, m.quit()
	case key.Matches(msg, km.Next):
		m.coord.Next()
		m.refresh()
	case key.Matches(msg, km.Previous):
		m.coord.Previous()
		m.refresh()
	case key.Matches(msg, km.Refresh):
		if err := m.coord.RefreshNow(); err != nil {
			m.log.Warn("refresh", "err", err)
		}
	case key.Matches(msg, km.Theme):
		t := m.coord.CycleTheme()
		m.setTheme(t)
		if m.opts.OnThemeChange != nil {
			m.opts.OnThemeChange(t)
		}
		m.refresh()
	case key.Matches(msg, km.Switcher):
		m.openSwitcher()
	case key.Matches(msg, km.Help):
		m.help.Toggle()
	}
	return m, nil
}

func (m AppModel) quit() tea.Cmd {
	m.coord.Stop()
	return tea.Quit
}

func (m *AppModel) openSwitcher() {
	infos := m.coord.Infos()
	boards := m.coord.Boards()
	items := make([]views.SwitcherItem, len(boards))
	for i, b := range boards {
		items[i] = views.SwitcherItem{Name: b.Name, Info: infos[i]}
	}
	_, idx := m.coord.Current()
	m.switcher.SetItems(items, idx)
	m.state = StateSwitcher
}

// setTheme rebuilds every style from t.
func (m *AppModel) setTheme(t *theme.Theme) {
	m.theme = t
	m.sty = styles.NewStyles(t)
	m.dashboard.SetStyles(m.sty)
	m.switcher.SetStyles(m.sty)
	m.help.SetStyles(m.sty)
	m.spinner.Style = m.sty.Pending
}

// refresh pulls the latest render plan from the coordinator.
func (m *AppModel) refresh() {
	m.frame = m.coord.Frame()
	if m.frame.Theme != nil && m.frame.Theme != m.theme {
		m.setTheme(m.frame.Theme)
	}
	m.dashboard.SetFrame(m.frame)
}

func (m AppModel) bodyHeight() int {
	// 1 header line, 2 status bar lines
	return max(1, m.height-1-2)
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := components.RenderHeader(m.sty, components.HeaderInfo{
		Title:   m.frame.Title,
		Index:   m.frame.Index,
		Count:   m.frame.Count,
		Theme:   m.theme.Name,
		Paused:  m.frame.Paused,
		Version: m.opts.Version,
	}, m.width)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateSwitcher:
		body = m.switcher.View()
	default:
		body = m.dashboard.View()
	}

	statusBar := components.RenderStatusBar(m.sty, components.StatusInfo{
		Interval: m.frame.Interval,
		LastPoll: m.frame.LastPoll,
		OK:       m.frame.Healthy(),
		Total:    len(m.frame.Widgets),
		Errors:   m.frame.Errors,
	}, m.now, m.width)

	bodyStyle := m.sty.AppContainer.
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight())

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}
