// Package tui is the interactive terminal front end: a bubbletea program
// that drives a phase.Controller and renders its state.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/mimic/pkg/metrics"
	"github.com/dd0wney/mimic/pkg/phase"
	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/topology"
)

type view int

const (
	operationView view = iota
	topologyView
	metricsView
	viewCount
)

var viewNames = [viewCount]string{"Operation", "Topology", "Metrics"}

// eventMsg carries one job event to Update.
type eventMsg struct {
	job *phase.Job
	ev  phase.Event
}

// jobDoneMsg reports that a job's event stream was closed.
type jobDoneMsg struct {
	job *phase.Job
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the job's next event. Update re-issues it after
// every event, so events are applied one at a time and in order.
func waitForEvent(job *phase.Job) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-job.Events()
		if !ok {
			return jobDoneMsg{job: job}
		}
		return eventMsg{job: job, ev: ev}
	}
}

// Model is the root bubbletea model.
type Model struct {
	ctrl   *phase.Controller
	bounds topology.Bounds
	job    *phase.Job

	currentView view
	bars        []progress.Model
	logView     viewport.Model
	metricTable table.Model
	help        help.Model
	keys        keyMap

	width      int
	height     int
	message    string
	messageErr bool
	startTime  time.Time
	samples    []metrics.Sample
	logSeen    int
}

// New returns a model driving ctrl. bounds is the layout area the
// controller generates topologies in.
func New(ctrl *phase.Controller, bounds topology.Bounds) Model {
	bars := make([]progress.Model, len(simulation.AllMeters))
	for i := range bars {
		bars[i] = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	}

	columns := []table.Column{
		{Title: "Metric", Width: 34},
		{Title: "Labels", Width: 30},
		{Title: "Value", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
		table.WithWidth(90),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := Model{
		ctrl:        ctrl,
		bounds:      bounds,
		currentView: operationView,
		bars:        bars,
		logView:     viewport.New(80, 12),
		metricTable: t,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
	}
	m.syncLog()
	return m
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tickMsg:
		m.refreshMetrics()
		return m, tickCmd()

	case eventMsg:
		if msg.job != m.job {
			return m, nil
		}
		m.ctrl.Apply(msg.ev)
		m.syncLog()
		return m, waitForEvent(msg.job)

	case jobDoneMsg:
		if msg.job == m.job {
			m.job = nil
			m.refreshMetrics()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.ctrl.Abandon()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Scan):
			return m.start(phase.Scan)
		case key.Matches(msg, m.keys.Deploy):
			return m.start(phase.Infiltrate)
		case key.Matches(msg, m.keys.Analyze):
			return m.start(phase.Analyze)
		case key.Matches(msg, m.keys.Gather):
			return m.start(phase.Exfiltrate)

		case key.Matches(msg, m.keys.Cancel):
			if m.ctrl.Cancel() {
				m.setMessage("Abort requested", false)
			}
			return m, nil

		case key.Matches(msg, m.keys.Reset):
			m.report(m.ctrl.Reset(), "Session reset")
			m.syncLog()
			return m, nil

		case key.Matches(msg, m.keys.Target):
			if err := m.ctrl.CycleTarget(); err != nil {
				m.report(err, "")
			} else {
				m.setMessage("Target: "+m.ctrl.State().Target, false)
			}
			m.syncLog()
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			if m.currentView == metricsView {
				m.refreshMetrics()
			}
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount
			if m.currentView == metricsView {
				m.refreshMetrics()
			}
			return m, nil
		}
	}

	// Update focused component
	switch m.currentView {
	case operationView:
		m.logView, cmd = m.logView.Update(msg)
		cmds = append(cmds, cmd)
	case metricsView:
		m.metricTable, cmd = m.metricTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) start(action phase.Action) (tea.Model, tea.Cmd) {
	job, err := m.ctrl.Start(action)
	if err != nil {
		m.report(err, "")
		return m, nil
	}
	m.job = job
	m.message = ""
	m.syncLog()
	return m, waitForEvent(job)
}

func (m *Model) report(err error, ok string) {
	switch {
	case errors.Is(err, phase.ErrBusy):
		m.setMessage("Operation in progress. Abort it first (x)", true)
	case errors.Is(err, phase.ErrInvalidTransition):
		m.setMessage("Not available yet: complete the previous stage first", true)
	case err != nil:
		m.setMessage(err.Error(), true)
	case ok != "":
		m.setMessage(ok, false)
	}
}

func (m *Model) setMessage(text string, isErr bool) {
	m.message = text
	m.messageErr = isErr
}

func (m *Model) resize() {
	w := max(m.width-8, 40)
	for i := range m.bars {
		m.bars[i].Width = min(w/2, 60)
	}
	m.logView.Width = w
	m.logView.Height = max(m.height-24, 6)
	m.syncLog()
}

// syncLog rebuilds the log viewport when new lines have arrived and keeps
// it pinned to the bottom.
func (m *Model) syncLog() {
	log := m.ctrl.State().Log
	if log.Total() == m.logSeen && m.logSeen != 0 {
		return
	}
	m.logSeen = log.Total()
	m.logView.SetContent(renderLog(log.Entries()))
	m.logView.GotoBottom()
}

func (m *Model) refreshMetrics() {
	samples, err := m.ctrl.Metrics().Snapshot()
	if err != nil {
		m.setMessage(fmt.Sprintf("metrics: %v", err), true)
		return
	}
	m.samples = samples
	m.metricTable.SetRows(sampleRows(samples))
}
