package tui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/mimic/pkg/metrics"
	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/phase"
	"github.com/dd0wney/mimic/pkg/simulation"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("MIMIC") + "  " +
		subtitleStyle.Render("Advanced Network Infiltration System"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	switch m.currentView {
	case operationView:
		s.WriteString(m.renderOperation())
	case topologyView:
		s.WriteString(m.renderTopologyView())
	case metricsView:
		s.WriteString(m.renderMetrics())
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderStatusBar())

	if m.message != "" {
		s.WriteString("\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range viewNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(name))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderOperation() string {
	st := m.ctrl.State()

	var controls strings.Builder
	controls.WriteString("Target System:\n")
	controls.WriteString(actionOnStyle.Render(st.Target))
	controls.WriteString("\n\n")
	for _, a := range phase.AllActions {
		label := fmt.Sprintf("[%s] %s", actionKey(a), actionLabel(a))
		if m.ctrl.Enabled(a) {
			controls.WriteString(actionOnStyle.Render(label))
		} else {
			controls.WriteString(actionOffStyle.Render(label))
		}
		controls.WriteString("\n")
	}
	controls.WriteString("\n")
	controls.WriteString(subtitleStyle.Render(fmt.Sprintf("Phase:  %s\nStatus: %s", st.Phase, st.Status)))

	var meters strings.Builder
	for i, meter := range simulation.AllMeters {
		ms := st.Meter(meter)
		if i > 0 {
			meters.WriteString("\n\n")
		}
		meters.WriteString(meter.String())
		meters.WriteString("\n")
		meters.WriteString(m.bars[i].ViewAs(ms.Value))
		meters.WriteString("\n")
		meters.WriteString(subtitleStyle.Render(ms.Status))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(controls.String()),
		panelStyle.Render(meters.String()),
	)

	var s strings.Builder
	s.WriteString(top)
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("Operation Log"))
	s.WriteString("\n")
	s.WriteString(m.logView.View())
	return contentStyle.Render(s.String())
}

func (m Model) renderTopologyView() string {
	st := m.ctrl.State()

	var s strings.Builder
	s.WriteString(headerStyle.Render("Network Topology"))
	s.WriteString("\n\n")

	if st.Graph == nil {
		s.WriteString(helpStyle.Render("No topology yet\n\nPress 's' to scan the target network"))
		return contentStyle.Render(s.String())
	}

	cols := max(min(m.width-10, 100), 20)
	rows := max(cols*m.bounds.Height/max(m.bounds.Width, 1)/2, 8)
	s.WriteString(graphBoxStyle.Render(renderTopology(st.Graph, st.Marks, m.bounds, cols, rows)))
	s.WriteString("\n")
	s.WriteString(topologyLegend())
	s.WriteString("\n\n")

	stats := st.Graph.Stats()
	summary := fmt.Sprintf("Nodes %d  Links %d  Degree %d-%d  Active %d  Infected %d",
		stats.NodeCount, stats.EdgeCount, stats.MinDegree, stats.MaxDegree,
		len(st.Marks.Active()), len(st.Marks.Infected()))
	if st.HasEntry {
		entry, _ := st.Graph.Node(st.EntryPoint)
		summary += fmt.Sprintf("  Entry #%d (%s)  Targets %d", st.EntryPoint, entry.Type.Upper(), len(st.HighValue))
	}
	s.WriteString(subtitleStyle.Render(summary))
	return contentStyle.Render(s.String())
}

func (m Model) renderMetrics() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Session Metrics"))
	s.WriteString("\n\n")

	if len(m.samples) == 0 {
		s.WriteString(helpStyle.Render("No metrics recorded yet"))
		return contentStyle.Render(s.String())
	}

	uptime := time.Since(m.startTime).Round(time.Second)
	st := m.ctrl.State()
	s.WriteString(subtitleStyle.Render(fmt.Sprintf("Session %s  Seed %d  Uptime %s", st.Session, st.Seed, uptime)))
	s.WriteString("\n\n")
	s.WriteString(m.metricTable.View())
	return contentStyle.Render(s.String())
}

func (m Model) renderStatusBar() string {
	st := m.ctrl.State()
	parts := make([]string, 0, len(simulation.AllIndicators))
	for _, k := range simulation.AllIndicators {
		ind := st.Indicator(k)
		parts = append(parts, k.String()+": "+levelStyle(ind.Level).Render(ind.Label))
	}
	return statusBarStyle.Render(strings.Join(parts, "   "))
}

func renderLog(entries []narrative.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(severityStyles[narrative.System].Render(e.Stamp()))
		b.WriteString(severityStyles[e.Severity].Render(e.Text))
	}
	return b.String()
}

func sampleRows(samples []metrics.Sample) []table.Row {
	rows := make([]table.Row, 0, len(samples))
	for _, s := range samples {
		var labels []string
		for _, k := range slices.Sorted(maps.Keys(s.Labels)) {
			labels = append(labels, k+"="+s.Labels[k])
		}
		value := strconv.FormatFloat(s.Value, 'f', -1, 64)
		if s.Count > 0 {
			value = fmt.Sprintf("%d obs, avg %.2f", s.Count, s.Value/float64(s.Count))
		}
		rows = append(rows, table.Row{
			strings.TrimPrefix(s.Name, "mimic_"),
			strings.Join(labels, ","),
			value,
		})
	}
	return rows
}

func actionKey(a phase.Action) string {
	switch a {
	case phase.Scan:
		return "s"
	case phase.Infiltrate:
		return "d"
	case phase.Analyze:
		return "a"
	default:
		return "g"
	}
}

func actionLabel(a phase.Action) string {
	switch a {
	case phase.Scan:
		return "Scan Network"
	case phase.Infiltrate:
		return "Deploy Mimic"
	case phase.Analyze:
		return "Analyze Environment"
	default:
		return "Gather Intelligence"
	}
}
