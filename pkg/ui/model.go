// Package ui renders the diagram in the terminal: an ASCII projection of the
// relaxing layout with category/level toggles and tree-path highlighting.
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orbweave/pkg/diagram"
	"github.com/vanderheijden86/orbweave/pkg/forces"
	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

// Messages pushed in by the diagram adapter.
type (
	filterAppliedMsg struct{ snap *view.Snapshot }
	layoutTickMsg    struct{}
	layoutSettledMsg struct{ reason forces.StopReason }
)

// Adapter bridges diagram callbacks onto the bubbletea program's message
// queue. All rendering happens on the UI goroutine.
type Adapter struct {
	send func(tea.Msg)
}

// NewAdapter wraps a message sink, usually (*tea.Program).Send.
func NewAdapter(send func(tea.Msg)) *Adapter {
	return &Adapter{send: send}
}

func (a *Adapter) OnLayoutTick(nodes []*model.LayoutNode, links []model.Link) {
	a.send(layoutTickMsg{})
}

func (a *Adapter) OnLayoutSettled(nodes []*model.LayoutNode, reason forces.StopReason) {
	a.send(layoutSettledMsg{reason: reason})
}

func (a *Adapter) OnFilterApplied(snap *view.Snapshot) {
	a.send(filterAppliedMsg{snap: snap})
}

// Model is the bubbletea model for the diagram view.
type Model struct {
	d     *diagram.Diagram
	title string
	keys  KeyMap

	// startOnInit defers diagram startup until the program's message loop
	// runs, so adapter sends cannot block before then.
	startOnInit bool

	width  int
	height int

	snap     *view.Snapshot
	cursorID int
	path     view.TreePath

	showValues bool
	showHelp   bool
	relaxing   bool
	settled    forces.StopReason
}

// NewModel builds the view around a diagram.
func NewModel(d *diagram.Diagram, title string, showValues bool) Model {
	return Model{
		d:          d,
		title:      title,
		keys:       DefaultKeyMap(),
		cursorID:   -1,
		showValues: showValues,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.startOnInit {
		d := m.d
		return func() tea.Msg {
			d.Start()
			return nil
		}
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case filterAppliedMsg:
		m.snap = msg.snap
		m.relaxing = true
		m.settled = ""
		if m.cursorID >= 0 && m.snap.Node(m.cursorID) == nil {
			m.cursorID = -1
		}
		m.refreshPath()
		return m, nil

	case layoutTickMsg:
		return m, nil

	case layoutSettledMsg:
		m.relaxing = false
		m.settled = msg.reason
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.d.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextNode):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevNode):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Category):
		cats := m.d.Hierarchy().Categories()
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(cats) {
			vis := m.d.Visibility()
			m.d.SetCategoryVisible(cats[idx], !vis.Categories[cats[idx]])
		}
		return m, nil

	case key.Matches(msg, m.keys.Level):
		if depth := levelForKey(msg.String()); depth > 0 {
			vis := m.d.Visibility()
			if shown, ok := vis.Depths[depth]; ok {
				m.d.SetLevelVisible(depth, !shown)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.ShowAll):
		m.d.ShowAllCategories()
		m.d.ShowAllLevels()
		return m, nil

	case key.Matches(msg, m.keys.HideAll):
		m.d.HideAllCategories()
		return m, nil

	case key.Matches(msg, m.keys.ToggleVals):
		m.showValues = !m.showValues
		return m, nil

	case key.Matches(msg, m.keys.ToggleHelp):
		m.showHelp = !m.showHelp
		return m, nil
	}
	return m, nil
}

// moveCursor steps the highlight cursor through visible nodes in pre-order.
func (m *Model) moveCursor(delta int) {
	if m.snap == nil || len(m.snap.Nodes) == 0 {
		return
	}
	idx := -1
	for i, n := range m.snap.Nodes {
		if n.ID == m.cursorID {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = len(m.snap.Nodes) - 1
	}
	if idx >= len(m.snap.Nodes) {
		idx = 0
	}
	m.cursorID = m.snap.Nodes[idx].ID
	m.refreshPath()
}

func (m *Model) refreshPath() {
	if m.snap == nil || m.cursorID < 0 {
		m.path = view.TreePath{}
		return
	}
	m.path = m.snap.TreePath(m.cursorID)
}

// CursorID returns the highlighted node id, or -1.
func (m Model) CursorID() int { return m.cursorID }

// View implements tea.Model.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	header := m.viewHeader()
	legend := m.viewLegend()
	help := m.viewHelp()

	chrome := lipgloss.Height(header) + lipgloss.Height(legend) + lipgloss.Height(help)
	canvasH := m.height - chrome
	if canvasH < 4 {
		canvasH = 4
	}

	body := renderDiagram(m.snap, m.path, m.cursorID, m.width, canvasH, m.showValues)

	return strings.Join([]string{header, body, legend, help}, "\n")
}

func (m Model) viewHeader() string {
	status := "settling"
	if !m.relaxing {
		status = string(m.settled)
		if status == "" {
			status = "idle"
		}
	}

	counts := ""
	if m.snap != nil {
		counts = fmt.Sprintf("  %d nodes, %d hidden", len(m.snap.Nodes), m.snap.HiddenCount())
	}
	return styleHeader.Render(m.title) + styleStatus.Render(counts+"  ["+status+"]")
}

func (m Model) viewLegend() string {
	if m.snap == nil {
		return ""
	}
	vis := m.d.Visibility()

	var parts []string
	for i, name := range m.d.Hierarchy().Categories() {
		label := fmt.Sprintf("%d:%s", i+1, name)
		if vis.Categories[name] {
			parts = append(parts, styleLegendOn.Render(label))
		} else {
			parts = append(parts, styleLegendOff.Render(label))
		}
	}
	for _, depth := range vis.DepthLevels() {
		if depth == 0 {
			continue
		}
		label := fmt.Sprintf("L%d", depth)
		if vis.Depths[depth] {
			parts = append(parts, styleLegendOn.Render(label))
		} else {
			parts = append(parts, styleLegendOff.Render(label))
		}
	}
	return styleHelp.Render("  ") + strings.Join(parts, styleHelp.Render(" · "))
}

func (m Model) viewHelp() string {
	if !m.showHelp {
		return styleHelp.Render("  ? help · q quit")
	}
	return styleHelp.Render(
		"  1-9 toggle category · shift+1-4 toggle level · a show all · A hide all · tab/shift+tab cursor · v values · q quit")
}

// formatValue prints a bubble value without trailing decimal noise.
func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Run wires a diagram to a fresh bubbletea program and blocks until quit.
// The diagram starts once the message loop is live.
func Run(d *diagram.Diagram, title string, showValues bool) error {
	m := NewModel(d, title, showValues)
	m.startOnInit = true
	p := tea.NewProgram(m, tea.WithAltScreen())
	d.SetAdapter(NewAdapter(p.Send))
	defer d.Stop()
	_, err := p.Run()
	return err
}
