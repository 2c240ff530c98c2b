// gateway-top is a terminal dashboard for a running gateway engine. It polls
// the HTTP API and renders live stats, connections and meshes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	connectionsView
	meshesView
	protocolsView
)

const viewCount = 4

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

// API response shapes, matching the server's JSON exactly.

type statsPayload struct {
	TotalConnections  uint64 `json:"total_connections"`
	TotalSyncs        uint64 `json:"total_syncs"`
	TotalTransforms   uint64 `json:"total_transforms"`
	BytesRelayed      uint64 `json:"bytes_relayed"`
	ActiveConnections int    `json:"active_connections"`
	ActiveMeshes      int    `json:"active_meshes"`
}

type healthPayload struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	UptimeSecs int64  `json:"uptime_secs"`
	TotalOps   uint64 `json:"total_ops"`
}

type connectionPayload struct {
	ConnectionID string `json:"connection_id"`
	DeviceID     string `json:"device_id"`
	Protocol     string `json:"protocol"`
	Region       string `json:"region"`
	Status       string `json:"status"`
}

type meshPayload struct {
	MeshID   string `json:"mesh_id"`
	Devices  int    `json:"devices"`
	Topology string `json:"topology"`
	Status   string `json:"status"`
}

type protocolPayload struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Encoding  string `json:"encoding"`
}

type snapshot struct {
	Stats       statsPayload
	Health      healthPayload
	Connections []connectionPayload
	Meshes      []meshPayload
	Protocols   []protocolPayload
	Err         error
}

type client struct {
	base string
	http *http.Client
}

func (c *client) getJSON(path string, v any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *client) fetch() snapshot {
	var snap snapshot

	if err := c.getJSON("/api/v1/gateway/stats", &snap.Stats); err != nil {
		snap.Err = err
		return snap
	}
	if err := c.getJSON("/health", &snap.Health); err != nil {
		snap.Err = err
		return snap
	}

	var conns struct {
		Connections []connectionPayload `json:"connections"`
	}
	if err := c.getJSON("/api/v1/gateway/connections", &conns); err != nil {
		snap.Err = err
		return snap
	}
	snap.Connections = conns.Connections

	var meshes struct {
		Meshes []meshPayload `json:"meshes"`
	}
	if err := c.getJSON("/api/v1/gateway/meshes", &meshes); err != nil {
		snap.Err = err
		return snap
	}
	snap.Meshes = meshes.Meshes

	var protos struct {
		Protocols []protocolPayload `json:"protocols"`
	}
	if err := c.getJSON("/api/v1/gateway/protocols", &protos); err != nil {
		snap.Err = err
		return snap
	}
	snap.Protocols = protos.Protocols

	return snap
}

type snapshotMsg snapshot

type tickMsg time.Time

func pollCmd(c *client) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(c.fetch())
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	client      *client
	interval    time.Duration
	currentView view
	connTable   table.Model
	meshTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	snap        snapshot
	lastErr     error
}

func newDataTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
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
	return t
}

func initialModel(c *client, interval time.Duration) model {
	connTable := newDataTable([]table.Column{
		{Title: "Connection", Width: 36},
		{Title: "Device", Width: 20},
		{Title: "Protocol", Width: 12},
		{Title: "Region", Width: 10},
		{Title: "Status", Width: 10},
	})
	meshTable := newDataTable([]table.Column{
		{Title: "Mesh", Width: 36},
		{Title: "Devices", Width: 8},
		{Title: "Topology", Width: 10},
		{Title: "Status", Width: 12},
	})

	return model{
		client:    c,
		interval:  interval,
		connTable: connTable,
		meshTable: meshTable,
		help:      help.New(),
		keys:      keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollCmd(m.client), tickCmd(m.interval))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		return m, tea.Batch(pollCmd(m.client), tickCmd(m.interval))

	case snapshotMsg:
		snap := snapshot(msg)
		m.lastErr = snap.Err
		if snap.Err == nil {
			m.snap = snap
			m.refreshTables()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
		}
	}

	switch m.currentView {
	case connectionsView:
		m.connTable, cmd = m.connTable.Update(msg)
		cmds = append(cmds, cmd)
	case meshesView:
		m.meshTable, cmd = m.meshTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) refreshTables() {
	connRows := make([]table.Row, 0, len(m.snap.Connections))
	for _, c := range m.snap.Connections {
		connRows = append(connRows, table.Row{
			c.ConnectionID, c.DeviceID, c.Protocol, c.Region, c.Status,
		})
	}
	m.connTable.SetRows(connRows)

	meshRows := make([]table.Row, 0, len(m.snap.Meshes))
	for _, mesh := range m.snap.Meshes {
		meshRows = append(meshRows, table.Row{
			mesh.MeshID, fmt.Sprintf("%d", mesh.Devices), mesh.Topology, mesh.Status,
		})
	}
	m.meshTable.SetRows(meshRows)
}

func (m model) View() string {
	if m.width == 0 {
		return "Connecting..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Gateway Engine - Live Dashboard"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case connectionsView:
		s.WriteString(contentStyle.Render(m.connTable.View()))
	case meshesView:
		s.WriteString(contentStyle.Render(m.meshTable.View()))
	case protocolsView:
		s.WriteString(m.renderProtocols())
	}

	if m.lastErr != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("poll failed: %v", m.lastErr)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Dashboard", "Connections", "Meshes", "Protocols"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	stats := m.snap.Stats
	health := m.snap.Health

	statsContent := fmt.Sprintf(`Traffic
---------------
Connections:  %d
Syncs:        %d
Transforms:   %d
Bytes:        %s`,
		stats.TotalConnections,
		stats.TotalSyncs,
		stats.TotalTransforms,
		formatBytes(stats.BytesRelayed),
	)

	stateContent := fmt.Sprintf(`Gateway
---------------
Status:       %s
Version:      %s
Uptime:       %s
Active conns: %d
Active meshes: %d`,
		health.Status,
		health.Version,
		(time.Duration(health.UptimeSecs) * time.Second).String(),
		stats.ActiveConnections,
		stats.ActiveMeshes,
	)

	statsBox := statsBoxStyle.Render(statsContent)
	stateBox := statsBoxStyle.Render(stateContent)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBox, stateBox),
	)
}

func (m model) renderProtocols() string {
	var s strings.Builder

	s.WriteString("Protocol Catalog\n\n")
	for _, p := range m.snap.Protocols {
		s.WriteString(fmt.Sprintf("  %-14s %-10s %s\n", p.Name, p.Transport, p.Encoding))
	}
	if len(m.snap.Protocols) == 0 {
		s.WriteString("  no protocols reported\n")
	}

	return contentStyle.Render(statsBoxStyle.Render(s.String()))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func main() {
	baseURL := flag.String("url", "http://localhost:8081", "Base URL of the gateway API")
	interval := flag.Duration("interval", time.Second, "Poll interval")
	flag.Parse()

	c := &client{
		base: strings.TrimRight(*baseURL, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}

	p := tea.NewProgram(initialModel(c, *interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
