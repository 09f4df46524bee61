package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nmaniam/topovis/pkg/collect"
)

// Per-row styles for the collection view.
var (
	statusPendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	statusActiveStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	statusDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	statusFailedStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// deviceState is the lifecycle of one device during collection.
type deviceState int

const (
	statePending deviceState = iota
	stateConnecting
	stateCollected
	stateFailed
)

// deviceRow is the display state for one inventory host.
type deviceRow struct {
	host   string
	device string // reported hostname, once known
	state  deviceState
	err    error
}

// collectDoneMsg ends the program when collection finishes.
type collectDoneMsg struct{}

// tickMsg drives the spinner animation.
type tickMsg struct{}

// CollectModel is the bubbletea model showing per-device collection
// progress. Events arrive on a channel fed by the collector's callback, so
// updates stay on the bubbletea goroutine.
type CollectModel struct {
	rows   []deviceRow
	index  map[string]int // host → row
	events <-chan collect.Event
	frame  int
	done   bool
}

// NewCollectModel creates the progress model for the given inventory hosts.
func NewCollectModel(hosts []string, events <-chan collect.Event) CollectModel {
	sorted := make([]string, len(hosts))
	copy(sorted, hosts)
	sort.Strings(sorted)

	rows := make([]deviceRow, len(sorted))
	index := make(map[string]int, len(sorted))
	for i, h := range sorted {
		rows[i] = deviceRow{host: h}
		index[h] = i
	}
	return CollectModel{rows: rows, index: index, events: events}
}

func (m CollectModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tick())
}

// waitForEvent blocks for the next collector event. The channel closing
// signals the end of collection.
func (m CollectModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return collectDoneMsg{}
		}
		return ev
	}
}

const tuiTickInterval = 80 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(tuiTickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m CollectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, tick()
	case collect.Event:
		if i, ok := m.index[msg.Host]; ok {
			switch msg.Kind {
			case collect.EventConnecting:
				m.rows[i].state = stateConnecting
			case collect.EventCollected:
				m.rows[i].state = stateCollected
				m.rows[i].device = msg.Device
			case collect.EventFailed:
				m.rows[i].state = stateFailed
				m.rows[i].err = msg.Err
			}
		}
		return m, m.waitForEvent()
	case collectDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

var tuiSpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m CollectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Collecting topology"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("ctrl+c abort"))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		var icon, label string
		switch row.state {
		case statePending:
			icon = statusPendingStyle.Render("·")
			label = statusPendingStyle.Render("waiting")
		case stateConnecting:
			icon = statusActiveStyle.Render(tuiSpinnerFrames[m.frame%len(tuiSpinnerFrames)])
			label = statusActiveStyle.Render("connecting")
		case stateCollected:
			icon = statusDoneStyle.Render(iconSuccess)
			label = statusDoneStyle.Render("collected")
			if row.device != "" && row.device != row.host {
				label += StyleDim.Render(" as " + row.device)
			}
		case stateFailed:
			icon = statusFailedStyle.Render(iconError)
			label = statusFailedStyle.Render("unreachable")
			if row.err != nil {
				label += StyleDim.Render(" " + row.err.Error())
			}
		}
		fmt.Fprintf(&b, "  %s %-24s %s\n", icon, row.host, label)
	}

	collected, failed := m.counts()
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d collected, %d failed, %d total]", collected, failed, len(m.rows))))
	b.WriteString("\n")

	return b.String()
}

func (m CollectModel) counts() (collected, failed int) {
	for _, row := range m.rows {
		switch row.state {
		case stateCollected:
			collected++
		case stateFailed:
			failed++
		}
	}
	return collected, failed
}
