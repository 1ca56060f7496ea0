// Package tui is the interactive dashboard behind `ifconnectctl watch`. It
// renders every currently polled command's state-cache entry as a single
// table, refreshing a row whenever a new data event for that command
// arrives on its input channel.
package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12")).
				PaddingRight(1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingRight(1)

	altRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			PaddingRight(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)
)

// Row is one line of the dashboard: a command name, its most recently
// decoded value, its declared wire type, and when it last changed.
type Row struct {
	Name      string
	Value     string
	Type      string
	UpdatedAt string
}

// rowMsg is delivered on the Model's input channel whenever the client's
// state cache is updated for a registered command.
type rowMsg Row

// closedMsg is sent on the input channel's close to let the model exit
// cleanly instead of blocking forever on the next read.
type closedMsg struct{}

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	rows   map[string]Row
	order  []string
	in     <-chan Row
	done   <-chan struct{}
	width  int
	height int
}

// New returns a Model that reads rows from in until done is closed.
func New(in <-chan Row, done <-chan struct{}) Model {
	return Model{
		rows: make(map[string]Row),
		in:   in,
		done: done,
	}
}

// Init starts the first read from the input channel.
func (m Model) Init() tea.Cmd {
	return waitForRow(m.in, m.done)
}

func waitForRow(in <-chan Row, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case r, ok := <-in:
			if !ok {
				return closedMsg{}
			}
			return rowMsg(r)
		case <-done:
			return closedMsg{}
		}
	}
}

// Update processes messages and returns an updated model plus any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case rowMsg:
		r := Row(msg)
		if _, seen := m.rows[r.Name]; !seen {
			m.order = append(m.order, r.Name)
		}
		m.rows[r.Name] = r
		return m, waitForRow(m.in, m.done)

	case closedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders the entire dashboard to a string.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("  ifconnect watch  "))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")
	sb.WriteString(m.renderTable(m.width - 2))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")
	sb.WriteString(statusBarStyle.Render(fmt.Sprintf("%d subscriptions  |  q: quit", len(m.order))))
	return sb.String()
}

func (m Model) renderTable(width int) string {
	if len(m.order) == 0 {
		return dimStyle.Render("  Waiting for the first update…")
	}

	names := append([]string(nil), m.order...)
	sort.Strings(names)

	colName := colWidth(width, 0.40)
	colValue := colWidth(width, 0.25)
	colType := colWidth(width, 0.15)
	colUpdated := colWidth(width, 0.20)

	header := strings.Join([]string{
		headerCellStyle.Width(colName).Render("NAME"),
		headerCellStyle.Width(colValue).Render("VALUE"),
		headerCellStyle.Width(colType).Render("TYPE"),
		headerCellStyle.Width(colUpdated).Render("UPDATED"),
	}, "")

	var lines []string
	lines = append(lines, header)
	for i, name := range names {
		r := m.rows[name]
		style := rowStyle
		if i%2 == 0 {
			style = altRowStyle
		}
		line := strings.Join([]string{
			style.Width(colName).Render(truncate(r.Name, colName-1)),
			style.Width(colValue).Render(truncate(r.Value, colValue-1)),
			style.Width(colType).Render(truncate(r.Type, colType-1)),
			style.Width(colUpdated).Render(truncate(r.UpdatedAt, colUpdated-1)),
		}, "")
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func colWidth(total int, fraction float64) int {
	w := int(float64(total) * fraction)
	if w < 8 {
		w = 8
	}
	return w
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return fmt.Sprintf("%s…", string(runes[:maxLen-1]))
}
