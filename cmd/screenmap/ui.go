// # cmd/screenmap/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"screenmap/internal/catalog"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	issueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	isCycle     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list            list.Model
	screens         []catalog.Screen
	disallowed      [][]string
	issues          []catalog.DependencyIssue
	diagnosticCount int
	lastUpdate      time.Time
}

type updateMsg struct {
	screens         []catalog.Screen
	cycles          [][]string
	disallowed      [][]string
	issues          []catalog.DependencyIssue
	diagnosticCount int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.screens = msg.screens
		m.disallowed = msg.disallowed
		m.issues = msg.issues
		m.diagnosticCount = msg.diagnosticCount
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, c := range msg.disallowed {
			items = append(items, item{
				title:   "Disallowed Cycle",
				desc:    strings.Join(c, " -> "),
				isCycle: true,
			})
		}
		for _, issue := range msg.issues {
			items = append(items, item{
				title: "Unknown Dependency",
				desc:  issue.String(),
			})
		}
		for _, s := range msg.screens {
			desc := s.Route
			if s.Dialect != "" {
				desc = fmt.Sprintf("%s (%s)", s.Route, s.Dialect)
			}
			items = append(items, item{
				title: s.Title,
				desc:  desc,
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d screens | %d diagnostics",
		m.lastUpdate.Format("15:04:05"), len(m.screens), m.diagnosticCount))

	var summary string
	if len(m.disallowed) == 0 && len(m.issues) == 0 {
		summary = successStyle.Render("✅ Catalog Clean")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			cycleStyle.Render(fmt.Sprintf("%d Cycles", len(m.disallowed))),
			issueStyle.Render(fmt.Sprintf("%d Unknown Deps", len(m.issues))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Screen Catalog Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Screens & Issues"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
