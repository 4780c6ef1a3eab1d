package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/coinquest/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/coinquest/internal/app"
	"github.com/MrJamesThe3rd/coinquest/internal/config"
)

type menuItem struct {
	title string
	open  func(view.Services) view.View
}

var menu = []menuItem{
	{"Dashboard", func(s view.Services) view.View { return view.NewDashboardModel(s) }},
	{"Transaction History", func(s view.Services) view.View { return view.NewHistoryModel(s) }},
	{"New Transaction", func(s view.Services) view.View { return view.NewEntryModel(s) }},
	{"Budgets", func(s view.Services) view.View { return view.NewBudgetsModel(s) }},
	{"Import Transactions", func(s view.Services) view.View { return view.NewImportModel(s) }},
	{"Export Transactions", func(s view.Services) view.View { return view.NewExportModel(s) }},
	{"Review Merchants", func(s view.Services) view.View { return view.NewReviewModel(s) }},
}

type model struct {
	name     string
	services view.Services

	cursor int
	active view.View
	width  int
	height int
}

func newModel(name string, a *app.App) model {
	return model{
		name: name,
		services: view.Services{
			Categories:   a.Categories,
			Merchants:    a.Merchants,
			Transactions: a.Transactions,
			Budgets:      a.Budgets,
			Matching:     a.Matching,
			Query:        a.Query,
			Import:       a.Import,
			Export:       a.Export,
		},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.active == nil {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.active = nil
		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	m.active = next.(view.View)

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menu)-1 {
			m.cursor++
		}
	case "enter":
		return m.open(m.cursor)
	default:
		var n int
		if _, err := fmt.Sscanf(msg.String(), "%d", &n); err == nil && n >= 1 && n <= len(menu) {
			return m.open(n - 1)
		}
	}

	return m, nil
}

func (m model) open(i int) (tea.Model, tea.Cmd) {
	m.cursor = i
	m.active = menu[i].open(m.services)

	cmds := []tea.Cmd{m.active.Init()}
	if m.width > 0 {
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		cmds = append(cmds, func() tea.Msg { return size })
	}

	return m, tea.Batch(cmds...)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.active != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Padding(1, 2, 0).Render(titleStyle.Render(m.active.Title())),
			m.active.View(),
			lipgloss.NewStyle().Padding(0, 2).Render(helpStyle.Render(m.active.ShortHelp())),
		)
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.name) + "\n\n")

	for i, item := range menu {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		fmt.Fprintf(&sb, "%s%d. %s\n", cursor, i+1, item.title)
	}

	sb.WriteString("\n" + helpStyle.Render("↑/↓ or 1-7: choose | Enter: open | q: quit"))

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := tea.LogToFile("coinquest-tui.log", "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(newModel(cfg.App.Name, a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
