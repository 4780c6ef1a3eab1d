package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

const recentCount = 5

// month is a calendar month navigated with the arrow keys.
type month struct {
	Month int
	Year  int
}

func currentMonth(loc *time.Location) month {
	now := time.Now().In(loc)
	return month{Month: int(now.Month()), Year: now.Year()}
}

func (m month) add(n int) month {
	t := time.Date(m.Year, time.Month(m.Month)+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return month{Month: int(t.Month()), Year: t.Year()}
}

func (m month) String() string {
	return format.Month(m.Month, m.Year)
}

// DashboardModel shows the month summary, spending by category and the
// newest transactions.
type DashboardModel struct {
	CommonModel
	svc Services

	month   month
	data    *query.Dashboard
	loading bool
	err     error
}

func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		svc:     svc,
		month:   currentMonth(svc.Query.Location()),
		loading: true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "←/→: month | r: refresh | Esc: back"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, Back
		case "left", "h":
			m.month = m.month.add(-1)
		case "right", "l":
			m.month = m.month.add(1)
		case "r":
		default:
			return m, nil
		}

		m.loading = true

		return m, m.loadCmd()

	case dashboardMsg:
		if msg.month != m.month {
			return m, nil
		}

		m.loading = false
		m.data, m.err = msg.data, msg.err
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1)
	title := headerStyle.Render("◀ " + m.month.String() + " ▶")

	if m.err != nil {
		return style.Render(title + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.data == nil {
		return style.Render(title + "\n\nLoading...")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.summaryView(), "  ", m.budgetView()),
		"",
		m.spendingView(),
		"",
		m.recentView(),
	))
}

func (m DashboardModel) summaryView() string {
	s := m.data.Summary

	balance := successStyle.Render(format.Currency(s.Balance))
	if s.Balance.IsNegative() {
		balance = errorStyle.Render(format.Currency(s.Balance))
	}

	return boxStyle.Render(fmt.Sprintf("Income    %s\nExpenses  %s\nBalance   %s",
		format.Currency(s.Income), format.Currency(s.Expenses), balance))
}

func (m DashboardModel) budgetView() string {
	s := m.data.Summary
	if !s.BudgetTotal.IsPositive() {
		return boxStyle.Render("Budget\n" + faintStyle.Render("none set for this month"))
	}

	p := m.data.Progress
	bar := lipgloss.NewStyle().Foreground(statusColor(p.Status)).Render(format.Bar(p.Percentage, 20))

	return boxStyle.Render(fmt.Sprintf("Budget  %s of %s\n%s %s  %s",
		format.Currency(s.BudgetUsed), format.Currency(s.BudgetTotal),
		bar, format.Percent(p.Percentage), p.Status))
}

func (m DashboardModel) spendingView() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Spending by category") + "\n")

	if len(m.data.Spending) == 0 {
		sb.WriteString(faintStyle.Render("No expenses this month."))
		return sb.String()
	}

	for _, c := range m.data.Spending {
		change := format.Change(c.Change())
		if c.PreviousMonthAmount.IsZero() {
			change = "new"
		}

		fmt.Fprintf(&sb, "%-20s %12s  %s\n",
			c.Category, format.Currency(c.Amount), faintStyle.Render(change+" vs last month"))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m DashboardModel) recentView() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Recent transactions") + "\n")

	if len(m.data.Recent) == 0 {
		sb.WriteString(faintStyle.Render("Nothing recorded yet."))
		return sb.String()
	}

	for _, tx := range m.data.Recent {
		amount := format.Currency(tx.Amount)
		if tx.Type == transaction.TypeExpense {
			amount = "-" + amount
		}

		fmt.Fprintf(&sb, "%-14s %-20s %-16s %12s\n",
			format.Relative(tx.Date), tx.MerchantName, tx.CategoryName, amount)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Messages

type dashboardMsg struct {
	month month
	data  *query.Dashboard
	err   error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	mo, q := m.month, m.svc.Query

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		data, err := q.Dashboard(ctx, mo.Month, mo.Year, recentCount)

		return dashboardMsg{month: mo, data: data, err: err}
	}
}
