package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

const barWidth = 30

type budgetsState int

const (
	budgetsStateBrowse budgetsState = iota
	budgetsStateForm
)

type budgetFields struct {
	categoryID uuid.UUID
	amount     string
}

// BudgetsModel lists the month's budgets with progress bars and status bands.
type BudgetsModel struct {
	CommonModel
	svc Services

	state      budgetsState
	month      month
	lines      []query.BudgetLine
	categories []*category.Category
	cursor     int

	form    *huh.Form
	fields  *budgetFields
	editing *budget.Budget

	loading bool
	status  string
	err     error
}

func NewBudgetsModel(svc Services) BudgetsModel {
	return BudgetsModel{
		svc:     svc,
		month:   currentMonth(svc.Query.Location()),
		loading: true,
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetsStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "←/→: month | ↑/↓: select | n: new | e: edit | x: delete | Esc: back"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case budgetsMsg:
		if msg.month != m.month {
			return m, nil
		}

		m.loading = false
		m.err = msg.err
		m.lines = msg.lines
		m.categories = msg.categories
		m.cursor = min(m.cursor, max(len(m.lines)-1, 0))

		return m, nil

	case budgetSavedMsg:
		m.state = budgetsStateBrowse
		m.form = nil
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.loading = true

		return m, m.loadCmd()
	}

	if m.state == budgetsStateForm {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		m.month = m.month.add(-1)
		m.loading = true

		return m, m.loadCmd()
	case "right", "l":
		m.month = m.month.add(1)
		m.loading = true

		return m, m.loadCmd()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.lines)-1 {
			m.cursor++
		}
	case "n":
		return m.openForm(nil)
	case "e":
		if b := m.selected(); b != nil {
			return m.openForm(b)
		}
	case "x":
		if b := m.selected(); b != nil {
			return m, m.deleteCmd(b.ID)
		}
	}

	return m, nil
}

func (m BudgetsModel) selected() *budget.Budget {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return nil
	}

	return m.lines[m.cursor].Budget
}

// openForm starts a create form, or an edit form when b is set.
func (m BudgetsModel) openForm(b *budget.Budget) (tea.Model, tea.Cmd) {
	var opts []huh.Option[uuid.UUID]

	for _, c := range m.categories {
		if c.Type == transaction.TypeExpense {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
	}

	if len(opts) == 0 {
		m.status = "Create an expense category first."
		return m, nil
	}

	m.fields = &budgetFields{}
	m.editing = b

	if b != nil {
		m.fields.categoryID = b.CategoryID
		m.fields.amount = b.Amount.StringFixed(2)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Category").
				Options(opts...).
				Value(&m.fields.categoryID),

			huh.NewInput().
				Title("Monthly limit for " + m.month.String()).
				Placeholder("0.00").
				Value(&m.fields.amount).
				Validate(validateAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetsStateForm

	return m, m.form.Init()
}

func (m BudgetsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetsStateBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)
	title := headerStyle.Render("◀ " + m.month.String() + " ▶")

	if m.err != nil {
		return style.Render(title + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	var sb strings.Builder

	sb.WriteString(title + "\n\n")

	if m.loading && m.lines == nil {
		sb.WriteString("Loading...")
	} else if len(m.lines) == 0 {
		sb.WriteString(faintStyle.Render("No budgets for this month. Press n to add one."))
	}

	for i, l := range m.lines {
		cursor := "  "
		if i == m.cursor {
			cursor = activeStyle("> ")
		}

		bar := progress.New(
			progress.WithWidth(barWidth),
			progress.WithSolidFill(string(statusColor(l.Progress.Status))),
			progress.WithoutPercentage(),
		)

		fmt.Fprintf(&sb, "%s%-18s %s %6s  %s of %s  %s\n",
			cursor,
			l.Budget.CategoryName,
			bar.ViewAs(l.Progress.Percentage/100),
			format.Percent(l.Progress.Percentage),
			format.Currency(l.Spent),
			format.Currency(l.Budget.Amount),
			lipgloss.NewStyle().Foreground(statusColor(l.Progress.Status)).Render(string(l.Progress.Status)),
		)
	}

	content := strings.TrimRight(sb.String(), "\n")

	if m.state == budgetsStateForm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinVertical(lipgloss.Left, content, "", panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return style.Render(content)
}

// Messages

type budgetsMsg struct {
	month      month
	lines      []query.BudgetLine
	categories []*category.Category
	err        error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	mo, svc := m.month, m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		lines, err := svc.Query.BudgetOverview(ctx, mo.Month, mo.Year)
		if err != nil {
			return budgetsMsg{month: mo, err: err}
		}

		categories, err := svc.Categories.List(ctx, category.ListFilter{})

		return budgetsMsg{month: mo, lines: lines, categories: categories, err: err}
	}
}

type budgetSavedMsg struct {
	status string
	err    error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	f := *m.fields
	mo := m.month
	budgets := m.svc.Budgets

	var editing *budget.Budget
	if m.editing != nil {
		b := *m.editing
		editing = &b
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return budgetSavedMsg{err: err}
		}

		if editing != nil {
			editing.CategoryID = f.categoryID
			editing.Amount = amount

			if err := budgets.Update(ctx, editing); err != nil {
				return budgetSavedMsg{err: err}
			}

			return budgetSavedMsg{status: "Budget updated."}
		}

		_, err = budgets.Create(ctx, budget.CreateParams{
			CategoryID: f.categoryID,
			Amount:     amount,
			Month:      mo.Month,
			Year:       mo.Year,
		})
		if err != nil {
			return budgetSavedMsg{err: err}
		}

		return budgetSavedMsg{status: "Budget created."}
	}
}

func (m BudgetsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	budgets := m.svc.Budgets

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := budgets.Delete(ctx, id); err != nil {
			return budgetSavedMsg{err: err}
		}

		return budgetSavedMsg{status: "Budget deleted."}
	}
}
