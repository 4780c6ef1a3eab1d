package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type historyState int

const (
	historyStateBrowse historyState = iota
	historyStateSearch
	historyStateEdit
)

var (
	typeFilters = []*transaction.Type{nil, new(transaction.TypeExpense), new(transaction.TypeIncome)}
	dateFilters = []Timeframe{TimeframeAll, TimeframeThisWeek, TimeframeLastWeek, TimeframeThisMonth, TimeframeLastMonth}
)

// HistoryModel lists transactions with search, filters and a sort toggle.
type HistoryModel struct {
	CommonModel
	svc Services

	state  historyState
	table  table.Model
	search textinput.Model
	txs    []*transaction.Transaction
	form   *huh.Form

	typeIdx int
	dateIdx int
	order   transaction.SortOrder

	// seq discards results of loads superseded by a newer one.
	seq     int
	loading bool
	err     error
	status  string

	// edit holds the form bindings; huh writes through these pointers
	// while the model itself is copied on every update.
	edit *editFields
}

type editFields struct {
	amount string
	note   string
}

func NewHistoryModel(svc Services) HistoryModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 16},
		{Title: "Merchant", Width: 20},
		{Title: "Note", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "merchant, category or note"
	search.Prompt = "/ "
	search.Width = 40

	return HistoryModel{
		svc:     svc,
		table:   t,
		search:  search,
		order:   transaction.SortDesc,
		loading: true,
	}
}

func (m HistoryModel) Title() string { return "Transaction History" }

func (m HistoryModel) ShortHelp() string {
	switch m.state {
	case historyStateSearch:
		return "Type to search | Enter: done | Esc: clear"
	case historyStateEdit:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | /: search | t: type | d: date | o: order | e: edit | x: delete | r: refresh"
}

func (m HistoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadHistoryMsg:
		if msg.seq != m.seq {
			return m, nil
		}

		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case historySaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()
		cmd := m.reload()

		return m, cmd

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case historyStateBrowse:
		return m.updateBrowse(msg)
	case historyStateSearch:
		return m.updateSearch(msg)
	case historyStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m HistoryModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			cmd := m.reload()
			return m, cmd
		case "/":
			m.state = historyStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			cmd := m.reload()

			return m, cmd
		case "d":
			m.dateIdx = (m.dateIdx + 1) % len(dateFilters)
			cmd := m.reload()

			return m, cmd
		case "o":
			if m.order == transaction.SortAsc {
				m.order = transaction.SortDesc
			} else {
				m.order = transaction.SortAsc
			}

			cmd := m.reload()

			return m, cmd
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.state = historyStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEsc:
			m.state = historyStateBrowse
			m.search.Blur()
			m.search.SetValue("")
			m.table.Focus()
			cmd := m.reload()

			return m, cmd
		}
	}

	before := m.search.Value()

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	if m.search.Value() != before {
		load := m.reload()
		return m, tea.Batch(cmd, load)
	}

	return m, cmd
}

func (m HistoryModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]
	m.edit = &editFields{amount: tx.Amount.StringFixed(2), note: tx.Note}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.edit.amount).
				Validate(validateAmount),

			huh.NewInput().
				Key("note").
				Title("Note").
				CharLimit(500).
				Value(&m.edit.note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = historyStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}

	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}

	return nil
}

func (m HistoryModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = historyStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
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

func (m HistoryModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err))
	}

	typeLabel := "All"
	if t := typeFilters[m.typeIdx]; t != nil {
		typeLabel = string(*t)
	}

	orderLabel := "Newest first"
	if m.order == transaction.SortAsc {
		orderLabel = "Oldest first"
	}

	header := fmt.Sprintf(
		"[t] Type: %s | [d] Date: %s | [o] %s | %d transactions",
		activeStyle(typeLabel),
		activeStyle(dateFilters[m.dateIdx].String()),
		activeStyle(orderLabel),
		len(m.txs),
	)

	var totals string
	if len(m.txs) > 0 {
		totals = faintStyle.Render(m.totals())
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.loading && len(m.txs) == 0 {
		tableView = "Loading transactions..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.search.View(),
		"",
		tableView,
		totals,
	)

	if m.state == historyStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m HistoryModel) totals() string {
	var income, expenses decimal.Decimal

	for _, tx := range m.txs {
		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Amount)
		case transaction.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}

	return fmt.Sprintf("Income %s | Expenses %s | Net %s",
		format.Currency(income), format.Currency(expenses), format.Currency(income.Sub(expenses)))
}

// Spec is the query the current filters describe.
func (m HistoryModel) Spec(now time.Time) transaction.FilterSpec {
	spec := transaction.FilterSpec{
		SearchQuery: m.search.Value(),
		Type:        typeFilters[m.typeIdx],
	}

	if start, end, ok := dateFilters[m.dateIdx].Range(now.In(m.svc.Query.Location())); ok {
		spec.StartDate, spec.EndDate = &start, &end
	}

	return spec
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			format.Date(tx.Date.In(m.svc.Query.Location())),
			string(tx.Type),
			format.Currency(tx.Amount),
			tx.CategoryName,
			tx.MerchantName,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadHistoryMsg struct {
	seq int
	txs []*transaction.Transaction
	err error
}

// reload bumps the sequence so in-flight loads are ignored.
func (m *HistoryModel) reload() tea.Cmd {
	m.seq++
	m.loading = true

	return m.loadCmd()
}

func (m HistoryModel) loadCmd() tea.Cmd {
	seq, spec, order, q := m.seq, m.Spec(time.Now()), m.order, m.svc.Query

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := q.Transactions(ctx, spec, order)

		return loadHistoryMsg{seq: seq, txs: txs, err: err}
	}
}

type historySaveMsg struct {
	status string
	err    error
}

func (m HistoryModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	tx := *m.txs[idx]
	amount := strings.TrimSpace(m.edit.amount)
	note := m.edit.note
	txSvc := m.svc.Transactions

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := decimal.NewFromString(amount)
		if err != nil {
			return historySaveMsg{err: err}
		}

		tx.Amount = d
		tx.Note = note

		if err := txSvc.Update(ctx, &tx); err != nil {
			return historySaveMsg{err: err}
		}

		return historySaveMsg{status: "Saved."}
	}
}

func (m HistoryModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	id := m.txs[idx].ID
	txSvc := m.svc.Transactions

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := txSvc.Delete(ctx, id); err != nil {
			return historySaveMsg{err: err}
		}

		return historySaveMsg{status: "Deleted."}
	}
}
