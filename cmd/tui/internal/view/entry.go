package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type entryState int

const (
	entryStateLoading entryState = iota
	entryStateForm
	entryStateSaving
	entryStateResult
)

type entryFields struct {
	txType     transaction.Type
	amount     string
	date       string
	categoryID uuid.UUID
	merchant   string
	note       string
}

// EntryModel records a new transaction through a form.
type EntryModel struct {
	CommonModel
	svc Services

	state      entryState
	form       *huh.Form
	fields     *entryFields
	categories []*category.Category
	merchants  []string

	saved *transaction.Transaction
	err   error
}

func NewEntryModel(svc Services) EntryModel {
	return EntryModel{svc: svc}
}

func (m EntryModel) Title() string { return "New Transaction" }

func (m EntryModel) ShortHelp() string {
	if m.state == entryStateResult {
		return "Enter: add another | Esc: back"
	}

	return "Enter/Tab: next field | Esc: back"
}

func (m EntryModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entryOptionsMsg:
		if msg.err != nil {
			m.state = entryStateResult
			m.err = msg.err

			return m, nil
		}

		m.categories = msg.categories
		m.merchants = msg.merchants

		return m.startForm()

	case entrySavedMsg:
		m.state = entryStateResult
		m.saved, m.err = msg.tx, msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == entryStateResult && msg.Type == tea.KeyEnter {
			m.state = entryStateLoading
			m.saved, m.err = nil, nil

			return m, m.loadOptionsCmd()
		}
	}

	if m.state != entryStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = entryStateSaving

	return m, m.saveCmd()
}

func (m EntryModel) startForm() (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		m.state = entryStateResult
		m.err = fmt.Errorf("create a category first")

		return m, nil
	}

	loc := m.svc.Query.Location()

	m.fields = &entryFields{
		txType: transaction.TypeExpense,
		date:   time.Now().In(loc).Format(time.DateOnly),
	}

	fields := m.fields
	categories := m.categories

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&fields.txType),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&fields.amount).
				Validate(validateAmount),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&fields.date).
				Validate(func(s string) error {
					if _, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc); err != nil {
						return fmt.Errorf("date must be YYYY-MM-DD")
					}

					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Category").
				OptionsFunc(func() []huh.Option[uuid.UUID] {
					return categoryOptions(categories, fields.txType)
				}, &fields.txType).
				Value(&fields.categoryID),

			huh.NewInput().
				Title("Merchant").
				Suggestions(m.merchants).
				Value(&fields.merchant).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("merchant cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Title("Note (optional)").
				CharLimit(500).
				Value(&fields.note),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = entryStateForm

	return m, m.form.Init()
}

// categoryOptions lists categories of type t first, then the rest.
func categoryOptions(categories []*category.Category, t transaction.Type) []huh.Option[uuid.UUID] {
	opts := make([]huh.Option[uuid.UUID], 0, len(categories))

	for _, matching := range []bool{true, false} {
		for _, c := range categories {
			if (c.Type == t) == matching {
				opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", c.Name, c.Type), c.ID))
			}
		}
	}

	return opts
}

func (m EntryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case entryStateLoading:
		return style.Render("Loading categories...")
	case entryStateForm:
		return style.Render(headerStyle.Render("New Transaction") + "\n\n" + m.form.View())
	case entryStateSaving:
		return style.Render("Saving...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Enter to retry, Esc to go back)")
	}

	tx := m.saved

	return style.Render(
		successStyle.Render("Saved!") + "\n\n" +
			boxStyle.Render(fmt.Sprintf("%s  %s  %s\n%s @ %s",
				format.Date(tx.Date), tx.Type, format.Currency(tx.Amount),
				tx.CategoryName, tx.MerchantName)) +
			"\n\n(Enter to add another, Esc to go back)",
	)
}

// Messages

type entryOptionsMsg struct {
	categories []*category.Category
	merchants  []string
	err        error
}

func (m EntryModel) loadOptionsCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		categories, err := svc.Categories.List(ctx, category.ListFilter{})
		if err != nil {
			return entryOptionsMsg{err: err}
		}

		merchants, err := svc.Merchants.List(ctx)
		if err != nil {
			return entryOptionsMsg{err: err}
		}

		names := make([]string, len(merchants))
		for i, mc := range merchants {
			names[i] = mc.Name
		}

		return entryOptionsMsg{categories: categories, merchants: names}
	}
}

type entrySavedMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m EntryModel) saveCmd() tea.Cmd {
	f := *m.fields
	svc := m.svc
	loc := svc.Query.Location()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(f.date), loc)
		if err != nil {
			return entrySavedMsg{err: err}
		}

		merchantID, _, err := svc.Import.ResolveMerchant(ctx, strings.TrimSpace(f.merchant))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		tx, err := svc.Transactions.Create(ctx, transaction.CreateParams{
			Date:       date,
			Type:       f.txType,
			Amount:     amount,
			CategoryID: f.categoryID,
			MerchantID: merchantID,
			Note:       strings.TrimSpace(f.note),
		})

		return entrySavedMsg{tx: tx, err: err}
	}
}
