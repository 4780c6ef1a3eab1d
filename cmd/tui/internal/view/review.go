package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
)

// ReviewModel walks through merchants without a label, usually the ones an
// import created, to label them and teach alias patterns for bank exports.
type ReviewModel struct {
	CommonModel
	svc Services

	queue   []*merchant.Merchant
	current *merchant.Merchant

	labelInput textinput.Model
	aliasInput textinput.Model
	focusIndex int

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(svc Services) ReviewModel {
	label := textinput.New()
	label.Placeholder = "Supermarket, Utilities, ..."
	label.Prompt = "Label: "
	label.CharLimit = 100
	label.Width = 40

	alias := textinput.New()
	alias.Placeholder = "text found in bank descriptions"
	alias.Prompt = "Alias: "
	alias.Width = 40

	return ReviewModel{
		svc:        svc,
		labelInput: label,
		aliasInput: alias,
		loading:    true,
	}
}

func (m ReviewModel) Title() string { return "Review Merchants" }

func (m ReviewModel) ShortHelp() string {
	return "Tab: switch field | Enter: save & next | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab, tea.KeyShiftTab:
			return m.switchFocus()
		case tea.KeyEnter:
			if m.current != nil {
				return m, m.saveCmd(m.labelInput.Value(), m.aliasInput.Value())
			}
		}

	case loadReviewMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading merchants: %v", msg.err)
			return m, nil
		}

		m.queue = msg.merchants
		m.totalCount = len(m.queue)
		cmd := m.next()

		return m, cmd

	case reviewSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		cmd := m.next()

		return m, cmd
	}

	if m.current == nil {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.labelInput, cmd = m.labelInput.Update(msg)
	} else {
		m.aliasInput, cmd = m.aliasInput.Update(msg)
	}

	return m, cmd
}

func (m ReviewModel) switchFocus() (tea.Model, tea.Cmd) {
	m.focusIndex = (m.focusIndex + 1) % 2

	if m.focusIndex == 0 {
		m.aliasInput.Blur()
		return m, m.labelInput.Focus()
	}

	m.labelInput.Blur()

	return m, m.aliasInput.Focus()
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading merchants...")
	}

	if m.current == nil {
		if m.totalCount == 0 && m.status == "" {
			return style.Render("Every merchant is labelled.\n\n(Esc to back)")
		}

		return style.Render(m.status + "\n\n(Esc to back)")
	}

	info := boxStyle.Render(fmt.Sprintf("Merchant: %s\nSince: %s",
		m.current.Name, m.current.CreatedAt.Format("2006-01-02")))

	return style.Render(fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n\n%s",
		headerStyle.Render(m.status),
		info,
		m.labelInput.View(),
		m.aliasInput.View(),
		faintStyle.Render("Leave both empty to skip. The alias links future imports to this merchant."),
	))
}

func (m *ReviewModel) next() tea.Cmd {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "All done!"
		m.labelInput.Blur()
		m.aliasInput.Blur()

		return nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	m.labelInput.SetValue("")
	m.aliasInput.SetValue("")
	m.aliasInput.Blur()
	m.focusIndex = 0

	return m.labelInput.Focus()
}

// Messages

type loadReviewMsg struct {
	merchants []*merchant.Merchant
	err       error
}

func (m ReviewModel) loadCmd() tea.Cmd {
	merchants := m.svc.Merchants

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		all, err := merchants.List(ctx)
		if err != nil {
			return loadReviewMsg{err: err}
		}

		var unlabelled []*merchant.Merchant

		for _, mc := range all {
			if mc.Label == "" {
				unlabelled = append(unlabelled, mc)
			}
		}

		return loadReviewMsg{merchants: unlabelled}
	}
}

type reviewSavedMsg struct {
	err error
}

func (m ReviewModel) saveCmd(label, alias string) tea.Cmd {
	current := *m.current
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if label = strings.TrimSpace(label); label != "" {
			current.Label = label
			if err := svc.Merchants.Update(ctx, &current); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		if alias = strings.TrimSpace(alias); alias != "" {
			if err := svc.Matching.Learn(ctx, alias, current.ID); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		return reviewSavedMsg{}
	}
}
