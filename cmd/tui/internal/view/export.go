package view

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/coinquest/internal/export"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

const exportTimeout = 2 * time.Minute

type exportStep int

const (
	exportStepRange exportStep = iota
	exportStepOptions
	exportStepRunning
	exportStepDone
)

type exportOptions struct {
	dir     string
	order   transaction.SortOrder
	summary bool
}

// ExportModel writes a CSV of the chosen range that the importer reads back,
// optionally with a text summary of the month the range ends in.
type ExportModel struct {
	CommonModel
	svc Services

	step    exportStep
	picker  TimeframePicker
	form    *huh.Form
	opts    *exportOptions
	spinner spinner.Model

	selection TimeframeSelectedMsg
	outcome   exportResultMsg
}

func NewExportModel(svc Services) ExportModel {
	return ExportModel{
		svc:     svc,
		picker:  NewTimeframePicker(TimeframeThisMonth, svc.Query.Location()),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(headerStyle)),
		opts:    &exportOptions{dir: "./exports", order: transaction.SortAsc, summary: true},
	}
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportStepRunning:
		return "Exporting..."
	case exportStepDone:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.form = m.optionsForm()
		m.step = exportStepOptions

		return m, m.form.Init()

	case exportResultMsg:
		m.outcome = msg
		m.step = exportStepDone

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.back()
		}
	}

	var cmd tea.Cmd

	switch m.step {
	case exportStepRange:
		m.picker, cmd = m.picker.Update(msg)
	case exportStepOptions:
		return m.updateOptions(msg)
	case exportStepRunning:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	return m, cmd
}

func (m ExportModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case exportStepRange:
		if !m.picker.IsSelecting() {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(tea.KeyMsg{Type: tea.KeyEsc})

			return m, cmd
		}
	case exportStepOptions:
		m.step = exportStepRange
		m.picker.Reset()

		return m, nil
	case exportStepRunning:
		return m, nil
	}

	return m, Back
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.step = exportStepRunning

	return m, tea.Batch(m.spinner.Tick, m.runCmd())
}

func (m ExportModel) optionsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.opts.dir),

			huh.NewSelect[transaction.SortOrder]().
				Title("Order").
				Options(
					huh.NewOption("Oldest first", transaction.SortAsc),
					huh.NewOption("Newest first", transaction.SortDesc),
				).
				Value(&m.opts.order),

			huh.NewConfirm().
				Title("Include monthly summary?").
				Value(&m.opts.summary),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case exportStepRange:
		return style.Render(m.picker.View())
	case exportStepOptions:
		return style.Render(headerStyle.Render(m.selection.Frame.String()) + "\n\n" + m.form.View())
	case exportStepRunning:
		return style.Render(m.spinner.View() + " Exporting transactions...")
	}

	return style.Render(m.viewOutcome())
}

func (m ExportModel) viewOutcome() string {
	r := m.outcome
	if r.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", r.err)) + "\n\n(Esc to go back)"
	}

	lines := []string{
		successStyle.Bold(true).Render("Export complete"),
		"",
		fmt.Sprintf("Wrote %d transactions to %s", r.count, r.file),
	}

	if r.summary != "" {
		lines = append(lines, "", boxStyle.Render(r.summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

type exportResultMsg struct {
	file    string
	count   int
	summary string
	err     error
}

func (m ExportModel) runCmd() tea.Cmd {
	exp := m.svc.Export
	opts := *m.opts
	spec := transaction.FilterSpec{StartDate: m.selection.Start, EndDate: m.selection.End}
	loc := m.svc.Query.Location()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(opts.dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating %s: %w", opts.dir, err)}
		}

		now := time.Now().In(loc)
		path := filepath.Join(opts.dir, export.Filename(now))

		count, err := writeCSV(ctx, exp, path, spec, opts.order)
		if err != nil {
			return exportResultMsg{err: err}
		}

		res := exportResultMsg{file: path, count: count}
		if !opts.summary {
			return res
		}

		month := now
		if spec.EndDate != nil {
			month = spec.EndDate.In(loc)
		}

		var buf bytes.Buffer
		if err := exp.Summary(ctx, &buf, int(month.Month()), month.Year()); err != nil {
			return exportResultMsg{err: err}
		}

		res.summary = buf.String()

		return res
	}
}

func writeCSV(ctx context.Context, exp *export.Service, path string, spec transaction.FilterSpec, order transaction.SortOrder) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	count, err := exp.CSV(ctx, f, spec, order)
	if err != nil {
		f.Close()
		return 0, err
	}

	return count, f.Close()
}
