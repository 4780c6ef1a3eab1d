package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	svc Services

	state          importState
	filePicker     filepicker.Model
	formats        []importer.Format
	formatCursor   int
	selectedFormat importer.Format
	categoryInput  textinput.Model

	result *importer.Result
	status string
	err    error
}

func NewImportModel(svc Services) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	ci := textinput.New()
	ci.Prompt = "Default category: "
	ci.Placeholder = "used for rows without one"
	ci.CharLimit = 100
	ci.Width = 30
	ci.Focus()

	return ImportModel{
		svc:           svc,
		filePicker:    fp,
		formats:       []importer.Format{importer.FormatCSV, importer.FormatCGD},
		categoryInput: ci,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateFormatSelect {
		return "↑/↓: format | type: default category | Enter: choose file | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateFormatSelect {
			return m.updateFormatSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", len(msg.result.Transactions))

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s...", filepath.Base(path))

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.state = importStateFormatSelect
		m.err = nil
		m.result = nil
		m.status = ""

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}

		return m, nil
	case tea.KeyDown:
		if m.formatCursor < len(m.formats)-1 {
			m.formatCursor++
		}

		return m, nil
	case tea.KeyEnter:
		m.selectedFormat = m.formats[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	switch m.state {
	case importStateFormatSelect:
		return style.Render(m.viewFormatSelect())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedFormat, m.filePicker.View()),
		)
	case importStateImporting:
		return style.Render(m.status)
	case importStateResult:
		return style.Render(m.viewResult())
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	var sb strings.Builder

	sb.WriteString("Select format:\n\n")

	for i, f := range m.formats {
		cursor := "  "
		if i == m.formatCursor {
			cursor = activeStyle("> ")
		}

		fmt.Fprintf(&sb, "%s%s\n", cursor, formatLabel(f))
	}

	sb.WriteString("\n" + m.categoryInput.View())

	return sb.String()
}

func formatLabel(f importer.Format) string {
	switch f {
	case importer.FormatCGD:
		return "CGD bank export"
	default:
		return "CoinQuest CSV"
	}
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		return errorStyle.Render(m.status) + "\n\nNothing was imported.\n\n(Esc to go back)"
	}

	r := m.result

	var sb strings.Builder

	sb.WriteString(successStyle.Render(m.status) + "\n\n")
	fmt.Fprintf(&sb, "Merchants created: %d\n", r.MerchantsCreated)
	fmt.Fprintf(&sb, "Detected charset:  %s\n", r.Charset)

	if r.MerchantsCreated > 0 {
		sb.WriteString(faintStyle.Render("\nLabel new merchants from Review Merchants.") + "\n")
	}

	for i, tx := range r.Transactions {
		if i == 10 {
			fmt.Fprintf(&sb, "... and %d more\n", len(r.Transactions)-i)
			break
		}

		fmt.Fprintf(&sb, "%s  %10s  %s\n", format.Date(tx.Date), format.Currency(tx.Amount), tx.MerchantName)
	}

	sb.WriteString("\n(Esc to go back)")

	return sb.String()
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	imp := m.svc.Import
	f := m.selectedFormat
	opts := importer.Options{Category: strings.TrimSpace(m.categoryInput.Value())}

	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := imp.Import(ctx, f, file, opts)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}
