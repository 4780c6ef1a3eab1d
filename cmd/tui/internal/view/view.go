package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/export"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Services are shared by every screen.
type Services struct {
	Categories   *category.Service
	Merchants    *merchant.Service
	Transactions *transaction.Service
	Budgets      *budget.Service
	Matching     *matching.Service
	Query        *query.Service
	Import       *importer.Service
	Export       *export.Service
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
