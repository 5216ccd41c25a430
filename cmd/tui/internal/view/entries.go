package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
)

// dateFilters are the cyclable listing windows. Zero duration means no
// filter.
var dateFilters = []struct {
	label string
	days  int
}{
	{"All", 0},
	{"Last 30 days", 30},
	{"Last 90 days", 90},
	{"Last 365 days", 365},
}

type EntriesModel struct {
	CommonModel
	userID        uuid.UUID
	ledgerService *ledger.Service

	table         table.Model
	entries       []*ledger.Entry
	dateFilterIdx int

	loading bool
	err     error
}

func NewEntriesModel(userID uuid.UUID, ledgerSvc *ledger.Service) EntriesModel {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Dir", Width: 4},
		{Title: "Type", Width: 12},
		{Title: "Amount", Width: 10},
		{Title: "Description", Width: 42},
		{Title: "Merchant", Width: 24},
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

	return EntriesModel{
		userID:        userID,
		ledgerService: ledgerSvc,
		table:         t,
		loading:       true,
	}
}

func (m EntriesModel) Title() string { return "Browse Entries" }

func (m EntriesModel) ShortHelp() string {
	return "Esc: back | d: date filter | r: refresh"
}

func (m EntriesModel) Init() tea.Cmd {
	return m.loadEntriesCmd()
}

func (m EntriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntriesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entries = msg.entries
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadEntriesCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilters)
			m.loading = true

			return m, m.loadEntriesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *EntriesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			FormatDate(e.PostedDate),
			string(e.Direction),
			string(e.Type),
			FormatAmount(e.AmountCents),
			e.DescriptionRaw,
			e.MerchantNormalized,
		})
	}

	m.table.SetRows(rows)
}

type loadEntriesMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m EntriesModel) loadEntriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var filter ledger.ListFilter
		if days := dateFilters[m.dateFilterIdx].days; days > 0 {
			from := time.Now().AddDate(0, 0, -days)
			filter.From = &from
		}

		entries, err := m.ledgerService.List(ctx, m.userID, filter)

		return loadEntriesMsg{entries: entries, err: err}
	}
}

func (m EntriesModel) View() string {
	pad := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return pad.Render("Loading entries...")
	}

	if m.err != nil {
		return pad.Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	header := fmt.Sprintf("Entries (%d)  |  Date: %s", len(m.entries), dateFilters[m.dateFilterIdx].label)

	return pad.Render(header + "\n\n" + m.table.View())
}
