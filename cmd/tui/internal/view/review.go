package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/reconcile"
	"github.com/contaflow/contaflow/internal/transfer"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateDecide
	reviewStateMatching
)

// ReviewModel is the transfer reconciliation inbox: pending suggestions in a
// table, confirm or reject one at a time, re-run the matcher on demand.
type ReviewModel struct {
	CommonModel
	userID           uuid.UUID
	matcherService   *transfer.Service
	reconcileService *reconcile.Service

	state   reviewState
	table   table.Model
	inbox   *reconcile.Inbox
	form    *huh.Form
	spinner spinner.Model

	// Form binding
	decision string

	loading bool
	status  string
	err     error
}

func NewReviewModel(userID uuid.UUID, matcherSvc *transfer.Service, reconcileSvc *reconcile.Service) ReviewModel {
	columns := []table.Column{
		{Title: "Out Date", Width: 10},
		{Title: "In Date", Width: 10},
		{Title: "Amount", Width: 10},
		{Title: "Score", Width: 6},
		{Title: "Out Description", Width: 30},
		{Title: "In Description", Width: 30},
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

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ReviewModel{
		userID:           userID,
		matcherService:   matcherSvc,
		reconcileService: reconcileSvc,
		table:            t,
		spinner:          sp,
		loading:          true,
	}
}

func (m ReviewModel) Title() string { return "Review Transfers" }

func (m ReviewModel) ShortHelp() string {
	switch m.state {
	case reviewStateDecide:
		return "Navigate form | Esc: cancel"
	case reviewStateMatching:
		return "Matching..."
	}

	return "Esc: back | Enter: decide | m: run matcher | r: refresh"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadInboxCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInboxMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.inbox = msg.inbox
		m.refreshTable()

		return m, nil

	case matcherDoneMsg:
		m.state = reviewStateBrowse
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.status = fmt.Sprintf("Matcher proposed %d pair(s)", msg.proposed)
		m.loading = true

		return m, m.loadInboxCmd()

	case decideDoneMsg:
		m.state = reviewStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.outcome
		m.loading = true

		return m, m.loadInboxCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case reviewStateBrowse:
		return m.updateBrowse(msg)
	case reviewStateDecide:
		return m.updateDecide(msg)
	case reviewStateMatching:
		if tick, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(tick)

			return m, cmd
		}
	}

	return m, nil
}

func (m ReviewModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadInboxCmd()
		case "m":
			m.state = reviewStateMatching
			return m, tea.Batch(m.spinner.Tick, m.runMatcherCmd())
		case "enter":
			if s := m.selectedSuggestion(); s != nil {
				m.state = reviewStateDecide
				m.decision = ""
				m.form = m.buildDecisionForm(s)
				m.table.Blur()

				return m, m.form.Init()
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReviewModel) updateDecide(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.state = reviewStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		decision := m.form.GetString("decision")

		s := m.selectedSuggestion()
		if s == nil || decision == "skip" {
			m.state = reviewStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.decideCmd(s, decision)
	}

	return m, cmd
}

func (m ReviewModel) buildDecisionForm(s *reconcile.InboxSuggestion) *huh.Form {
	title := fmt.Sprintf(
		"%s  %s -> %s  (score %.2f)",
		FormatAmount(s.OutEntry.AmountCents),
		FormatDate(s.OutEntry.PostedDate),
		FormatDate(s.InEntry.PostedDate),
		s.Score,
	)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("decision").
				Title(title).
				Options(
					huh.NewOption("Confirm transfer", "confirm"),
					huh.NewOption("Reject (never suggest again)", "reject"),
					huh.NewOption("Skip", "skip"),
				).
				Value(&m.decision),
		),
	)
}

func (m ReviewModel) selectedSuggestion() *reconcile.InboxSuggestion {
	if m.inbox == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.inbox.Suggestions) {
		return nil
	}

	return m.inbox.Suggestions[idx]
}

func (m *ReviewModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.inbox.Suggestions))
	for _, s := range m.inbox.Suggestions {
		rows = append(rows, table.Row{
			FormatDate(s.OutEntry.PostedDate),
			FormatDate(s.InEntry.PostedDate),
			FormatAmount(s.OutEntry.AmountCents),
			fmt.Sprintf("%.2f", s.Score),
			s.OutEntry.DescriptionRaw,
			s.InEntry.DescriptionRaw,
		})
	}

	m.table.SetRows(rows)
}

type loadInboxMsg struct {
	inbox *reconcile.Inbox
	err   error
}

func (m ReviewModel) loadInboxCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inbox, err := m.reconcileService.GetInbox(ctx, m.userID)

		return loadInboxMsg{inbox: inbox, err: err}
	}
}

type matcherDoneMsg struct {
	proposed int
	err      error
}

func (m ReviewModel) runMatcherCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*dbTimeout)
		defer cancel()

		suggestions, err := m.matcherService.Run(ctx, m.userID, nil, nil)

		return matcherDoneMsg{proposed: len(suggestions), err: err}
	}
}

type decideDoneMsg struct {
	outcome string
	err     error
}

func (m ReviewModel) decideCmd(s *reconcile.InboxSuggestion, decision string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		switch decision {
		case "confirm":
			err := m.reconcileService.ConfirmTransfer(ctx, m.userID, s.OutEntryID, s.InEntryID)
			return decideDoneMsg{outcome: "Transfer confirmed", err: err}
		case "reject":
			err := m.reconcileService.RejectSuggestion(ctx, m.userID, reconcile.RejectParams{SuggestionID: &s.ID})
			return decideDoneMsg{outcome: "Suggestion rejected", err: err}
		}

		return decideDoneMsg{}
	}
}

func (m ReviewModel) View() string {
	pad := lipgloss.NewStyle().Padding(2)

	if m.state == reviewStateMatching {
		return pad.Render(m.spinner.View() + " Running matcher...")
	}

	if m.state == reviewStateDecide && m.form != nil {
		return pad.Render(m.form.View())
	}

	if m.loading {
		return pad.Render("Loading inbox...")
	}

	if m.err != nil {
		return pad.Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	header := "Pending transfer suggestions"
	if m.inbox != nil && len(m.inbox.UnmatchedPayments) > 0 {
		header += fmt.Sprintf("  |  %d credit-card outflow(s) await payment linking", len(m.inbox.UnmatchedPayments))
	}

	content := header + "\n\n" + m.table.View()
	if m.status != "" {
		content += "\n\n" + m.status
	}

	if m.inbox != nil && len(m.inbox.Suggestions) == 0 {
		content = header + "\n\nNothing to review. Press m to run the matcher."
		if m.status != "" {
			content += "\n\n" + m.status
		}
	}

	return pad.Render(content)
}
