package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/importer"
	"github.com/contaflow/contaflow/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateForm importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	userID        uuid.UUID
	ledgerService *ledger.Service
	importService *importer.Service

	state      importState
	form       *huh.Form
	filePicker filepicker.Model
	spinner    spinner.Model

	// Form bindings
	formSource  string
	formAccount string
	formIsCC    bool

	summary *ledger.CommitSummary
	err     error
}

func NewImportModel(userID uuid.UUID, ledgerSvc *ledger.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ImportModel{
		userID:        userID,
		ledgerService: ledgerSvc,
		importService: impSvc,
		filePicker:    fp,
		spinner:       s,
		formSource:    string(importer.SourceCSV),
	}
	m.form = m.buildForm()

	return m
}

func (m ImportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("source").
				Title("Source format").
				Options(
					huh.NewOption("CSV", string(importer.SourceCSV)),
					huh.NewOption("OFX", string(importer.SourceOFX)),
					huh.NewOption("PDF statement text", string(importer.SourcePDF)),
				).
				Value(&m.formSource),
			huh.NewInput().
				Key("account_id").
				Title("Account ID").
				Placeholder("uuid of the target account").
				Value(&m.formAccount),
			huh.NewConfirm().
				Key("is_cc").
				Title("Is this a credit card account?").
				Value(&m.formIsCC),
		),
	)
}

func (m ImportModel) Title() string { return "Import File" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateFilePick:
		return "Enter: select file | Esc: back"
	case importStateImporting:
		return "Importing..."
	case importStateResult:
		return "Esc: back to menu"
	}

	return "Navigate form | Esc: back"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateForm:
		return m.updateForm(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	case importStateImporting:
		return m.updateImporting(msg)
	case importStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			return m, Back
		}
	}

	return m, nil
}

func (m ImportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formSource = m.form.GetString("source")
		m.formAccount = m.form.GetString("account_id")
		m.formIsCC = m.form.GetBool("is_cc")

		if _, err := uuid.Parse(m.formAccount); err != nil {
			m.form = m.buildForm()
			m.err = fmt.Errorf("invalid account id: %w", err)

			return m, m.form.Init()
		}

		m.err = nil
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, cmd
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.state = importStateForm
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.state = importStateImporting
		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m ImportModel) updateImporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importDoneMsg:
		m.state = importStateResult
		m.summary = msg.summary
		m.err = msg.err

		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

type importDoneMsg struct {
	summary *ledger.CommitSummary
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		f, err := os.Open(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		defer f.Close()

		rows, err := m.importService.Parse(importer.SourceType(m.formSource), f)
		if err != nil {
			return importDoneMsg{err: err}
		}

		accountID := uuid.MustParse(m.formAccount)

		commitRows := make([]ledger.CommitRow, len(rows))
		for i, row := range rows {
			commitRows[i] = ledger.CommitRow{Row: row}
			if m.formIsCC {
				commitRows[i].CreditCardAccountID = &accountID
			} else {
				commitRows[i].AccountID = &accountID
			}
		}

		summary, err := m.ledgerService.CommitImport(ctx, m.userID, ledger.CommitParams{
			SourceType: m.formSource,
			FileName:   filepath.Base(path),
			Rows:       commitRows,
		})

		return importDoneMsg{summary: summary, err: err}
	}
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(2)

	switch m.state {
	case importStateForm:
		content := m.form.View()
		if m.err != nil {
			content = fmt.Sprintf("Error: %v\n\n%s", m.err, content)
		}

		return pad.Render(content)

	case importStateFilePick:
		return pad.Render("Pick a file to import:\n\n" + m.filePicker.View())

	case importStateImporting:
		return pad.Render(m.spinner.View() + " Importing...")

	case importStateResult:
		if m.err != nil {
			return pad.Render(fmt.Sprintf("Import failed: %v\n\n(Esc to back)", m.err))
		}

		s := m.summary
		content := fmt.Sprintf(
			"Import finished.\n\nReceived:   %d\nImported:   %d\nSkipped:    %d\nDuplicates: %d\nInvalid:    %d\n",
			s.TotalReceived, s.TotalImported, s.TotalSkipped, s.Duplicates, s.InvalidRows,
		)
		if s.DuplicateOfBatch != nil {
			content += fmt.Sprintf("\nThis file was committed before (batch %s).\n", *s.DuplicateOfBatch)
		}

		return pad.Render(content + "\n(Esc to back)")
	}

	return ""
}
