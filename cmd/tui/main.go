package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/contaflow/contaflow/cmd/tui/internal/view"
	"github.com/contaflow/contaflow/internal/category"
	categoryStore "github.com/contaflow/contaflow/internal/category/store"
	"github.com/contaflow/contaflow/internal/config"
	"github.com/contaflow/contaflow/internal/database"
	"github.com/contaflow/contaflow/internal/importer"
	"github.com/contaflow/contaflow/internal/ledger"
	ledgerStore "github.com/contaflow/contaflow/internal/ledger/store"
	"github.com/contaflow/contaflow/internal/reconcile"
	reconcileStore "github.com/contaflow/contaflow/internal/reconcile/store"
	"github.com/contaflow/contaflow/internal/textnorm"
	"github.com/contaflow/contaflow/internal/transfer"
	transferStore "github.com/contaflow/contaflow/internal/transfer/store"
)

type model struct {
	userID           uuid.UUID
	ledgerService    *ledger.Service
	importService    *importer.Service
	matcherService   *transfer.Service
	reconcileService *reconcile.Service

	currentView View

	importView  view.ImportModel
	reviewView  view.ReviewModel
	entriesView view.EntriesModel
}

type View int

const (
	ViewMenu    View = 0
	ViewImport  View = 1
	ViewReview  View = 2
	ViewEntries View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(os.Getenv("CONTAFLOW_USER_ID"))
	if err != nil {
		slog.Error("CONTAFLOW_USER_ID must be a valid uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	norm := textnorm.Default()

	categorySvc := category.NewService(categoryStore.New(db), category.NewEngine())
	ledgerSvc := ledger.NewService(ledgerStore.New(db), categorySvc, norm, cfg.Import.MaxCommitRows)
	importSvc := importer.NewService(norm)
	matcherSvc := transfer.NewService(transferStore.New(db), transfer.Policy{
		WindowDays: cfg.Matcher.WindowDays,
		MinScore:   cfg.Matcher.MinScore,
		DescBonus:  cfg.Matcher.DescBonus,
	})
	reconcileSvc := reconcile.NewService(reconcileStore.New(db))

	return model{
		userID:           userID,
		ledgerService:    ledgerSvc,
		importService:    importSvc,
		matcherService:   matcherSvc,
		reconcileService: reconcileSvc,
		currentView:      ViewMenu,
		importView:       view.NewImportModel(userID, ledgerSvc, importSvc),
		reviewView:       view.NewReviewModel(userID, matcherSvc, reconcileSvc),
		entriesView:      view.NewEntriesModel(userID, ledgerSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.userID, m.ledgerService, m.importService)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.userID, m.matcherService, m.reconcileService)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewEntries
				m.entriesView = view.NewEntriesModel(m.userID, m.ledgerService)

				return m, m.entriesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewEntries:
		var newModel tea.Model
		newModel, cmd = m.entriesView.Update(msg)
		m.entriesView = newModel.(view.EntriesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Contaflow TUI\n\n" +
				"1. Import File\n" +
				"2. Review Transfers\n" +
				"3. Browse Entries\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewEntries:
		return m.entriesView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
