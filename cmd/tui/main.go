package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetwise/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetwise/internal/apiclient"
	"github.com/MrJamesThe3rd/budgetwise/internal/config"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine/memory"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
	"github.com/MrJamesThe3rd/budgetwise/internal/logging"
)

const refreshInterval = time.Minute

type model struct {
	engine *engine.Engine
	remote bool

	currentView View

	billsView    view.BillsModel
	paymentsView view.PaymentsModel
	importView   view.ImportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewBills    View = 1
	ViewPayments View = 2
	ViewImport   View = 3
)

type tickMsg time.Time

func initialModel() (model, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return model{}, fmt.Errorf("load config: %w", err)
	}

	if f, err := os.OpenFile("budgetwise-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
		logging.SetupWriter(f, cfg.App.LogLevel)
	}

	var backend engine.Backend = memory.Demo()
	if cfg.Remote() {
		backend = apiclient.New(cfg.Client.BaseURL, cfg.Client.Token, apiclient.WithTimeout(cfg.Client.Timeout))
	}

	e := engine.New(backend)

	ctx, cancel := view.OpCtx()
	defer cancel()

	if err := e.Load(ctx); err != nil {
		return model{}, fmt.Errorf("load bills: %w", err)
	}

	slog.Info("tui started", "remote", cfg.Remote(), "bills", len(e.Bills()))

	return model{
		engine:       e,
		remote:       cfg.Remote(),
		currentView:  ViewMenu,
		billsView:    view.NewBillsModel(e),
		paymentsView: view.NewPaymentsModel(e.Snapshot()),
		importView:   view.NewImportModel(e, importer.NewParser()),
	}, nil
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewBills
				return m, m.billsView.Init()
			case "2":
				m.currentView = ViewPayments
				m.paymentsView = view.NewPaymentsModel(m.engine.Snapshot())

				return m, m.paymentsView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.engine, importer.NewParser())

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil

	case tickMsg:
		return m, tea.Batch(tick(), m.refreshCmd())

	case view.SnapshotMsg:
		// Every screen keeps its own copy of the engine state.
		billsModel, _ := m.billsView.Update(msg)
		m.billsView = billsModel.(view.BillsModel)

		paymentsModel, _ := m.paymentsView.Update(msg)
		m.paymentsView = paymentsModel.(view.PaymentsModel)

		return m, nil
	}

	switch m.currentView {
	case ViewBills:
		var newModel tea.Model
		newModel, cmd = m.billsView.Update(msg)
		m.billsView = newModel.(view.BillsModel)
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := m.engine.Refresh(ctx); err != nil {
			slog.Error("periodic refresh failed", "error", err)
		}

		return nil
	}
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		mode := "demo data"
		if m.remote {
			mode = "remote API"
		}

		snap := m.engine.Snapshot()

		return lipgloss.NewStyle().Padding(2).Render(
			"Budgetwise TUI (" + mode + ")\n\n" +
				fmt.Sprintf("%d bills, %s unpaid\n\n", len(snap.Bills), view.FormatAmount(snap.Total())) +
				"1. Bills\n" +
				"2. Payment History\n" +
				"3. Import Bills\n\n" +
				"q. Quit",
		)
	case ViewBills:
		return m.billsView.View()
	case ViewPayments:
		return m.paymentsView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := m.engine.Subscribe(func(snap engine.Snapshot) {
		p.Send(view.SnapshotMsg{Snapshot: snap})
	})

	_, err = p.Run()
	unsubscribe()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
