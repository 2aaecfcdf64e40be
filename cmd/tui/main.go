package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/kinship/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kinship/internal/bootstrap"
	"github.com/MrJamesThe3rd/kinship/internal/config"
	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/export"
	"github.com/MrJamesThe3rd/kinship/internal/importer"
)

type model struct {
	appName         string
	defaultCurrency donation.Currency

	ledger        *donation.Service
	importService *importer.Service
	exportService *export.Service

	// current is nil while the menu is shown.
	current view.View
	width   int
	height  int
}

func newModel(cfg *config.Config, svc *donation.Service) model {
	return model{
		appName:         cfg.App.Name,
		defaultCurrency: cfg.App.DefaultCurrency,
		ledger:          svc,
		importService:   importer.NewService(svc, cfg.App.DefaultCurrency),
		exportService:   export.NewService(svc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(v view.View) (tea.Model, tea.Cmd) {
	m.current = v

	cmds := []tea.Cmd{v.Init()}
	if m.width > 0 {
		width, height := m.width, m.height
		cmds = append(cmds, func() tea.Msg { return tea.WindowSizeMsg{Width: width, Height: height} })
	}

	return m, tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == nil {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(view.NewCampaignsModel(m.ledger))
			case "2":
				return m.open(view.NewDonateModel(m.ledger, m.defaultCurrency, nil))
			case "3":
				return m.open(view.NewDonationsModel(m.ledger))
			case "4":
				return m.open(view.NewImportModel(m.importService))
			case "5":
				return m.open(view.NewExportModel(m.exportService))
			}
		}

	case view.BackMsg:
		m.current = nil
		return m, nil

	case view.DonateToMsg:
		id := msg.Campaign.ID
		return m.open(view.NewDonateModel(m.ledger, m.defaultCurrency, &id))
	}

	if m.current == nil {
		return m, nil
	}

	next, cmd := m.current.Update(msg)
	if v, ok := next.(view.View); ok {
		m.current = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.current != nil {
		help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.current.ShortHelp())
		title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.current.Title())

		return lipgloss.JoinVertical(lipgloss.Left, title, m.current.View(), help)
	}

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("%s Contribution Ledger\n\n", m.appName) +
			"1. Campaigns\n" +
			"2. Donate\n" +
			"3. Donations & Stats\n" +
			"4. Import Donations\n" +
			"5. Export Donations\n\n" +
			"q. Quit",
	)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ledger, err := bootstrap.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	p := tea.NewProgram(newModel(cfg, ledger.Service), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
