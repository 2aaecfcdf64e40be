package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

type DonationsModel struct {
	svc *donation.Service

	table     table.Model
	donations []*donation.Donation
	campaigns map[string]string
	stats     donation.Stats

	loading bool
	err     error
}

func NewDonationsModel(svc *donation.Service) DonationsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Donor", Width: 18},
		{Title: "Email", Width: 24},
		{Title: "Amount", Width: 12},
		{Title: "Type", Width: 9},
		{Title: "Campaign", Width: 18},
		{Title: "Message", Width: 30},
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

	return DonationsModel{
		svc:     svc,
		table:   t,
		loading: true,
	}
}

func (m DonationsModel) Title() string { return "Donations" }

func (m DonationsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DonationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DonationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDonationsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.donations = msg.donations
		m.campaigns = msg.campaigns
		m.stats = msg.stats
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DonationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading donations...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Donations: %s | Total: %s | Average: %s | Donors: %s",
		activeStyle(fmt.Sprint(m.stats.Count)),
		activeStyle(money.Plain(m.stats.Total)),
		activeStyle(money.Plain(m.stats.Average)),
		activeStyle(fmt.Sprint(m.stats.DistinctDonors)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

func (m *DonationsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.donations))

	for _, d := range m.donations {
		campaign := "General fund"
		if d.CampaignID != nil {
			campaign = m.campaigns[d.CampaignID.String()]
		}

		rows = append(rows, table.Row{
			FormatDate(d.CreatedAt),
			d.DonorName,
			d.DonorEmail,
			FormatAmount(d.Amount, d.Currency),
			string(d.Type),
			campaign,
			d.Message,
		})
	}

	m.table.SetRows(rows)
}

type loadDonationsMsg struct {
	donations []*donation.Donation
	campaigns map[string]string
	stats     donation.Stats
	err       error
}

func (m DonationsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ds, err := m.svc.ListDonations(ctx, donation.ListFilter{})
		if err != nil {
			return loadDonationsMsg{err: err}
		}

		cs, err := m.svc.ListCampaigns(ctx, donation.CampaignFilter{})
		if err != nil {
			return loadDonationsMsg{err: err}
		}

		names := make(map[string]string, len(cs))
		for _, c := range cs {
			names[c.ID.String()] = c.MemberName
		}

		stats, err := m.svc.ComputeStats(ctx)
		if err != nil {
			return loadDonationsMsg{err: err}
		}

		return loadDonationsMsg{donations: ds, campaigns: names, stats: stats}
	}
}
