package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

// DonateToMsg asks the root model to open the donate form for a campaign.
type DonateToMsg struct {
	Campaign *donation.Campaign
}

type CampaignsModel struct {
	svc *donation.Service

	table      table.Model
	campaigns  []*donation.Campaign
	activeOnly bool

	loading bool
	err     error
}

func NewCampaignsModel(svc *donation.Service) CampaignsModel {
	columns := []table.Column{
		{Title: "Member", Width: 20},
		{Title: "Reason", Width: 28},
		{Title: "Status", Width: 10},
		{Title: "Raised", Width: 10},
		{Title: "Target", Width: 10},
		{Title: "%", Width: 6},
		{Title: "Deadline", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
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

	return CampaignsModel{
		svc:        svc,
		table:      t,
		activeOnly: true,
		loading:    true,
	}
}

func (m CampaignsModel) Title() string { return "Campaigns" }

func (m CampaignsModel) ShortHelp() string {
	return "Esc: back | Enter: donate | a: toggle active | r: refresh"
}

func (m CampaignsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CampaignsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCampaignsMsg:
		m.loading = false
		m.err = msg.err
		m.campaigns = msg.campaigns
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
			return m, m.loadCmd()
		case "a":
			m.activeOnly = !m.activeOnly
			m.loading = true

			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.campaigns) {
				return m, nil
			}

			c := m.campaigns[idx]

			return m, func() tea.Msg { return DonateToMsg{Campaign: c} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CampaignsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading campaigns...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "All"
	if m.activeOnly {
		filter = "Active"
	}

	header := fmt.Sprintf("Filter: [a] %s | %d campaigns", activeStyle(filter), len(m.campaigns))

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

func (m *CampaignsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.campaigns))

	for _, c := range m.campaigns {
		deadline := "-"
		if c.Deadline != nil {
			deadline = FormatDate(*c.Deadline)
		}

		rows = append(rows, table.Row{
			c.MemberName,
			c.Reason,
			string(c.Status),
			money.Plain(c.CurrentAmount),
			money.Plain(c.TargetAmount),
			c.PercentageComplete().StringFixed(1),
			deadline,
		})
	}

	m.table.SetRows(rows)
}

type loadCampaignsMsg struct {
	campaigns []*donation.Campaign
	err       error
}

func (m CampaignsModel) loadCmd() tea.Cmd {
	activeOnly := m.activeOnly

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			cs  []*donation.Campaign
			err error
		)

		if activeOnly {
			cs, err = m.svc.ListActiveCampaigns(ctx)
		} else {
			cs, err = m.svc.ListCampaigns(ctx, donation.CampaignFilter{})
		}

		return loadCampaignsMsg{campaigns: cs, err: err}
	}
}
