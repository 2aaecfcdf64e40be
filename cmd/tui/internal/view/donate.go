package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

type donateState int

const (
	donateStateLoading donateState = iota
	donateStateForm
	donateStateSaving
	donateStateResult
)

const generalFund = "general"

// donateFields is shared by pointer so the form writes survive model copies.
type donateFields struct {
	option   string
	custom   string
	name     string
	email    string
	currency string
	kind     string
	campaign string
	message  string
}

type DonateModel struct {
	svc             *donation.Service
	defaultCurrency donation.Currency
	preselect       *uuid.UUID

	state  donateState
	form   *huh.Form
	fields *donateFields
	opts   []donation.Option

	result   *donation.Donation
	campaign *donation.Campaign
	err      error
}

// NewDonateModel builds the donate form; preselect chooses the campaign
// initially selected, nil meaning the general fund.
func NewDonateModel(svc *donation.Service, defaultCurrency donation.Currency, preselect *uuid.UUID) DonateModel {
	return DonateModel{
		svc:             svc,
		defaultCurrency: defaultCurrency,
		preselect:       preselect,
		fields:          &donateFields{},
		opts:            svc.DonationOptions(),
	}
}

func (m DonateModel) Title() string { return "Donate" }

func (m DonateModel) ShortHelp() string {
	if m.state == donateStateResult {
		return "Esc: back | n: another donation"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m DonateModel) Init() tea.Cmd {
	return m.loadCampaignsCmd()
}

func (m DonateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case donateCampaignsMsg:
		if msg.err != nil {
			m.state = donateStateResult
			m.err = msg.err

			return m, nil
		}

		m.form = m.buildForm(msg.campaigns)
		m.state = donateStateForm

		return m, m.form.Init()

	case donateResultMsg:
		m.state = donateStateResult
		m.result = msg.donation
		m.campaign = msg.campaign
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == donateStateResult && msg.String() == "n" {
			next := NewDonateModel(m.svc, m.defaultCurrency, m.preselect)
			return next, next.Init()
		}
	}

	if m.state != donateStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.params()
	if err != nil {
		m.state = donateStateResult
		m.err = err

		return m, nil
	}

	m.state = donateStateSaving

	return m, m.recordCmd(params)
}

func (m DonateModel) buildForm(campaigns []*donation.Campaign) *huh.Form {
	f := m.fields
	f.option = m.opts[0].ID
	f.currency = string(m.defaultCurrency)
	f.kind = string(donation.TypeOneTime)
	f.campaign = generalFund

	optionChoices := make([]huh.Option[string], 0, len(m.opts))
	for _, o := range m.opts {
		label := o.Label
		if !o.Custom() {
			label = fmt.Sprintf("%s (%s)", o.Label, money.Plain(o.Amount))
		}

		optionChoices = append(optionChoices, huh.NewOption(label, o.ID))
	}

	campaignChoices := []huh.Option[string]{huh.NewOption("General fund", generalFund)}
	for _, c := range campaigns {
		campaignChoices = append(campaignChoices, huh.NewOption(
			fmt.Sprintf("%s - %s (%s%%)", c.MemberName, c.Reason, c.PercentageComplete().StringFixed(0)),
			c.ID.String(),
		))

		if m.preselect != nil && *m.preselect == c.ID {
			f.campaign = c.ID.String()
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("option").
				Title("Amount").
				Options(optionChoices...).
				Value(&f.option),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("custom").
				Title("Custom amount").
				Placeholder("12.50").
				Value(&f.custom).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return errors.New("enter an amount greater than zero")
					}

					return nil
				}),
		).WithHideFunc(func() bool { return !m.customSelected() }),
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Your name").Placeholder("Anonymous").Value(&f.name),
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&f.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Key("currency").
				Title("Currency").
				Options(huh.NewOptions(string(donation.CurrencyGBP), string(donation.CurrencyUSD), string(donation.CurrencyEUR))...).
				Value(&f.currency),
			huh.NewSelect[string]().
				Key("type").
				Title("Frequency").
				Options(
					huh.NewOption("One-time", string(donation.TypeOneTime)),
					huh.NewOption("Monthly", string(donation.TypeMonthly)),
				).
				Value(&f.kind),
			huh.NewSelect[string]().
				Key("campaign").
				Title("Support").
				Options(campaignChoices...).
				Value(&f.campaign),
			huh.NewText().Key("message").Title("Message (optional)").Value(&f.message),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m DonateModel) customSelected() bool {
	for _, o := range m.opts {
		if o.ID == m.fields.option {
			return o.Custom()
		}
	}

	return false
}

func (m DonateModel) params() (donation.RecordParams, error) {
	f := m.fields

	p := donation.RecordParams{
		DonorName:  f.name,
		DonorEmail: f.email,
		Currency:   donation.Currency(f.currency),
		Type:       donation.Type(f.kind),
		Message:    f.message,
	}

	if strings.TrimSpace(p.DonorName) == "" {
		p.DonorName = "Anonymous"
	}

	if m.customSelected() {
		amount, err := decimal.NewFromString(strings.TrimSpace(f.custom))
		if err != nil {
			return p, fmt.Errorf("invalid amount %q", f.custom)
		}

		p.Amount = amount
	} else {
		for _, o := range m.opts {
			if o.ID == f.option {
				p.Amount = o.Amount
			}
		}
	}

	if f.campaign != generalFund {
		id, err := uuid.Parse(f.campaign)
		if err != nil {
			return p, err
		}

		p.CampaignID = &id
	}

	return p, nil
}

func (m DonateModel) View() string {
	switch m.state {
	case donateStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading campaigns...")
	case donateStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case donateStateSaving:
		return lipgloss.NewStyle().Padding(2).Render("Recording donation...")
	case donateStateResult:
		return m.viewResult()
	}

	return ""
}

func (m DonateModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err != nil {
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	d := m.result
	lines := []string{
		successStyle("Thank you!"),
		"",
		fmt.Sprintf("Recorded %s %s from %s.", FormatAmount(d.Amount, d.Currency), d.Type, d.DonorName),
	}

	switch {
	case m.campaign != nil:
		lines = append(lines, fmt.Sprintf("%s is now at %s%% (%s of %s, %s).",
			m.campaign.MemberName,
			m.campaign.PercentageComplete().StringFixed(1),
			money.Plain(m.campaign.CurrentAmount),
			money.Plain(m.campaign.TargetAmount),
			m.campaign.Status,
		))
	default:
		lines = append(lines, "It goes to the general fund.")
	}

	lines = append(lines, "", "(Esc to go back, n for another donation)")

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Messages

type donateCampaignsMsg struct {
	campaigns []*donation.Campaign
	err       error
}

type donateResultMsg struct {
	donation *donation.Donation
	campaign *donation.Campaign
	err      error
}

func (m DonateModel) loadCampaignsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cs, err := m.svc.ListActiveCampaigns(ctx)

		return donateCampaignsMsg{campaigns: cs, err: err}
	}
}

func (m DonateModel) recordCmd(params donation.RecordParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.svc.RecordDonation(ctx, params)
		if err != nil {
			return donateResultMsg{err: err}
		}

		if d.CampaignID == nil {
			return donateResultMsg{donation: d}
		}

		c, err := m.svc.GetCampaign(ctx, *d.CampaignID)

		return donateResultMsg{donation: d, campaign: c, err: err}
	}
}
