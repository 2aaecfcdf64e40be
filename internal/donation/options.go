package donation

import "github.com/shopspring/decimal"

// Option is a preset amount offered on the donation form. A zero amount
// means the donor types their own.
type Option struct {
	ID          string
	Amount      decimal.Decimal
	Label       string
	Description string
}

func (o Option) Custom() bool {
	return o.Amount.IsZero()
}

var presetOptions = []Option{
	{ID: "opt1", Amount: decimal.NewFromInt(5), Label: "Help a Little", Description: "Make a difference with £5"},
	{ID: "opt2", Amount: decimal.NewFromInt(10), Label: "Support Meaningfully", Description: "Double the impact with £10"},
	{ID: "opt3", Amount: decimal.NewFromInt(25), Label: "Make a Real Difference", Description: "Contribute £25 towards a repatriation"},
	{ID: "opt4", Amount: decimal.NewFromInt(50), Label: "Be a Hero", Description: "Half of what's needed with £50"},
	{ID: "opt5", Amount: decimal.NewFromInt(100), Label: "Transform a Family", Description: "Give £100 and change lives"},
	{ID: "opt6", Amount: decimal.Zero, Label: "Custom Amount", Description: "Donate what you can"},
}
