// Package setup is the terminal wizard that collects the sub-account
// holdings and the monthly contribution, then writes the inputs file
// the advisor evaluates every cycle.
package setup

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/internal/domain"
	"github.com/busandev/firecro/internal/storage/inputs"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

type accountForm struct {
	name        string
	symbol      string
	quantity    string
	avgCost     string
	cashLocal   string
	cashForeign string
}

// RunTUI launches the portfolio setup wizard and saves the result to
// the inputs store at inputsPath.
func RunTUI(inputsPath, engineSymbol string) error {
	store, err := inputs.NewStore(inputsPath)
	if err != nil {
		return err
	}

	current, err := store.Load()
	if err != nil {
		return err
	}

	forms := []accountForm{
		{name: domain.AccountVault, symbol: engineSymbol},
		{name: domain.AccountSniper, symbol: engineSymbol},
		{name: domain.AccountBunker, symbol: engineSymbol},
	}
	prefill(forms, current)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("FIRE CRO SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Enter your sub-account balances. All cash in KRW unless noted.\n"))

	for i := range forms {
		f := &forms[i]
		fmt.Println(stepStyle.Render(fmt.Sprintf("STEP %d: %s ACCOUNT", i+1, f.name)))

		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("%s quantity", f.symbol)).
					Description("Shares held, 0 if none").
					Value(&f.quantity).
					Validate(validateNonNegative),
				huh.NewInput().
					Title(fmt.Sprintf("%s average cost (KRW)", f.symbol)).
					Description("Blended purchase price per share in KRW").
					Value(&f.avgCost).
					Validate(validateNonNegative),
				huh.NewInput().
					Title("Cash (KRW)").
					Value(&f.cashLocal).
					Validate(validateNonNegative),
				huh.NewInput().
					Title("Cash (USD)").
					Description("Uninvested dollars, converted at the live rate").
					Value(&f.cashForeign).
					Validate(validateNonNegative),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	contribution := current.MonthlyContribution.String()
	forceDefensive := current.ForceDefensive

	fmt.Println(stepStyle.Render("STEP 4: MONTHLY ROUTINE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly contribution (KRW)").
				Description("New money added each month, 0 to disable the routine").
				Value(&contribution).
				Validate(validateNonNegative),
			huh.NewConfirm().
				Title("Force defensive mode?").
				Description("Overrides the macro flags and tightens targets").
				Value(&forceDefensive),
		),
	).Run()
	if err != nil {
		return err
	}

	in, err := buildInputs(forms, contribution, forceDefensive)
	if err != nil {
		return err
	}

	var confirm bool
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))
	summary := summarize(in)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save inputs?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := store.Save(in); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Inputs saved to %s", inputsPath)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func prefill(forms []accountForm, current domain.Inputs) {
	byName := make(map[string]domain.SubAccount, len(current.Accounts))
	for _, acc := range current.Accounts {
		byName[acc.Name] = acc
	}

	for i := range forms {
		f := &forms[i]
		f.quantity, f.avgCost = "0", "0"
		f.cashLocal, f.cashForeign = "0", "0"

		acc, ok := byName[f.name]
		if !ok {
			continue
		}
		f.cashLocal = acc.CashLocal.String()
		f.cashForeign = acc.CashForeign.String()
		for _, h := range acc.Holdings {
			if h.Symbol == f.symbol {
				f.quantity = h.Quantity.String()
				f.avgCost = h.AvgCost.String()
			}
		}
	}
}

func buildInputs(forms []accountForm, contribution string, forceDefensive bool) (domain.Inputs, error) {
	accounts := make([]domain.SubAccount, 0, len(forms))
	for _, f := range forms {
		quantity, err := decimal.NewFromString(f.quantity)
		if err != nil {
			return domain.Inputs{}, fmt.Errorf("invalid quantity for %s: %w", f.name, err)
		}
		avgCost, err := decimal.NewFromString(f.avgCost)
		if err != nil {
			return domain.Inputs{}, fmt.Errorf("invalid average cost for %s: %w", f.name, err)
		}
		cashLocal, err := decimal.NewFromString(f.cashLocal)
		if err != nil {
			return domain.Inputs{}, fmt.Errorf("invalid cash for %s: %w", f.name, err)
		}
		cashForeign, err := decimal.NewFromString(f.cashForeign)
		if err != nil {
			return domain.Inputs{}, fmt.Errorf("invalid foreign cash for %s: %w", f.name, err)
		}

		acc := domain.SubAccount{
			Name:        f.name,
			CashLocal:   cashLocal,
			CashForeign: cashForeign,
		}
		if quantity.IsPositive() {
			acc.Holdings = []domain.Holding{{Symbol: f.symbol, Quantity: quantity, AvgCost: avgCost}}
		}
		accounts = append(accounts, acc)
	}

	monthly, err := decimal.NewFromString(contribution)
	if err != nil {
		return domain.Inputs{}, fmt.Errorf("invalid monthly contribution: %w", err)
	}

	return domain.Inputs{
		Accounts:            accounts,
		MonthlyContribution: monthly,
		ForceDefensive:      forceDefensive,
	}, nil
}

func summarize(in domain.Inputs) string {
	out := ""
	for _, acc := range in.Accounts {
		qty := decimal.Zero
		for _, h := range acc.Holdings {
			qty = qty.Add(h.Quantity)
		}
		out += fmt.Sprintf("%s: %s shares, %s KRW cash, %s USD cash\n",
			acc.Name, qty.String(), acc.CashLocal.StringFixed(0), acc.CashForeign.StringFixed(2))
	}
	out += fmt.Sprintf("Monthly contribution: %s KRW\nForce defensive: %v\n",
		in.MonthlyContribution.StringFixed(0), in.ForceDefensive)
	return out
}

func validateNonNegative(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
