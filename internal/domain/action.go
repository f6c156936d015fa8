package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ActionKind represents the type of recommended action.
type ActionKind int

const (
	ActionStable ActionKind = iota
	ActionHold
	ActionPanicSell
	ActionCrisisBuy
	ActionRebalanceSell
	ActionRebalanceBuy
	ActionLossProtection
	ActionDualRebalance
)

// action string constants to avoid magic strings
const (
	actionStringStable         = "stable"
	actionStringHold           = "hold"
	actionStringPanicSell      = "panic_sell"
	actionStringCrisisBuy      = "crisis_buy"
	actionStringRebalanceSell  = "rebalance_sell"
	actionStringRebalanceBuy   = "rebalance_buy"
	actionStringLossProtection = "loss_protection"
	actionStringDualRebalance  = "dual_rebalance"
)

// String returns the string representation of the action kind.
func (a ActionKind) String() string {
	switch a {
	case ActionStable:
		return actionStringStable
	case ActionHold:
		return actionStringHold
	case ActionPanicSell:
		return actionStringPanicSell
	case ActionCrisisBuy:
		return actionStringCrisisBuy
	case ActionRebalanceSell:
		return actionStringRebalanceSell
	case ActionRebalanceBuy:
		return actionStringRebalanceBuy
	case ActionLossProtection:
		return actionStringLossProtection
	case ActionDualRebalance:
		return actionStringDualRebalance
	default:
		return "unknown"
	}
}

// IsSell reports whether the action liquidates equity. Checked
// structurally by the loss-protection override, never by string content.
func (a ActionKind) IsSell() bool {
	return a == ActionPanicSell || a == ActionRebalanceSell
}

// MarshalJSON encodes the kind as its string form.
func (a ActionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the kind from its string form.
func (a *ActionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case actionStringStable:
		*a = ActionStable
	case actionStringHold:
		*a = ActionHold
	case actionStringPanicSell:
		*a = ActionPanicSell
	case actionStringCrisisBuy:
		*a = ActionCrisisBuy
	case actionStringRebalanceSell:
		*a = ActionRebalanceSell
	case actionStringRebalanceBuy:
		*a = ActionRebalanceBuy
	case actionStringLossProtection:
		*a = ActionLossProtection
	case actionStringDualRebalance:
		*a = ActionDualRebalance
	default:
		return fmt.Errorf("unknown action kind %q", s)
	}
	return nil
}

// Severity urgency level of a recommendation.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityDanger
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the severity from its string form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "info":
		*s = SeverityInfo
	case "success":
		*s = SeveritySuccess
	case "warning":
		*s = SeverityWarning
	case "danger":
		*s = SeverityDanger
	default:
		return fmt.Errorf("unknown severity %q", str)
	}
	return nil
}

// Recommendation single recommended action with sizing.
type Recommendation struct {
	Kind      ActionKind      `json:"kind"`
	Rationale string          `json:"rationale"`
	Amount    decimal.Decimal `json:"amount"`
	HasAmount bool            `json:"has_amount"`
	Severity  Severity        `json:"severity"`
	// SellOrder advisory liquidation order across sub-accounts,
	// highest average cost first. Set only on sell recommendations.
	SellOrder []string `json:"sell_order,omitempty"`
}

// ContributionLeg per-instrument share of a contribution deployment.
type ContributionLeg struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// ContributionPlan monthly contribution recommendation with the
// per-instrument split.
type ContributionPlan struct {
	Recommendation
	Split []ContributionLeg `json:"split,omitempty"`
}

// LadderTier one step of the crisis-response ladder: at or below MDD,
// deploy CashFraction of available cash.
type LadderTier struct {
	MDD          decimal.Decimal `json:"mdd"`
	CashFraction decimal.Decimal `json:"cash_fraction"`
}
