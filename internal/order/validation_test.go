package order

import (
	"testing"

	"vanta-trade/internal/market"
)

// stubRules 允许逐项控制通用与类别错误。
type stubRules struct {
	common string
	kind   string
}

func (r stubRules) CommonError() string { return r.common }

func (r stubRules) KindError(market.TradeKind, market.TradeParams) string { return r.kind }

func validInput() ValidationInput {
	params := makeIncreaseParams()
	return ValidationInput{
		HasSession: true,
		Kind:       market.KindIncrease,
		Params:     params,
		Batch:      Assemble(AssembleInput{Params: params}),
	}
}

func TestValidateSubmittingWinsOverEverything(t *testing.T) {
	engine := NewEngine(stubRules{common: "Chain is outdated", kind: "Max leverage exceeded"}, false, nil)

	in := validInput()
	in.IsSubmitting = true
	in.HasSession = false

	state := engine.Validate(in)
	if state.Text != TextSubmitting {
		t.Errorf("text = %q, want %q", state.Text, TextSubmitting)
	}
	if !state.Disabled {
		t.Errorf("submitting state must disable the action")
	}
	if state.NeedsAuth {
		t.Errorf("submitting state must not request auth")
	}
}

func TestValidateSignInIsNotBlocking(t *testing.T) {
	engine := NewEngine(stubRules{}, false, nil)

	in := validInput()
	in.HasSession = false

	state := engine.Validate(in)
	if state.Text != TextSignIn {
		t.Errorf("text = %q, want %q", state.Text, TextSignIn)
	}
	if !state.NeedsAuth {
		t.Errorf("missing session should request auth")
	}
	if state.Disabled {
		t.Errorf("sign-in prompt must keep the action invokable")
	}
}

func TestValidateCommonErrorPrecedesKindError(t *testing.T) {
	engine := NewEngine(stubRules{common: "Page outdated, please refresh", kind: "Insufficient liquidity"}, false, nil)

	state := engine.Validate(validInput())
	if state.Text != "Page outdated, please refresh" {
		t.Errorf("common error must win, got %q", state.Text)
	}
	if !state.Disabled {
		t.Errorf("common error must disable the action")
	}
}

func TestValidateKindError(t *testing.T) {
	engine := NewEngine(stubRules{kind: "Insufficient liquidity"}, false, nil)

	state := engine.Validate(validInput())
	if state.Text != "Insufficient liquidity" {
		t.Errorf("text = %q, want kind error", state.Text)
	}
}

func TestValidatePassesCleanInput(t *testing.T) {
	engine := NewEngine(stubRules{}, false, nil)

	state := engine.Validate(validInput())
	if state.Blocked() {
		t.Errorf("expected no reason, got %q", state.Text)
	}
	if state.Disabled {
		t.Errorf("clean input must not disable")
	}
}

func TestValidateTestingOverrideKeepsTextDropsDisable(t *testing.T) {
	engine := NewEngine(stubRules{kind: "Max leverage exceeded"}, true, nil)

	state := engine.Validate(validInput())
	if state.Text != "Max leverage exceeded" {
		t.Errorf("override must keep the reason text, got %q", state.Text)
	}
	if state.Disabled {
		t.Errorf("override must keep the action invokable")
	}
}

func TestValidateUnresolvedIntent(t *testing.T) {
	engine := NewEngine(stubRules{}, false, nil)

	in := validInput()
	in.Batch.Create = append(in.Batch.Create, Intent{Kind: KindTakeProfitDecrease})

	state := engine.Validate(in)
	if state.Text != TextEnterAmount {
		t.Errorf("text = %q, want %q", state.Text, TextEnterAmount)
	}
	if !state.Disabled {
		t.Errorf("unresolved intent must disable the action")
	}
}
