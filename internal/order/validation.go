package order

import (
	"go.uber.org/zap"

	"vanta-trade/internal/market"
)

// 终态展示文案。TextSignIn 对应的不是硬校验失败，而是提示调用方弹出
// 登录界面的特殊状态。
const (
	TextSubmitting  = "Submitting..."
	TextSignIn      = "Sign In"
	TextEnterAmount = "Enter an amount"
)

// SubmitState 为校验引擎的输出：Text 直接面向用户展示；Disabled 表示
// 提交动作应当置灰；NeedsAuth 表示应当引导认证而非展示错误。
type SubmitState struct {
	Text      string
	Disabled  bool
	NeedsAuth bool
}

// Blocked 判断当前状态是否存在展示文案。
func (s SubmitState) Blocked() bool {
	return s.Text != ""
}

// ValidationInput 汇集一次校验所需的状态。
type ValidationInput struct {
	IsSubmitting bool
	HasSession   bool
	Kind         market.TradeKind
	Params       *market.TradeParams
	Batch        Batch
}

// Engine 按固定优先级执行分层校验，首个命中的原因胜出：
// 在途提交 > 未登录 > 通用链路错误 > 交易类别错误 > 数量不变式。
type Engine struct {
	rules             market.Rules
	disableForTesting bool
	logger            *zap.Logger
}

// NewEngine 创建校验引擎。disableForTesting 为自动化测试的逃生开关：
// 置位时即便存在校验原因也不置灰提交动作，但文案照常返回。
func NewEngine(rules market.Rules, disableForTesting bool, logger *zap.Logger) *Engine {
	if rules == nil {
		rules = market.NopRules{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:             rules,
		disableForTesting: disableForTesting,
		logger:            logger,
	}
}

// Validate 返回当前应展示的提交状态。无任何阻塞原因时返回零值。
func (e *Engine) Validate(in ValidationInput) SubmitState {
	if in.IsSubmitting {
		return SubmitState{Text: TextSubmitting, Disabled: true}
	}

	if !in.HasSession {
		return SubmitState{Text: TextSignIn, NeedsAuth: true}
	}

	if reason := e.rules.CommonError(); reason != "" {
		return e.blocking(reason)
	}

	if in.Params != nil {
		if reason := e.rules.KindError(in.Kind, *in.Params); reason != "" {
			return e.blocking(reason)
		}
	}

	for _, intent := range in.Batch.Create {
		if !intent.Resolved() {
			return e.blocking(TextEnterAmount)
		}
	}

	return SubmitState{}
}

func (e *Engine) blocking(reason string) SubmitState {
	if e.disableForTesting {
		e.logger.Debug("校验原因被测试开关放行", zap.String("reason", reason))
		return SubmitState{Text: reason}
	}
	return SubmitState{Text: reason, Disabled: true}
}
