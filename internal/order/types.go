package order

import (
	"vanta-trade/internal/market"
	"vanta-trade/internal/numeric"
)

// Kind 为内部订单类别。与线上的四种 orderType 不是一一对应关系，
// 由 codec 的封闭映射表负责转换。
type Kind int

const (
	KindUnspecified Kind = iota
	KindMarketIncrease
	KindLimitIncrease
	KindMarketDecrease
	KindStopLossDecrease
	KindTakeProfitDecrease
	KindMarketSwap
	KindLimitSwap
)

var kindNames = map[Kind]string{
	KindUnspecified:        "unspecified",
	KindMarketIncrease:     "market-increase",
	KindLimitIncrease:      "limit-increase",
	KindMarketDecrease:     "market-decrease",
	KindStopLossDecrease:   "stop-loss-decrease",
	KindTakeProfitDecrease: "take-profit-decrease",
	KindMarketSwap:         "market-swap",
	KindLimitSwap:          "limit-swap",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent 表示一笔期望后端创建的订单。每次提交尝试都从当前行情状态
// 重新构造，不跨尝试复用。
type Intent struct {
	Kind   Kind
	IsLong bool

	MarketAddress string
	MarketSymbol  string

	SizeDeltaUSD       numeric.USD
	CollateralDeltaUSD numeric.USD
	TriggerPrice       numeric.USD // 零值表示无触发价
	AcceptablePrice    numeric.USD
	LeverageScaled     int64
}

// Resolved 判断意图的数量是否已解析：至少一个增量非零，且均不为负。
// 提交前每个意图都必须满足该不变式。
func (i Intent) Resolved() bool {
	if i.SizeDeltaUSD.IsNegative() || i.CollateralDeltaUSD.IsNegative() {
		return false
	}
	return !i.SizeDeltaUSD.IsZero() || !i.CollateralDeltaUSD.IsZero()
}

// IntentRef 引用一笔已存在的后端订单，用于撤单。
type IntentRef struct {
	OrderID string
}

// Batch 为一次提交尝试的规范化订单集合：
// Create 的顺序固定为 主单、全部止盈子单（按声明顺序）、全部止损子单（按声明顺序），
// 该顺序用于界面展示以及后端分组标识与子单的关联。
type Batch struct {
	Create []Intent
	Update []Intent
	Cancel []IntentRef

	// TotalExecutionFee 为主单与子单执行费的合计，仅供展示，不参与校验门禁。
	TotalExecutionFee numeric.USD
}

// Empty 判断批次是否没有任何可提交内容。
func (b Batch) Empty() bool {
	return len(b.Create) == 0 && len(b.Update) == 0 && len(b.Cancel) == 0
}

// Primary 返回主单。批次为空时第二个返回值为 false。
func (b Batch) Primary() (Intent, bool) {
	if len(b.Create) == 0 {
		return Intent{}, false
	}
	return b.Create[0], true
}

func sidecarKind(trigger market.TriggerKind) Kind {
	switch trigger {
	case market.TriggerTakeProfit:
		return KindTakeProfitDecrease
	case market.TriggerStopLoss:
		return KindStopLossDecrease
	default:
		return KindUnspecified
	}
}
