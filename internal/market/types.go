package market

import (
	"vanta-trade/internal/numeric"
)

// TradeKind 区分一次交易属于加仓、减仓、兑换还是市场间迁移，
// 校验引擎按它选择对应的规则集。
type TradeKind string

const (
	KindIncrease TradeKind = "increase"
	KindDecrease TradeKind = "decrease"
	KindSwap     TradeKind = "swap"
	KindShift    TradeKind = "shift"
)

// TradeMode 区分执行方式。
type TradeMode string

const (
	ModeMarket  TradeMode = "market"
	ModeLimit   TradeMode = "limit"
	ModeTrigger TradeMode = "trigger"
)

// TriggerKind 标注带触发价的减仓单方向：止盈或止损。
type TriggerKind string

const (
	TriggerNone       TriggerKind = ""
	TriggerTakeProfit TriggerKind = "take-profit"
	TriggerStopLoss   TriggerKind = "stop-loss"
)

// TokenData 为外部行情层提供的代币信息。
type TokenData struct {
	Address  string
	Symbol   string
	Decimals int
}

// MarketInfo 为外部行情层提供的市场信息。
type MarketInfo struct {
	Address    string
	Name       string
	LongToken  TokenData
	ShortToken TokenData
}

// TradeParams 是行情聚合层针对当前选择算出的一次交易参数。
// 所有金额均为定点美元，杠杆按 numeric.LeverageBasis 缩放。
type TradeParams struct {
	Kind   TradeKind
	Mode   TradeMode
	IsLong bool
	Market MarketInfo

	SizeDeltaUSD       numeric.USD
	CollateralDeltaUSD numeric.USD
	AcceptablePrice    numeric.USD
	TriggerPrice       numeric.USD // 零值表示无触发价
	Trigger            TriggerKind
	LeverageScaled     int64 // 0 表示聚合层未给出估计，出口按 1 倍处理

	ExecutionFee numeric.USD
}

// SidecarOrder 描述挂在主单上的止盈/止损子单定义。
// 子单继承主单的市场与方向，只携带独立的触发与数量参数。
type SidecarOrder struct {
	Trigger         TriggerKind
	SizeDeltaUSD    numeric.USD
	TriggerPrice    numeric.USD
	AcceptablePrice numeric.USD
	ExecutionFee    numeric.USD
}

// Rules 是行情聚合层暴露的领域校验规则。返回的字符串直接面向用户展示，
// 空串表示通过。实现方（行情层）不在本仓库范围内。
type Rules interface {
	// CommonError 覆盖链路/协议层面的通用检查，如后端或界面版本过期。
	CommonError() string
	// KindError 针对指定交易类别做检查：swap/shift 查代币对与数量边界，
	// increase 查流动性、杠杆与价格冲击，decrease 查持仓与可接受价。
	KindError(kind TradeKind, params TradeParams) string
}

// NopRules 在尚未接入真实行情层时充当占位实现，所有检查一律通过。
type NopRules struct{}

func (NopRules) CommonError() string { return "" }

func (NopRules) KindError(TradeKind, TradeParams) string { return "" }
