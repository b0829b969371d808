package trade

import (
	"encoding/json"
	"time"

	"vanta-trade/internal/market"
	"vanta-trade/internal/numeric"
	"vanta-trade/internal/order"
)

// Stage 标注失败发生的阶段。
type Stage string

const (
	StageValidation Stage = "validation"
	StageTransport  Stage = "transport"
	StageBackend    Stage = "backend"
)

// Outcome 是一次提交尝试的唯一终态：要么成功（OrderID 等字段有值并已
// 记入待确认账本），要么失败（Message 面向用户，Stage 标注来源）。
// 失败不会留下任何部分状态。
type Outcome struct {
	OK bool

	// 成功侧字段。
	OrderID     string
	OrderType   order.WireOrderType
	Market      string
	SubmittedAt time.Time

	// 失败侧字段。NeedsAuth 表示应引导用户认证而非展示错误。
	FailureStage Stage
	Message      string
	NeedsAuth    bool
}

// SubmitInput 汇集一次提交尝试的输入，全部来自行情聚合层的当前状态。
type SubmitInput struct {
	Kind        market.TradeKind
	Params      *market.TradeParams
	TakeProfits []market.SidecarOrder
	StopLosses  []market.SidecarOrder
	Updates     []order.Intent
	Cancels     []order.IntentRef
}

// ClosePositionInput 描述一次平仓请求。
type ClosePositionInput struct {
	PositionKey     string
	Market          market.MarketInfo
	SizeDeltaUSD    numeric.USD
	AcceptablePrice numeric.USD
	IsLong          bool
}

// AccountSnapshot 聚合当前用户的订单与持仓。持仓内容对客户端不透明。
type AccountSnapshot struct {
	Orders      []order.Payload
	Positions   []json.RawMessage
	RetrievedAt time.Time
}

func failure(stage Stage, message string) Outcome {
	return Outcome{FailureStage: stage, Message: message}
}
