package order

import (
	"fmt"

	"vanta-trade/internal/numeric"
	"vanta-trade/internal/session"
)

// WireOrderType 为后端接受的订单类别字符串，有且只有四种取值。
type WireOrderType string

const (
	WireMarket     WireOrderType = "market"
	WireLimit      WireOrderType = "limit"
	WireStopLoss   WireOrderType = "stop-loss"
	WireTakeProfit WireOrderType = "take-profit"
)

// wireKinds 是内部类别到线上类别的封闭映射表。表外的类别不做兜底，
// 直接按内部错误中止，防止悄悄退化成 market 单。
var wireKinds = map[Kind]WireOrderType{
	KindMarketIncrease:     WireMarket,
	KindLimitIncrease:      WireLimit,
	KindMarketDecrease:     WireMarket,
	KindStopLossDecrease:   WireStopLoss,
	KindTakeProfitDecrease: WireTakeProfit,
	KindMarketSwap:         WireMarket,
	KindLimitSwap:          WireLimit,
}

// Metadata 为报文附带的可选元信息。
type Metadata struct {
	ReferralCode string `json:"referralCode,omitempty"`
	SlippageBps  int    `json:"slippageBps,omitempty"`
}

// Payload 为 POST /orders 的请求体。所有美元金额一律输出格式化字符串，
// 缺省金额输出格式化的零而不是 null，保持后端模式全量。
type Payload struct {
	UserID             string        `json:"userId"`
	OrderType          WireOrderType `json:"orderType"`
	Side               string        `json:"side"`
	MarketAddress      string        `json:"marketAddress"`
	MarketSymbol       string        `json:"marketSymbol"`
	SizeDeltaUSD       string        `json:"sizeDeltaUsd"`
	CollateralDeltaUSD string        `json:"collateralDeltaUsd"`
	TriggerPrice       string        `json:"triggerPrice,omitempty"`
	AcceptablePrice    string        `json:"acceptablePrice"`
	Leverage           float64       `json:"leverage"`
	IsLong             bool          `json:"isLong"`
	ChainID            int64         `json:"chainId"`
	Metadata           *Metadata     `json:"metadata,omitempty"`
}

// EncodeContext 为编码所需的会话外上下文。
type EncodeContext struct {
	ChainID      int64
	ReferralCode string
	SlippageBps  int
}

// Encode 将内部意图转换为后端报文。纯函数：相同输入必得逐字节一致的
// 输出，不产生副作用。畸形输入应在校验阶段就被拦下，这里只对映射表
// 之外的类别报内部错误。
func Encode(intent Intent, sess session.Session, ctx EncodeContext) (Payload, error) {
	wireType, ok := wireKinds[intent.Kind]
	if !ok {
		return Payload{}, &ProgrammingError{
			Message: fmt.Sprintf("订单类别 %s 不在映射表内", intent.Kind),
		}
	}

	side := "short"
	if intent.IsLong {
		side = "long"
	}

	leverage := 1.0
	if intent.LeverageScaled > 0 {
		leverage = numeric.LeverageRatio(intent.LeverageScaled)
	}

	payload := Payload{
		UserID:             sess.ID,
		OrderType:          wireType,
		Side:               side,
		MarketAddress:      intent.MarketAddress,
		MarketSymbol:       intent.MarketSymbol,
		SizeDeltaUSD:       numeric.FormatUSD(intent.SizeDeltaUSD),
		CollateralDeltaUSD: numeric.FormatUSD(intent.CollateralDeltaUSD),
		AcceptablePrice:    numeric.FormatUSD(intent.AcceptablePrice),
		Leverage:           leverage,
		IsLong:             intent.IsLong,
		ChainID:            ctx.ChainID,
	}

	if !intent.TriggerPrice.IsZero() {
		payload.TriggerPrice = numeric.FormatUSD(intent.TriggerPrice)
	}

	if ctx.ReferralCode != "" || ctx.SlippageBps > 0 {
		payload.Metadata = &Metadata{
			ReferralCode: ctx.ReferralCode,
			SlippageBps:  ctx.SlippageBps,
		}
	}

	return payload, nil
}
