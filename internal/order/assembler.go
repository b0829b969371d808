package order

import (
	"vanta-trade/internal/market"
)

// AssembleInput 汇集装配一个批次所需的全部输入：
// 聚合层算出的主单参数、声明的止盈/止损子单，以及对已有子单的改单/撤单。
type AssembleInput struct {
	Params      *market.TradeParams
	TakeProfits []market.SidecarOrder
	StopLosses  []market.SidecarOrder
	Updates     []Intent
	Cancels     []IntentRef
}

// Assemble 将聚合层输出规范化为订单批次。聚合层没有给出可执行的主单
// 参数时，Create 为空，下游按"无可提交内容"处理而不是报错。
func Assemble(in AssembleInput) Batch {
	batch := Batch{
		Create: make([]Intent, 0, 1+len(in.TakeProfits)+len(in.StopLosses)),
		Update: in.Updates,
		Cancel: in.Cancels,
	}

	if in.Params == nil {
		return batch
	}

	primary, ok := primaryIntent(*in.Params)
	if !ok {
		return batch
	}

	batch.Create = append(batch.Create, primary)
	fee := in.Params.ExecutionFee

	// 子单顺序固定：先全部止盈、后全部止损，各自保持声明顺序。
	for _, tp := range in.TakeProfits {
		batch.Create = append(batch.Create, sidecarIntent(*in.Params, tp, market.TriggerTakeProfit))
		fee = fee.Add(tp.ExecutionFee)
	}
	for _, sl := range in.StopLosses {
		batch.Create = append(batch.Create, sidecarIntent(*in.Params, sl, market.TriggerStopLoss))
		fee = fee.Add(sl.ExecutionFee)
	}

	batch.TotalExecutionFee = fee
	return batch
}

func primaryIntent(params market.TradeParams) (Intent, bool) {
	kind, ok := primaryKind(params)
	if !ok {
		return Intent{}, false
	}

	intent := Intent{
		Kind:               kind,
		IsLong:             params.IsLong,
		MarketAddress:      params.Market.Address,
		MarketSymbol:       params.Market.Name,
		SizeDeltaUSD:       params.SizeDeltaUSD,
		CollateralDeltaUSD: params.CollateralDeltaUSD,
		TriggerPrice:       params.TriggerPrice,
		AcceptablePrice:    params.AcceptablePrice,
		LeverageScaled:     params.LeverageScaled,
	}

	if !intent.Resolved() {
		return Intent{}, false
	}
	return intent, true
}

func primaryKind(params market.TradeParams) (Kind, bool) {
	switch params.Kind {
	case market.KindIncrease:
		if params.Mode == market.ModeLimit {
			return KindLimitIncrease, true
		}
		return KindMarketIncrease, true
	case market.KindDecrease:
		switch params.Trigger {
		case market.TriggerTakeProfit:
			return KindTakeProfitDecrease, true
		case market.TriggerStopLoss:
			return KindStopLossDecrease, true
		default:
			return KindMarketDecrease, true
		}
	case market.KindSwap, market.KindShift:
		if params.Mode == market.ModeLimit {
			return KindLimitSwap, true
		}
		return KindMarketSwap, true
	default:
		return KindUnspecified, false
	}
}

// sidecarIntent 由主单派生子单：市场与方向继承主单，触发与数量独立。
func sidecarIntent(params market.TradeParams, sc market.SidecarOrder, trigger market.TriggerKind) Intent {
	size := sc.SizeDeltaUSD
	if size.IsZero() {
		size = params.SizeDeltaUSD
	}
	return Intent{
		Kind:            sidecarKind(trigger),
		IsLong:          params.IsLong,
		MarketAddress:   params.Market.Address,
		MarketSymbol:    params.Market.Name,
		SizeDeltaUSD:    size,
		TriggerPrice:    sc.TriggerPrice,
		AcceptablePrice: sc.AcceptablePrice,
		LeverageScaled:  params.LeverageScaled,
	}
}
