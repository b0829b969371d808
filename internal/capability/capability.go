// Package capability 描述依赖钱包签名的可选能力（子账户、代币授权、
// 链切换）。凭证会话拿不到签名器，这些能力在当前形态下不可用，
// 但接口保留，接入钱包后在组装期替换实现即可——不做运行时类型探测。
package capability

import "context"

// Result 为能力调用的统一结果。Supported 为 false 时 Reason 说明原因。
type Result struct {
	Supported bool
	Reason    string
}

const unsupportedReason = "Not available with username/password authentication"

// notSupported 是 Unavailable 系列实现对一切操作的固定应答。
var notSupported = Result{Supported: false, Reason: unsupportedReason}

// Subaccounts 为一键交易子账户能力。
type Subaccounts interface {
	Enable(ctx context.Context) Result
	Disable(ctx context.Context) Result
	UpdateSettings(ctx context.Context, remainingActions int64, remainingSeconds int64) Result
}

// TokenPermits 为代币授权签名能力。
type TokenPermits interface {
	SignPermit(ctx context.Context, tokenAddress string) Result
}

// ChainActions 为链切换与链上动作能力。
type ChainActions interface {
	Switch(ctx context.Context, chainID int64) Result
}

// Set 聚合全部可选能力，在组装期一次性选定变体。
type Set struct {
	Subaccounts  Subaccounts
	TokenPermits TokenPermits
	ChainActions ChainActions
}

// UnavailableSet 返回全部能力均不可用的组合。
func UnavailableSet() Set {
	return Set{
		Subaccounts:  UnavailableSubaccounts{},
		TokenPermits: UnavailableTokenPermits{},
		ChainActions: UnavailableChainActions{},
	}
}

// UnavailableSubaccounts 对每个操作返回固定的不支持结果。
type UnavailableSubaccounts struct{}

func (UnavailableSubaccounts) Enable(context.Context) Result { return notSupported }

func (UnavailableSubaccounts) Disable(context.Context) Result { return notSupported }

func (UnavailableSubaccounts) UpdateSettings(context.Context, int64, int64) Result {
	return notSupported
}

// UnavailableTokenPermits 对每个操作返回固定的不支持结果。
type UnavailableTokenPermits struct{}

func (UnavailableTokenPermits) SignPermit(context.Context, string) Result { return notSupported }

// UnavailableChainActions 对每个操作返回固定的不支持结果。
type UnavailableChainActions struct{}

func (UnavailableChainActions) Switch(context.Context, int64) Result { return notSupported }
