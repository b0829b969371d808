package trade

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vanta-trade/internal/backend"
	"vanta-trade/internal/config"
	"vanta-trade/internal/numeric"
	"vanta-trade/internal/order"
	"vanta-trade/internal/pending"
	"vanta-trade/internal/session"
)

// backendClient 抽象提交客户端，方便测试替换。
type backendClient interface {
	SubmitOrder(ctx context.Context, payload order.Payload) (backend.TradeResponse, error)
	ClosePosition(ctx context.Context, payload backend.ClosePositionPayload) (backend.TradeResponse, error)
	CancelOrder(ctx context.Context, orderID string) (backend.TradeResponse, error)
	GetOrders(ctx context.Context, userID string) ([]order.Payload, error)
	GetPositions(ctx context.Context, userID string) ([]json.RawMessage, error)
}

// Service 驱动完整的提交管线：装配 → 校验 → 编码 → 派发 → 记账。
// 各阶段在单次尝试内严格串行；跨尝试不保证顺序，但 Service 持有
// isSubmitting 标志，在途期间的再次提交会被校验优先级第一条拦下。
type Service struct {
	sessions *session.Store
	client   backendClient
	ledger   *pending.Ledger
	engine   *order.Engine
	execCfg  config.ExecutionConfig
	chainID  int64
	logger   *zap.Logger

	mu         sync.Mutex
	submitting bool
}

// NewService 创建提交服务。
func NewService(
	sessions *session.Store,
	client backendClient,
	ledger *pending.Ledger,
	engine *order.Engine,
	execCfg config.ExecutionConfig,
	chainID int64,
	logger *zap.Logger,
) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("trade: sessions 不能为空")
	}
	if client == nil {
		return nil, errors.New("trade: client 不能为空")
	}
	if ledger == nil {
		return nil, errors.New("trade: ledger 不能为空")
	}
	if engine == nil {
		return nil, errors.New("trade: engine 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		sessions: sessions,
		client:   client,
		ledger:   ledger,
		engine:   engine,
		execCfg:  execCfg,
		chainID:  chainID,
		logger:   logger,
	}, nil
}

// IsSubmitting 报告是否有提交尝试在途。
func (s *Service) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// SubmitState 返回当前输入下应展示的提交状态，供界面决定文案与置灰。
func (s *Service) SubmitState(in SubmitInput) order.SubmitState {
	batch := s.assemble(in)
	_, hasSession := s.sessions.Current()
	return s.engine.Validate(order.ValidationInput{
		IsSubmitting: s.IsSubmitting(),
		HasSession:   hasSession,
		Kind:         in.Kind,
		Params:       in.Params,
		Batch:        batch,
	})
}

// Submit 执行一次提交尝试并返回唯一终态。返回的 error 仅用于内部
// 不变式违例（编码器映射表之外的类别等），用户可见的失败一律落在
// Outcome 上，不会被吞掉。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Outcome, error) {
	if !s.beginSubmit() {
		return failure(StageValidation, order.TextSubmitting), nil
	}
	defer s.endSubmit()

	attemptID := uuid.NewString()

	batch := s.assemble(in)
	primary, ok := batch.Primary()
	if !ok {
		// 聚合层没有给出可执行的主单，属于"无可提交内容"而非错误。
		return failure(StageValidation, order.TextEnterAmount), nil
	}

	sess, hasSession := s.sessions.Current()
	state := s.engine.Validate(order.ValidationInput{
		HasSession: hasSession,
		Kind:       in.Kind,
		Params:     in.Params,
		Batch:      batch,
	})

	if state.NeedsAuth {
		out := failure(StageValidation, state.Text)
		out.NeedsAuth = true
		return out, nil
	}
	if state.Blocked() && state.Disabled {
		return failure(StageValidation, state.Text), nil
	}

	payload, err := order.Encode(primary, sess, order.EncodeContext{
		ChainID:      s.chainID,
		ReferralCode: s.execCfg.ReferralCode,
		SlippageBps:  s.execCfg.SlippageBps,
	})
	if err != nil {
		s.logger.Error("编码订单报文失败，提交尝试中止",
			zap.String("attempt", attemptID),
			zap.Error(err),
		)
		return failure(StageValidation, "Invalid order parameters"), err
	}

	s.logger.Info("提交订单",
		zap.String("attempt", attemptID),
		zap.String("order_type", string(payload.OrderType)),
		zap.String("market", payload.MarketSymbol),
		zap.String("size_delta_usd", payload.SizeDeltaUSD),
		zap.Int("sidecars", len(batch.Create)-1),
		zap.String("total_execution_fee", numeric.FormatUSD(batch.TotalExecutionFee)),
	)

	resp, err := s.client.SubmitOrder(ctx, payload)
	if err != nil {
		return s.dispatchFailure(attemptID, err), nil
	}

	entry := pending.Entry{
		OrderID:   resp.OrderID,
		Type:      payload.OrderType,
		Market:    payload.MarketSymbol,
		Timestamp: time.Now().UTC(),
	}
	s.ledger.Append(entry)

	s.logger.Info("订单提交成功",
		zap.String("attempt", attemptID),
		zap.String("order_id", resp.OrderID),
	)

	return Outcome{
		OK:          true,
		OrderID:     resp.OrderID,
		OrderType:   payload.OrderType,
		Market:      payload.MarketSymbol,
		SubmittedAt: entry.Timestamp,
	}, nil
}

// ClosePosition 对已有仓位发起平仓。
func (s *Service) ClosePosition(ctx context.Context, in ClosePositionInput) (Outcome, error) {
	sess, hasSession := s.sessions.Current()
	if !hasSession {
		out := failure(StageValidation, order.TextSignIn)
		out.NeedsAuth = true
		return out, nil
	}

	payload := backend.ClosePositionPayload{
		UserID:          sess.ID,
		PositionKey:     in.PositionKey,
		MarketAddress:   in.Market.Address,
		SizeDeltaUSD:    numeric.FormatUSD(in.SizeDeltaUSD),
		AcceptablePrice: numeric.FormatUSD(in.AcceptablePrice),
		IsLong:          in.IsLong,
		ChainID:         s.chainID,
	}

	resp, err := s.client.ClosePosition(ctx, payload)
	if err != nil {
		return s.dispatchFailure("", err), nil
	}

	entry := pending.Entry{
		OrderID:   resp.OrderID,
		Type:      order.WireMarket,
		Market:    in.Market.Name,
		Timestamp: time.Now().UTC(),
	}
	s.ledger.Append(entry)

	return Outcome{
		OK:          true,
		OrderID:     resp.OrderID,
		OrderType:   order.WireMarket,
		Market:      in.Market.Name,
		SubmittedAt: entry.Timestamp,
	}, nil
}

// CancelOrder 撤销一笔挂单。撤单不产生新的待确认记录。
func (s *Service) CancelOrder(ctx context.Context, orderID string) (Outcome, error) {
	if _, hasSession := s.sessions.Current(); !hasSession {
		out := failure(StageValidation, order.TextSignIn)
		out.NeedsAuth = true
		return out, nil
	}

	if _, err := s.client.CancelOrder(ctx, orderID); err != nil {
		return s.dispatchFailure("", err), nil
	}

	return Outcome{OK: true, OrderID: orderID}, nil
}

// Snapshot 并发拉取当前用户的订单与持仓。
func (s *Service) Snapshot(ctx context.Context) (AccountSnapshot, error) {
	sess, hasSession := s.sessions.Current()
	if !hasSession {
		return AccountSnapshot{}, session.ErrNotAuthenticated
	}

	var (
		orders    []order.Payload
		positions []json.RawMessage
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.client.GetOrders(groupCtx, sess.ID)
		if err != nil {
			return err
		}
		orders = data
		return nil
	})

	group.Go(func() error {
		data, err := s.client.GetPositions(groupCtx, sess.ID)
		if err != nil {
			return err
		}
		positions = data
		return nil
	})

	if err := group.Wait(); err != nil {
		return AccountSnapshot{}, err
	}

	return AccountSnapshot{
		Orders:      orders,
		Positions:   positions,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

// SubmitWrapOrUnwrap 为能力缺口：包装/解包需要钱包签名。
func (s *Service) SubmitWrapOrUnwrap() Outcome {
	return failure(StageValidation, "Wrap/Unwrap operations will be available soon")
}

// SubmitStakeOrUnstake 为能力缺口：质押/解押需要钱包签名。
func (s *Service) SubmitStakeOrUnstake() Outcome {
	return failure(StageValidation, "Stake/Unstake operations will be available soon")
}

func (s *Service) assemble(in SubmitInput) order.Batch {
	return order.Assemble(order.AssembleInput{
		Params:      in.Params,
		TakeProfits: in.TakeProfits,
		StopLosses:  in.StopLosses,
		Updates:     in.Updates,
		Cancels:     in.Cancels,
	})
}

// dispatchFailure 将派发错误归并为单一终态：后端业务失败原样透传文案，
// 传输失败给出简短的可重试提示。失败不写账本。
func (s *Service) dispatchFailure(attemptID string, err error) Outcome {
	var be *backend.BackendError
	if errors.As(err, &be) {
		s.logger.Warn("后端拒绝订单",
			zap.String("attempt", attemptID),
			zap.String("reason", be.Msg),
		)
		return failure(StageBackend, be.Msg)
	}

	var te *backend.TransportError
	if errors.As(err, &te) {
		s.logger.Warn("后端调用失败",
			zap.String("attempt", attemptID),
			zap.Error(err),
		)
		return failure(StageTransport, te.Message())
	}

	s.logger.Warn("派发失败",
		zap.String("attempt", attemptID),
		zap.Error(err),
	)
	return failure(StageTransport, "API request failed")
}

func (s *Service) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Service) endSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}
