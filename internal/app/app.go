package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vanta-trade/internal/backend"
	"vanta-trade/internal/capability"
	"vanta-trade/internal/config"
	"vanta-trade/internal/market"
	"vanta-trade/internal/order"
	"vanta-trade/internal/pending"
	"vanta-trade/internal/session"
	"vanta-trade/internal/store"
	"vanta-trade/internal/trade"
)

// App 聚合核心依赖并驱动系统生命周期。会话存储按引用传入各组件，
// 不提供任何全局查找入口。
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	sessions *session.Store
	service  *trade.Service
	ledger   *pending.Ledger
	caps     capability.Set
}

// New 组装全部组件。行情聚合层是外部协作方，这里以 NopRules 占位，
// 接入真实行情后在此替换。钱包签名类能力按 Unavailable 变体选定。
func New(cfg *config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	sessions, err := session.NewStore(st, cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(cfg.Backend, sessions, logger)
	if err != nil {
		return nil, err
	}

	engine := order.NewEngine(market.NopRules{}, cfg.Execution.DisableValidation, logger)
	ledger := pending.NewLedger()

	service, err := trade.NewService(
		sessions, client, ledger, engine,
		cfg.Execution, cfg.Backend.ChainID, logger,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		service:  service,
		ledger:   ledger,
		caps:     capability.UnavailableSet(),
	}, nil
}

// Sessions 返回会话存储，供界面层调用登录/登出。
func (a *App) Sessions() *session.Store {
	return a.sessions
}

// Service 返回提交服务。
func (a *App) Service() *trade.Service {
	return a.service
}

// Capabilities 返回当前组合下的可选能力集。
func (a *App) Capabilities() capability.Set {
	return a.caps
}

// Run 恢复持久化会话、启动本地状态接口，然后阻塞到退出信号。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("交易终端已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("backend", a.cfg.Backend.BaseURL),
		zap.Int64("chain_id", a.cfg.Backend.ChainID),
	)

	// 会话恢复是尽力而为的后台动作，不阻塞启动，期间 IsLoading 为 true。
	go a.sessions.Restore(ctx)

	if a.cfg.Console.Enabled {
		if err := startConsoleServer(ctx, a.sessions, a.ledger, a.cfg.Console.Port, a.logger); err != nil {
			return err
		}
	}

	<-ctx.Done()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("系统异常退出: %w", err)
	}
	a.logger.Info("系统收到退出信号，正在停止")
	return nil
}
