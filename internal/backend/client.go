package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"vanta-trade/internal/config"
	"vanta-trade/internal/order"
	"vanta-trade/internal/session"
)

// SessionSource 在每次请求发起时提供持久化的用户标识。
// 必须走持久化读取而不是内存缓存：构造与发起之间发生的登出/登录要被尊重。
type SessionSource interface {
	PersistedUserID(ctx context.Context) (string, error)
}

// Client 负责与交易后端交互。每次调用恰好一个网络往返，不做隐式重试，
// 重试与否由调用方决定。
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
	logger     *zap.Logger
}

// NewClient 构造后端客户端。
func NewClient(cfg config.BackendConfig, sessions SessionSource, logger *zap.Logger) (*Client, error) {
	if sessions == nil {
		return nil, errors.New("backend: sessions 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		logger:     logger,
	}, nil
}

// SubmitOrder 提交一笔新订单。传输成功但 success:false 的响应同样
// 作为失败返回（BackendError）。
func (c *Client) SubmitOrder(ctx context.Context, payload order.Payload) (TradeResponse, error) {
	var resp TradeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		return TradeResponse{}, err
	}
	if !resp.Success {
		return TradeResponse{}, &BackendError{Msg: failureMessage(resp, "Order submission failed")}
	}
	return resp, nil
}

// ClosePosition 平掉一个已有仓位。
func (c *Client) ClosePosition(ctx context.Context, payload ClosePositionPayload) (TradeResponse, error) {
	var resp TradeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/positions/close", payload, &resp); err != nil {
		return TradeResponse{}, err
	}
	if !resp.Success {
		return TradeResponse{}, &BackendError{Msg: failureMessage(resp, "Close position failed")}
	}
	return resp, nil
}

// CancelOrder 撤销一笔挂单。
func (c *Client) CancelOrder(ctx context.Context, orderID string) (TradeResponse, error) {
	var resp TradeResponse
	path := fmt.Sprintf("/orders/%s/cancel", url.PathEscape(orderID))
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return TradeResponse{}, err
	}
	if !resp.Success {
		return TradeResponse{}, &BackendError{Msg: failureMessage(resp, "Cancel order failed")}
	}
	return resp, nil
}

// GetOrders 拉取指定用户的订单列表。
func (c *Client) GetOrders(ctx context.Context, userID string) ([]order.Payload, error) {
	var out []order.Payload
	path := "/orders?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPositions 拉取指定用户的持仓列表，内容对客户端不透明。
func (c *Client) GetPositions(ctx context.Context, userID string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	path := "/positions?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON 执行一次请求-响应交换。认证头在此刻从持久化存储读取；
// 读不到会话时不带认证头发出，由后端决定拒绝方式。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: 序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: 构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if userID, err := c.sessions.PersistedUserID(ctx); err == nil && userID != "" {
		req.Header.Set("X-User-Id", userID)
	} else if err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
		c.logger.Warn("读取持久化会话失败，按匿名请求发出", zap.Error(err))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("后端调用完成",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Status: resp.Status, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		if unmarshalErr := json.Unmarshal(raw, &eb); unmarshalErr == nil && eb.Error != "" {
			return &BackendError{Msg: eb.Error}
		}
		return &TransportError{Status: resp.Status}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Status: resp.Status, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	return nil
}

func failureMessage(resp TradeResponse, fallback string) string {
	if resp.Error != "" {
		return resp.Error
	}
	if resp.Message != "" {
		return resp.Message
	}
	return fallback
}
