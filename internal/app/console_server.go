package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"vanta-trade/internal/pending"
	"vanta-trade/internal/session"
)

// sessionStatus 为 /session 的响应体。
type sessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	IsLoading     bool   `json:"isLoading"`
	Error         string `json:"error,omitempty"`
}

// startConsoleServer 暴露本地只读状态接口：会话状态与待确认订单列表。
// 这是账本的界面侧消费者，核心管线只向账本追加。
func startConsoleServer(ctx context.Context, sessions *session.Store, ledger *pending.Ledger, port int, logger *zap.Logger) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		status := sessionStatus{
			IsLoading: sessions.IsLoading(),
			Error:     sessions.Err(),
		}
		if sess, ok := sessions.Current(); ok {
			status.Authenticated = true
			status.Username = sess.Username
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.Warn("写入会话状态响应失败", zap.Error(err))
		}
	})

	mux.HandleFunc("/pending", func(w http.ResponseWriter, r *http.Request) {
		entries := ledger.Entries()

		limit := len(entries)
		if qs := r.URL.Query().Get("limit"); qs != "" {
			if v, err := strconv.Atoi(qs); err == nil && v > 0 && v < limit {
				limit = v
			}
		}
		// 只展示最近的 limit 条，追加顺序即提交顺序。
		entries = entries[len(entries)-limit:]

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.Warn("写入待确认订单响应失败", zap.Error(err))
		}
	})

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("关闭状态接口失败", zap.Error(err))
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("状态接口异常", zap.Error(err))
		}
	}()

	logger.Info("状态接口已启动", zap.String("addr", addr))
	return nil
}
