package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vanta-trade/internal/config"
	"vanta-trade/internal/store"
)

// storageKey 为持久化会话记录的固定命名空间，整条记录单键覆盖写，
// 不做字段级更新，避免读写撕裂。
const storageKey = "vanta_auth"

// Store 管理会话生命周期：登录、注册、登出与启动时的恢复。
// 同一时刻最多只有一个活跃会话；登录/注册在途期间 IsLoading 为 true，
// 但 Store 本身不做互斥，多次并发调用以最后写入者为准。
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	current *Session
	loading bool
	lastErr string
}

// NewStore 初始化会话存储并建表。启用 dev_user 时写入固定用户并直接激活，
// 该行为仅用于本地开发。
func NewStore(st *store.Store, cfg config.SessionConfig, logger *zap.Logger) (*Store, error) {
	if st == nil {
		return nil, errors.New("session: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		db:     st.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	if cfg.DevUser.Enabled {
		dev := Session{
			ID:       cfg.DevUser.ID,
			Username: cfg.DevUser.Username,
			Email:    cfg.DevUser.Email,
		}
		if dev.ID == "" {
			dev.ID = "user-" + cfg.DevUser.Username
		}
		if err := s.persist(context.Background(), dev); err != nil {
			return nil, err
		}
		s.current = &dev
		logger.Warn("已启用开发用固定会话", zap.String("user", describe(dev)))
	}

	return s, nil
}

func (s *Store) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS session_record (
	storage_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("session: 初始化表失败: %w", err)
	}
	return nil
}

// Restore 读取持久化会话并激活。记录缺失或损坏时保持未认证状态，
// 不返回错误。设计上由调用方在启动时以后台方式调用，期间 IsLoading 为 true。
func (s *Store) Restore(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	record, err := s.readPersisted(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotAuthenticated) {
			s.logger.Warn("恢复会话失败，按未登录处理", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.current = &record
	s.mu.Unlock()

	s.logger.Info("会话已恢复", zap.String("user", describe(record)))
}

// Login 校验凭证并建立新会话。当前实现为本地模拟发号（与后端认证接口
// 对接前的过渡形态）：标识符本地生成，但持久化成功先于内存状态生效，
// 保证成功返回后立刻崩溃也能在下次启动恢复。
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if err := validateLogin(creds); err != nil {
		s.setError(err.Error())
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	sess := Session{
		ID:       uuid.NewString(),
		Username: creds.Username,
	}

	if err := s.activate(ctx, sess); err != nil {
		s.setError("Login failed")
		return err
	}

	s.logger.Info("登录成功", zap.String("user", describe(sess)))
	return nil
}

// Register 与 Login 契约一致，额外校验密码长度。
// 两次密码是否一致由调用方界面负责，这里不重复检查。
func (s *Store) Register(ctx context.Context, creds Credentials) error {
	if err := validateRegister(creds); err != nil {
		s.setError(err.Error())
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	sess := Session{
		ID:       uuid.NewString(),
		Username: creds.Username,
		Email:    creds.Email,
	}

	if err := s.activate(ctx, sess); err != nil {
		s.setError("Registration failed")
		return err
	}

	s.logger.Info("注册成功", zap.String("user", describe(sess)))
	return nil
}

// activate 先落盘再更新内存，失败时保留原会话不变。
func (s *Store) activate(ctx context.Context, sess Session) error {
	if err := s.persist(ctx, sess); err != nil {
		s.logger.Error("持久化会话失败", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.current = &sess
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// Logout 清除持久化记录与内存会话，重复调用无副作用。
func (s *Store) Logout(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_record WHERE storage_key = ?`, storageKey,
	); err != nil {
		return fmt.Errorf("session: 删除持久化记录失败: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.lastErr = ""
	s.mu.Unlock()

	s.logger.Info("已登出")
	return nil
}

// ClearError 清除上一次操作遗留的错误信息，无其他副作用。
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Current 返回当前活跃会话。第二个返回值为 false 表示未认证。
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// IsLoading 报告是否有登录/注册/恢复操作在途。
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err 返回最近一次失败的用户可读信息，空串表示无错误。
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// PersistedUserID 每次都从持久化存储读取用户标识，供提交客户端在发起
// 请求时取认证头。不走内存缓存，保证构造与发起之间发生的登出/登录被尊重。
func (s *Store) PersistedUserID(ctx context.Context) (string, error) {
	record, err := s.readPersisted(ctx)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Store) persist(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: 序列化会话失败: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_record (storage_key, payload, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		storageKey, string(payload),
	)
	if err != nil {
		return fmt.Errorf("session: 写入持久化记录失败: %w", err)
	}
	return nil
}

func (s *Store) readPersisted(ctx context.Context) (Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM session_record WHERE storage_key = ?`, storageKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotAuthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: 读取持久化记录失败: %w", err)
	}

	var record Session
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return Session{}, fmt.Errorf("session: 持久化记录损坏: %w", err)
	}
	if !record.Valid() {
		return Session{}, fmt.Errorf("session: 持久化记录不完整")
	}
	return record, nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
