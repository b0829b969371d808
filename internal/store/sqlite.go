package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"vanta-trade/internal/config"
)

// Store 封装 SQLite 连接，会话与本地状态共用同一个库。
type Store struct {
	db *sql.DB
}

// NewSQLite 根据配置初始化 SQLite 存储。文件模式下启用 WAL，
// 内存模式用于测试，跳过目录创建与 WAL 设置。
func NewSQLite(cfg config.DatabaseConfig) (*Store, error) {
	conn, err := sql.Open("sqlite3", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if !cfg.InMemory {
		if err := applyFilePragmas(conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return &Store{db: conn}, nil
}

// DB 返回底层 *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildDSN(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")

	if cfg.InMemory {
		return ":memory:?" + params.Encode()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		// 失败留给 sql.Open 之后的首次访问暴露。
		_ = os.MkdirAll(dir, 0o755)
	}
	return cfg.Path + "?" + params.Encode()
}

func applyFilePragmas(conn *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("设置 SQLite 参数 %q 失败: %w", pragma, err)
		}
	}
	return nil
}
