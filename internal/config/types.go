package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Console   ConsoleConfig   `mapstructure:"console"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// BackendConfig 描述交易后端的连接信息。
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	ChainID int64         `mapstructure:"chain_id"`
}

// SessionConfig 控制会话存储行为。DevUser 仅用于本地开发：
// 启用后启动时写入固定用户并自动登录，生产环境必须关闭。
type SessionConfig struct {
	DevUser DevUserConfig `mapstructure:"dev_user"`
}

// DevUserConfig 描述开发用固定用户。
type DevUserConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
}

// ExecutionConfig 控制下单行为。
type ExecutionConfig struct {
	SlippageBps       int    `mapstructure:"slippage_bps"`
	ReferralCode      string `mapstructure:"referral_code"`
	DisableValidation bool   `mapstructure:"disable_validation"`
}

// ConsoleConfig 控制本地状态接口。
type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Backend.BaseURL == "" {
		err = multierr.Append(err, errors.New("backend.base_url 不能为空"))
	} else if _, parseErr := url.Parse(c.Backend.BaseURL); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("backend.base_url 非法: %w", parseErr))
	}
	if c.Backend.Timeout <= 0 {
		err = multierr.Append(err, errors.New("backend.timeout 必须大于0"))
	}
	if c.Backend.ChainID <= 0 {
		err = multierr.Append(err, errors.New("backend.chain_id 必须大于0"))
	}
	if c.Session.DevUser.Enabled && c.Session.DevUser.Username == "" {
		err = multierr.Append(err, errors.New("session.dev_user.username 启用时不能为空"))
	}
	if c.Execution.SlippageBps < 0 || c.Execution.SlippageBps > 1000 {
		err = multierr.Append(err, errors.New("execution.slippage_bps 应位于[0,1000]"))
	}
	if c.Console.Enabled && (c.Console.Port <= 0 || c.Console.Port > 65535) {
		err = multierr.Append(err, errors.New("console.port 必须位于(0,65535]"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
