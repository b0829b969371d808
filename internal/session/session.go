package session

import (
	"errors"
	"fmt"
)

// Session 表示一个已认证的本地会话。要么整体存在（ID 与用户名均非空），
// 要么完全不存在，不允许出现只填了一半的会话。
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Valid 判断会话记录是否完整。
func (s Session) Valid() bool {
	return s.ID != "" && s.Username != ""
}

// Credentials 为登录/注册输入。Email 仅注册时有意义。
type Credentials struct {
	Username string
	Password string
	Email    string
}

// ErrNotAuthenticated 表示需要认证的位置缺少有效会话。
// 调用方应引导用户登录，而不是当作系统故障展示。
var ErrNotAuthenticated = errors.New("session: 当前没有活跃会话")

// ValidationError 表示用户可自行修正的输入问题，Message 直接面向用户展示。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation 判断错误是否为输入校验失败。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateLogin(creds Credentials) error {
	if creds.Username == "" {
		return &ValidationError{Message: "Username is required"}
	}
	if creds.Password == "" {
		return &ValidationError{Message: "Password is required"}
	}
	return nil
}

func validateRegister(creds Credentials) error {
	if err := validateLogin(creds); err != nil {
		return err
	}
	if len(creds.Password) < 6 {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}
	return nil
}

func describe(s Session) string {
	return fmt.Sprintf("%s(%s)", s.Username, s.ID)
}
