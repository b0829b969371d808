package backend

import (
	"errors"
	"fmt"
)

// TransportError 表示网络或 HTTP 层失败：后端不可达，或非 2xx 响应
// 且没有结构化错误体。对用户展示为可手动重试的瞬时故障。
type TransportError struct {
	Status string // HTTP 状态文本，连接失败时为空
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend: 请求失败: %v", e.Err)
	}
	return fmt.Sprintf("backend: 请求失败: %s", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message 返回面向用户的简短文案。
func (e *TransportError) Message() string {
	if e.Status != "" {
		return "API request failed: " + e.Status
	}
	return "API request failed"
}

// BackendError 表示后端返回的结构化业务失败：success:false 或带 error
// 字段的响应。Msg 原样来自后端，面向用户展示。
type BackendError struct {
	Msg string
}

func (e *BackendError) Error() string {
	return e.Msg
}

// IsTransport 判断错误是否为传输层失败。
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsBackend 判断错误是否为后端业务失败。
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
