package order

import (
	"errors"
	"fmt"
)

// ProgrammingError 表示内部不变式被破坏，例如映射表之外的订单类别
// 进入了编码器。它不该作为可恢复的用户错误展示，提交尝试应当中止
// 并记录到运维侧日志。
type ProgrammingError struct {
	Message string
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("order: 内部错误: %s", e.Message)
}

// IsProgramming 判断错误是否为内部不变式违例。
func IsProgramming(err error) bool {
	var pe *ProgrammingError
	return errors.As(err, &pe)
}
