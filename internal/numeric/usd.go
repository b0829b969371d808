package numeric

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// USDDecimals 为美元金额的定点小数位数，管线内始终以 *big.Int 保存最小单位。
	USDDecimals = 6

	// LeverageBasis 为杠杆的内部缩放因子，出口处再换算成十进制倍率。
	LeverageBasis = 10_000
)

var usdScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(USDDecimals), nil)

// USD 表示一个定点美元金额（最小单位 * 10^USDDecimals）。
// 零值等价于金额 0，管线内不允许出现浮点表示。
type USD struct {
	mantissa *big.Int
}

// NewUSD 从最小单位整数构造金额，输入会被拷贝。
func NewUSD(mantissa *big.Int) USD {
	if mantissa == nil {
		return USD{}
	}
	return USD{mantissa: new(big.Int).Set(mantissa)}
}

// USDFromInt64 以最小单位构造金额，主要用于测试。
func USDFromInt64(v int64) USD {
	return USD{mantissa: big.NewInt(v)}
}

// IsZero 判断金额是否为零（含未初始化的零值）。
func (u USD) IsZero() bool {
	return u.mantissa == nil || u.mantissa.Sign() == 0
}

// IsNegative 判断金额是否为负。
func (u USD) IsNegative() bool {
	return u.mantissa != nil && u.mantissa.Sign() < 0
}

// Mantissa 返回最小单位整数的拷贝，零值返回 0。
func (u USD) Mantissa() *big.Int {
	if u.mantissa == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(u.mantissa)
}

// Add 返回两个金额之和。
func (u USD) Add(other USD) USD {
	result := u.Mantissa()
	result.Add(result, other.Mantissa())
	return USD{mantissa: result}
}

// Cmp 比较两个金额，语义与 big.Int.Cmp 一致。
func (u USD) Cmp(other USD) int {
	return u.Mantissa().Cmp(other.Mantissa())
}

// String 实现 fmt.Stringer，输出与 FormatUSD 一致。
func (u USD) String() string {
	return FormatUSD(u)
}

// FormatUSD 是全管线共享的金额格式化入口：输出形如 "100.00" 的十进制字符串，
// 保留两位小数，零金额输出 "0.00" 而不是空串或缺省字段。
func FormatUSD(u USD) string {
	mantissa := u.Mantissa()

	sign := ""
	if mantissa.Sign() < 0 {
		sign = "-"
		mantissa.Neg(mantissa)
	}

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(mantissa, usdScale, frac)

	// 两位显示小数：按 10^(USDDecimals-2) 截断而不四舍五入，
	// 保证同一输入重复编码得到逐字节一致的结果。
	displayScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(USDDecimals-2), nil)
	cents := new(big.Int).Quo(frac, displayScale)

	return fmt.Sprintf("%s%s.%02d", sign, whole.String(), cents.Int64())
}

// ParseUSD 将十进制字符串还原为定点金额，供测试与回读接口使用。
func ParseUSD(s string) (USD, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return USD{}, fmt.Errorf("numeric: 金额字符串为空")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	wholePart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		wholePart = s[:idx]
		fracPart = s[idx+1:]
	}
	if wholePart == "" {
		wholePart = "0"
	}
	if len(fracPart) > USDDecimals {
		return USD{}, fmt.Errorf("numeric: 小数位超过 %d 位: %q", USDDecimals, s)
	}
	fracPart += strings.Repeat("0", USDDecimals-len(fracPart))

	mantissa, ok := new(big.Int).SetString(wholePart+fracPart, 10)
	if !ok {
		return USD{}, fmt.Errorf("numeric: 非法金额字符串 %q", s)
	}
	if negative {
		mantissa.Neg(mantissa)
	}
	return USD{mantissa: mantissa}, nil
}

// LeverageRatio 将内部以 LeverageBasis 缩放的杠杆换算为十进制倍率。
// 这是定点值离开管线、进入后端报文前唯一允许的浮点转换。
func LeverageRatio(scaled int64) float64 {
	return float64(scaled) / float64(LeverageBasis)
}
