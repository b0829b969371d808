package pending

import (
	"sync"
	"time"

	"vanta-trade/internal/order"
)

// Entry 记录一笔已提交、尚未确认的订单，用于界面侧的乐观展示。
type Entry struct {
	OrderID   string              `json:"orderId"`
	Type      order.WireOrderType `json:"type"`
	Market    string              `json:"market"`
	Timestamp time.Time           `json:"timestamp"`
}

// Ledger 是进程内、会话范围的待确认订单列表。核心管线只追加；
// 确认与移除由外部协作方在后端结算后处理，不在此实现。
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLedger 创建空账本。
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append 按提交顺序追加一条记录。不去重，不设容量上限。
func (l *Ledger) Append(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries 返回当前记录的快照拷贝。
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len 返回记录条数。
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
