package pending

import (
	"testing"
	"time"

	"vanta-trade/internal/order"
)

func TestLedgerAppendPreservesOrder(t *testing.T) {
	ledger := NewLedger()

	first := Entry{OrderID: "a1", Type: order.WireMarket, Market: "ETH/USD", Timestamp: time.Now().UTC()}
	second := Entry{OrderID: "b2", Type: order.WireLimit, Market: "BTC/USD", Timestamp: time.Now().UTC()}

	ledger.Append(first)
	ledger.Append(second)

	entries := ledger.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].OrderID != "a1" || entries[1].OrderID != "b2" {
		t.Errorf("append order not preserved: %v", entries)
	}
}

func TestLedgerEntriesReturnsCopy(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(Entry{OrderID: "a1"})

	snapshot := ledger.Entries()
	snapshot[0].OrderID = "mutated"

	if ledger.Entries()[0].OrderID != "a1" {
		t.Errorf("snapshot mutation leaked into ledger")
	}
}

func TestLedgerNoDeduplication(t *testing.T) {
	ledger := NewLedger()
	entry := Entry{OrderID: "dup"}
	ledger.Append(entry)
	ledger.Append(entry)

	if ledger.Len() != 2 {
		t.Errorf("expected duplicates to be kept, got %d entries", ledger.Len())
	}
}
