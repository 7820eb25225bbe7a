package alerting

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"mempool-whale-alerts/internal/mempool"
)

const sampleTxID = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

func TestFormatAlertBlocks(t *testing.T) {
	txs := []mempool.Transaction{
		{ID: sampleTxID, Fee: 60000, Size: 250},
		{ID: "f" + sampleTxID[1:], Fee: 1234567, Size: 1000},
	}

	msg := FormatAlert(txs)

	if !strings.HasPrefix(msg, "🐋 *Large Bitcoin Transaction Alert* 🚨\n\n") {
		t.Fatalf("header missing: %q", msg)
	}
	if got := strings.Count(msg, "*Transaction #"); got != len(txs) {
		t.Fatalf("expected %d blocks, got %d", len(txs), got)
	}
	for _, want := range []string{
		"*Transaction #1*",
		"*Transaction #2*",
		"💰 Fee: 60,000 sat",
		"💰 Fee: 1,234,567 sat",
		"📦 Size: 250 bytes",
		"⚖️ Fee rate: 240.0 sat/B",
		"⚖️ Fee rate: 1234.6 sat/B",
		"`" + sampleTxID[:20] + "...`",
		"`f" + sampleTxID[1:20] + "...`",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if got := strings.Count(msg, divider); got != len(txs) {
		t.Fatalf("expected %d dividers, got %d", len(txs), got)
	}
	if strings.Contains(msg, sampleTxID[:21]) {
		t.Fatal("identifier should be cut at 20 characters")
	}
}

func TestFormatAlertIsPure(t *testing.T) {
	txs := []mempool.Transaction{{ID: sampleTxID, Fee: 99999, Size: 400}}
	if FormatAlert(txs) != FormatAlert(txs) {
		t.Fatal("same input should render identically")
	}
	if txs[0].ID != sampleTxID {
		t.Fatal("input mutated")
	}
}

func TestFormatAlertShortIDAndZeroSize(t *testing.T) {
	msg := FormatAlert([]mempool.Transaction{{ID: "abc", Fee: 70000, Size: 0}})
	if !strings.Contains(msg, "`abc...`") {
		t.Fatalf("short id should be kept whole: %q", msg)
	}
	if strings.Contains(msg, "Fee rate") {
		t.Fatalf("fee rate needs a non-zero size: %q", msg)
	}
}

func TestFormatAlertTruncatesByCharacter(t *testing.T) {
	id := "a" + strings.Repeat("é", 22)
	msg := FormatAlert([]mempool.Transaction{{ID: id, Fee: 60000, Size: 100}})

	if !utf8.ValidString(msg) {
		t.Fatalf("message is not valid UTF-8: %q", msg)
	}
	want := "`a" + strings.Repeat("é", 19) + "...`"
	if !strings.Contains(msg, want) {
		t.Fatalf("expected %q in %q", want, msg)
	}
}

func TestFormatAlertLargeValues(t *testing.T) {
	msg := FormatAlert([]mempool.Transaction{{ID: sampleTxID, Fee: math.MaxUint64, Size: 1}})

	if !strings.Contains(msg, "💰 Fee: 18,446,744,073,709,551,615 sat") {
		t.Fatalf("fee should not wrap: %q", msg)
	}
	if !strings.Contains(msg, "⚖️ Fee rate: 18446744073709551615.0 sat/B") {
		t.Fatalf("fee rate should not wrap: %q", msg)
	}
}
