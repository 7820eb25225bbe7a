package alerting

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"mempool-whale-alerts/internal/mempool"
)

const (
	idPrefixLen = 20
	divider     = "─────────────────"
)

// FormatAlert renders an alert batch as a Telegram Markdown message.
func FormatAlert(txs []mempool.Transaction) string {
	builder := strings.Builder{}
	builder.WriteString("🐋 *Large Bitcoin Transaction Alert* 🚨\n\n")
	for i, tx := range txs {
		builder.WriteString(fmt.Sprintf("*Transaction #%d*\n", i+1))
		builder.WriteString(fmt.Sprintf("💰 Fee: %s sat\n", humanize.BigComma(new(big.Int).SetUint64(tx.Fee))))
		builder.WriteString(fmt.Sprintf("📦 Size: %d bytes\n", tx.Size))
		if tx.Size > 0 {
			builder.WriteString(fmt.Sprintf("⚖️ Fee rate: %s sat/B\n", feeRate(tx).StringFixed(1)))
		}
		builder.WriteString(fmt.Sprintf("🆔 ID: `%s...`\n", truncateID(tx.ID)))
		builder.WriteString(divider + "\n")
	}
	return builder.String()
}

func feeRate(tx mempool.Transaction) decimal.Decimal {
	fee := decimal.NewFromBigInt(new(big.Int).SetUint64(tx.Fee), 0)
	size := decimal.NewFromBigInt(new(big.Int).SetUint64(tx.Size), 0)
	return fee.Div(size)
}

// truncateID keeps the first idPrefixLen characters, never splitting a rune.
func truncateID(id string) string {
	if utf8.RuneCountInString(id) <= idPrefixLen {
		return id
	}
	return string([]rune(id)[:idPrefixLen])
}
