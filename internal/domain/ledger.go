// internal/domain/ledger.go
package domain

import (
	"github.com/shopspring/decimal"
)

const (
	// DefaultRetentionCap bounds the retained transaction window.
	DefaultRetentionCap = 100
	// CompactRetentionCap is the short "recent activity" window.
	CompactRetentionCap = 10
	// DefaultImportLimit bounds how many imported transactions are kept.
	DefaultImportLimit = 200
)

// Ledger is the per-user aggregate: a capped window of the most recent
// transactions (newest first) and the net total over the whole history.
//
// NetTotal is not derived from Transactions. Once more than the retention cap
// have been applied the window no longer sums to the total.
type Ledger struct {
	Transactions []Transaction   `json:"transactions"`
	NetTotal     decimal.Decimal `json:"netTotal"`
}

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return Ledger{Transactions: []Transaction{}, NetTotal: decimal.Zero}
}

// Apply returns a new ledger with tx prepended, the total adjusted by the
// signed amount and the window trimmed to limit entries.
func (l Ledger) Apply(tx Transaction, limit int) Ledger {
	txs := make([]Transaction, 0, len(l.Transactions)+1)
	txs = append(txs, tx)
	txs = append(txs, l.Transactions...)
	return Ledger{
		Transactions: truncate(txs, limit),
		NetTotal:     l.NetTotal.Add(tx.Signed()),
	}
}

// Overwrite builds the ledger that destructively replaces the current one
// with txs. The window is cut to limit entries. The total is declared when
// given, otherwise it is the sum of the retained window.
func Overwrite(txs []Transaction, declared *decimal.Decimal, limit int) Ledger {
	window := truncate(append([]Transaction(nil), txs...), limit)
	total := Sum(window)
	if declared != nil {
		total = *declared
	}
	return Ledger{Transactions: window, NetTotal: total}
}

// Sum returns the signed sum of txs.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}

// Clone returns a deep copy safe to hand to renderers.
func (l Ledger) Clone() Ledger {
	txs := make([]Transaction, len(l.Transactions))
	copy(txs, l.Transactions)
	return Ledger{Transactions: txs, NetTotal: l.NetTotal}
}

// Len is the size of the retained window.
func (l Ledger) Len() int { return len(l.Transactions) }

func truncate(txs []Transaction, limit int) []Transaction {
	if limit > 0 && len(txs) > limit {
		return txs[:limit]
	}
	if txs == nil {
		return []Transaction{}
	}
	return txs
}
