// internal/domain/transaction.go
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a ledger entry.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known variants.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction represents one recorded movement of money.
type Transaction struct {
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"` // Always positive, the sign comes from Type
	Type      TransactionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransaction creates a new Transaction stamped with the current time.
func NewTransaction(category string, amount decimal.Decimal, txType TransactionType) *Transaction {
	return &Transaction{
		Category:  category,
		Amount:    amount,
		Type:      txType,
		Timestamp: time.Now().UTC(),
	}
}

// Signed returns the amount as it contributes to the net total.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Valid reports whether t satisfies the transaction invariants.
func (t Transaction) Valid() bool {
	return strings.TrimSpace(t.Category) != "" && t.Amount.IsPositive() && t.Type.Valid()
}

// wireTransaction is the persisted and exported shape: amount is a JSON number.
type wireTransaction struct {
	Category  string          `json:"category"`
	Amount    json.Number     `json:"amount"`
	Type      TransactionType `json:"type"`
	Timestamp string          `json:"timestamp"`
}

// MarshalJSON writes amount as a JSON number rather than a quoted decimal.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTransaction{
		Category:  t.Category,
		Amount:    json.Number(t.Amount.String()),
		Type:      t.Type,
		Timestamp: t.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON accepts amount as either a JSON number or a numeric string.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		Type      TransactionType `json:"type"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var ts time.Time
	if raw.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
		if err != nil {
			return err
		}
		ts = parsed.UTC()
	}

	*t = Transaction{
		Category:  raw.Category,
		Amount:    raw.Amount,
		Type:      raw.Type,
		Timestamp: ts,
	}
	return nil
}
