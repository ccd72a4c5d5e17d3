// internal/service/exchange.go
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/util"
)

// Document is the portable export artifact.
type Document struct {
	UserID       domain.UserIdentity  `json:"userId"`
	NetTotal     json.Number          `json:"netTotal"`
	Transactions []domain.Transaction `json:"transactions"`
	ExportedAt   time.Time            `json:"exportedAt"`
}

// ExportLedger builds the export document of ledger. It performs no I/O.
func ExportLedger(userID domain.UserIdentity, ledger domain.Ledger) Document {
	txs := ledger.Transactions
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return Document{
		UserID:       userID,
		NetTotal:     json.Number(ledger.NetTotal.String()),
		Transactions: txs,
		ExportedAt:   time.Now().UTC(),
	}
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	payload, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode export document")
	}
	return payload, nil
}

// Filename suggests a download name for the document.
func (d Document) Filename() string {
	return fmt.Sprintf("monetrax-%s-%s.json", d.UserID, d.ExportedAt.Format("20060102"))
}

// ImportLedger decodes an export document into the ledger that will replace
// the current one. Only the first limit transactions are kept. The declared
// netTotal is trusted when it is a JSON number; otherwise the total is
// recomputed from the kept transactions, which loses any history beyond them.
func ImportLedger(raw []byte, limit int) (domain.Ledger, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return domain.Ledger{}, errors.Wrapf(util.ErrInvalidFormat, "document is not valid JSON: %v", err)
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return domain.Ledger{}, errors.Wrap(util.ErrInvalidFormat, "document must be a JSON object")
	}

	found, err := jsonpath.Get("$.transactions", doc)
	if err != nil {
		return domain.Ledger{}, errors.Wrap(util.ErrInvalidFormat, "document has no transactions")
	}
	items, ok := found.([]interface{})
	if !ok {
		return domain.Ledger{}, errors.Wrap(util.ErrInvalidFormat, "transactions must be an array")
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	txs := make([]domain.Transaction, 0, len(items))
	for i, item := range items {
		tx, err := decodeTransaction(item)
		if err != nil {
			return domain.Ledger{}, errors.Wrapf(util.ErrInvalidFormat, "transaction %d: %v", i, err)
		}
		txs = append(txs, tx)
	}

	return domain.Overwrite(txs, declaredTotal(doc), limit), nil
}

func decodeTransaction(item interface{}) (domain.Transaction, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return domain.Transaction{}, err
	}
	var tx domain.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return domain.Transaction{}, err
	}
	if !tx.Valid() {
		return domain.Transaction{}, errors.New("needs a category, a positive amount and type income or expense")
	}
	return tx, nil
}

func declaredTotal(doc interface{}) *decimal.Decimal {
	v, err := jsonpath.Get("$.netTotal", doc)
	if err != nil {
		return nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	total, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil
	}
	return &total
}
