// internal/api/types/response.go
package types

import (
	"encoding/json"

	"monetrax-ledger/internal/domain"
)

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// SnapshotResponse is the render model of the current ledger.
type SnapshotResponse struct {
	UserID       string               `json:"userId"`
	Active       bool                 `json:"active"`
	NetTotal     json.Number          `json:"netTotal"`
	Display      string               `json:"display"` // e.g. "$1,950.00"
	Transactions []domain.Transaction `json:"transactions"`
}

// NewSnapshotResponse builds the render model of ledger.
func NewSnapshotResponse(userID domain.UserIdentity, active bool, ledger domain.Ledger, currency string) SnapshotResponse {
	txs := ledger.Transactions
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return SnapshotResponse{
		UserID:       userID.String(),
		Active:       active,
		NetTotal:     json.Number(ledger.NetTotal.StringFixed(2)),
		Display:      domain.FormatMoney(ledger.NetTotal, currency),
		Transactions: txs,
	}
}

// Page slices items for a paginated response. Out of range offsets yield an
// empty page.
func Page[T any](items []T, limit, offset int) PaginatedResponse[T] {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	data := make([]T, end-offset)
	copy(data, items[offset:end])
	return PaginatedResponse[T]{
		Data:       data,
		Limit:      limit,
		Offset:     offset,
		TotalCount: int64(total),
	}
}
