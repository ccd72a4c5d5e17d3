// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"monetrax-ledger/internal/api/types"
	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/service"
	"monetrax-ledger/internal/util" // For custom errors
)

// DefaultTimeout bounds the handling of a single request.
const DefaultTimeout = 30 * time.Second

// maxImportBytes caps the size of an uploaded export document.
const maxImportBytes = 1 << 20

const defaultPageLimit = 10

// LedgerHandler handles HTTP requests related to the ledger session.
type LedgerHandler struct {
	service  service.LedgerService
	currency string
	logger   *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler. currency is the ISO code used
// for the formatted total.
func NewLedgerHandler(svc service.LedgerService, currency string, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		service:  svc,
		currency: currency,
		logger:   logger,
	}
}

// Helper function to send JSON responses.
func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError

	switch {
	case util.IsError(err, util.ErrValidation), util.IsError(err, util.ErrInvalidFormat):
		statusCode = http.StatusBadRequest
	case util.IsError(err, util.ErrNoSession):
		statusCode = http.StatusConflict
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": util.UserMessage(err)})
}

func (h *LedgerHandler) snapshot() types.SnapshotResponse {
	userID, active := h.service.Session()
	return types.NewSnapshotResponse(userID, active, h.service.Snapshot(), h.currency)
}

// TransactionRequest represents the request body for income and expense.
// Amount is taken as text, quoted or not, and validated by the engine.
type TransactionRequest struct {
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
}

func (req TransactionRequest) amountText() string {
	var s string
	if err := json.Unmarshal(req.Amount, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(req.Amount))
}

// GetSnapshot returns the current ledger.
// GET /ledger
func (h *LedgerHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.snapshot())
}

// ListTransactions pages through the retained window, newest first.
// GET /ledger/transactions?limit=&offset=
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	h.respondWithJSON(w, http.StatusOK, types.Page(h.service.Snapshot().Transactions, limit, offset))
}

// AddIncome records an income entry.
// POST /ledger/income
func (h *LedgerHandler) AddIncome(w http.ResponseWriter, r *http.Request) {
	h.addTransaction(w, r, domain.TransactionTypeIncome)
}

// AddExpense records an expense entry.
// POST /ledger/expense
func (h *LedgerHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	h.addTransaction(w, r, domain.TransactionTypeExpense)
}

func (h *LedgerHandler) addTransaction(w http.ResponseWriter, r *http.Request, txType domain.TransactionType) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.NewValidationError("Invalid request body."))
		return
	}

	tx, err := h.service.AddTransaction(r.Context(), req.Category, req.amountText(), txType)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": tx,
		"ledger":      h.snapshot(),
	})
}

// SignIn starts (or resumes) the session of the local identity.
// POST /session/signin
func (h *LedgerHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.service.SignIn(r.Context())
	h.respondWithJSON(w, http.StatusOK, h.snapshot())
}

// SignOut ends the session. The durable ledger is kept.
// POST /session/signout
func (h *LedgerHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(r.Context())
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Export downloads the export document.
// GET /ledger/export
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Export(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	payload, err := doc.Encode()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Import replaces the ledger with an uploaded export document.
// POST /ledger/import
func (h *LedgerHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.respondWithError(w, util.NewValidationError("Import document is too large or unreadable."))
		return
	}

	if _, err := h.service.Import(r.Context(), raw); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, h.snapshot())
}
