// internal/service/ledger_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/identity"
	"monetrax-ledger/internal/repository"
	"monetrax-ledger/internal/util"
)

const invalidInputMessage = "Please select a category and enter a valid positive amount."

// LedgerService defines the ledger state engine used by the presentation surfaces.
type LedgerService interface {
	// SignIn resolves the local identity, loads its ledger and activates the session.
	SignIn(ctx context.Context) (domain.UserIdentity, domain.Ledger)
	// SignOut flushes and clears the in-memory ledger. The durable copy is kept.
	SignOut(ctx context.Context)
	// Load reads the persisted ledger of userID; missing or corrupt data yields an empty ledger.
	Load(ctx context.Context, userID domain.UserIdentity) domain.Ledger
	AddTransaction(ctx context.Context, category, amountText string, txType domain.TransactionType) (*domain.Transaction, error)
	Snapshot() domain.Ledger
	// Session returns the current identity and whether a session is active.
	Session() (domain.UserIdentity, bool)
	Reset()
	Flush(ctx context.Context) error
	FlushIfDirty(ctx context.Context) error
	Export(ctx context.Context) (*Document, error)
	Import(ctx context.Context, raw []byte) (domain.Ledger, error)
	// OverwriteLedger destructively replaces the session ledger. It never merges.
	OverwriteLedger(ctx context.Context, ledger domain.Ledger) error
}

// Options tunes the retention bounds of the engine.
type Options struct {
	RetentionCap int
	ImportLimit  int
}

func (o Options) withDefaults() Options {
	if o.RetentionCap <= 0 {
		o.RetentionCap = domain.DefaultRetentionCap
	}
	if o.ImportLimit <= 0 {
		o.ImportLimit = domain.DefaultImportLimit
	}
	return o
}

// session is the working copy owned by the engine.
type session struct {
	userID domain.UserIdentity
	ledger domain.Ledger
	active bool
	dirty  bool // changes not yet durably saved
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	store    *repository.LedgerStore
	identity identity.Provider
	logger   *zap.Logger
	opts     Options

	mu      sync.Mutex // serializes every mutation
	session session
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	store *repository.LedgerStore,
	identityProvider identity.Provider,
	logger *zap.Logger,
	opts Options,
) LedgerService {
	return &ledgerService{
		store:    store,
		identity: identityProvider,
		logger:   logger,
		opts:     opts.withDefaults(),
		session:  session{ledger: domain.NewLedger()},
	}
}

func (s *ledgerService) SignIn(ctx context.Context) (domain.UserIdentity, domain.Ledger) {
	userID := s.identity.GetOrCreateUserID(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.active && s.session.userID == userID {
		return userID, s.session.ledger.Clone()
	}

	ledger := s.Load(ctx, userID)
	s.session = session{userID: userID, ledger: ledger, active: true}
	s.logger.Info("session started",
		zap.String("user_id", userID.String()),
		zap.Int("transactions", ledger.Len()))
	return userID, ledger.Clone()
}

func (s *ledgerService) SignOut(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.active {
		return
	}
	_ = s.persistLocked(ctx)

	s.logger.Info("session ended", zap.String("user_id", s.session.userID.String()))
	s.session = session{userID: s.session.userID, ledger: domain.NewLedger()}
}

// Load collapses every load failure into an empty ledger. Corruption and
// storage errors are logged, never returned.
func (s *ledgerService) Load(ctx context.Context, userID domain.UserIdentity) domain.Ledger {
	ledger, err := s.loadLedger(ctx, userID)
	if err != nil {
		s.logger.Warn("starting from an empty ledger",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return domain.NewLedger()
	}
	return ledger
}

// loadLedger is the fallible read. It fails with util.ErrCorrupted when a
// persisted field cannot be decoded and util.ErrStorageUnavailable when the
// medium cannot be read.
func (s *ledgerService) loadLedger(ctx context.Context, userID domain.UserIdentity) (domain.Ledger, error) {
	txText, txFound, err := s.store.Load(ctx, userID, repository.FieldTransactions)
	if err != nil {
		return domain.Ledger{}, err
	}
	totalText, totalFound, err := s.store.Load(ctx, userID, repository.FieldNetTotal)
	if err != nil {
		return domain.Ledger{}, err
	}

	ledger := domain.NewLedger()
	if txFound && strings.TrimSpace(txText) != "" {
		var txs []domain.Transaction
		if err := json.Unmarshal([]byte(txText), &txs); err != nil {
			return domain.Ledger{}, errors.Wrapf(util.ErrCorrupted, "decode transactions: %v", err)
		}
		for i, tx := range txs {
			if !tx.Valid() {
				return domain.Ledger{}, errors.Wrapf(util.ErrCorrupted, "transaction %d violates invariants", i)
			}
		}
		if txs != nil {
			ledger.Transactions = txs
		}
	}

	switch {
	case totalFound && strings.TrimSpace(totalText) != "":
		total, err := decimal.NewFromString(strings.TrimSpace(totalText))
		if err != nil {
			return domain.Ledger{}, errors.Wrapf(util.ErrCorrupted, "decode net total: %v", err)
		}
		ledger.NetTotal = total
	default:
		// no saved total: the window is the best remaining information
		ledger.NetTotal = domain.Sum(ledger.Transactions)
	}

	return ledger, nil
}

func (s *ledgerService) AddTransaction(ctx context.Context, category, amountText string, txType domain.TransactionType) (*domain.Transaction, error) {
	category = strings.TrimSpace(category)
	amount, ok := parseAmount(amountText)
	if category == "" || !ok {
		return nil, util.NewValidationError(invalidInputMessage)
	}
	if !txType.Valid() {
		return nil, util.NewValidationError("Unknown transaction type.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.active {
		return nil, util.ErrNoSession
	}

	tx := domain.NewTransaction(category, amount, txType)
	s.session.ledger = s.session.ledger.Apply(*tx, s.opts.RetentionCap)
	s.session.dirty = true

	// Storage failures are absorbed; the periodic flush retries.
	_ = s.persistLocked(ctx)
	return tx, nil
}

func (s *ledgerService) Snapshot() domain.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ledger.Clone()
}

func (s *ledgerService) Session() (domain.UserIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.userID, s.session.active
}

// Reset drops the in-memory ledger and ends the session without saving, so
// no later flush can write the cleared state over the durable copy.
func (s *ledgerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session{userID: s.session.userID, ledger: domain.NewLedger()}
}

func (s *ledgerService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.active {
		return nil
	}
	return s.persistLocked(ctx)
}

func (s *ledgerService) FlushIfDirty(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.active || !s.session.dirty {
		return nil
	}
	return s.persistLocked(ctx)
}

func (s *ledgerService) Export(ctx context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.active {
		return nil, util.ErrNoSession
	}
	doc := ExportLedger(s.session.userID, s.session.ledger.Clone())
	return &doc, nil
}

func (s *ledgerService) Import(ctx context.Context, raw []byte) (domain.Ledger, error) {
	if _, active := s.Session(); !active {
		return domain.Ledger{}, util.ErrNoSession
	}

	ledger, err := ImportLedger(raw, s.opts.ImportLimit)
	if err != nil {
		return domain.Ledger{}, err
	}
	if err := s.OverwriteLedger(ctx, ledger); err != nil {
		return domain.Ledger{}, err
	}
	return ledger.Clone(), nil
}

func (s *ledgerService) OverwriteLedger(ctx context.Context, ledger domain.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.active {
		return util.ErrNoSession
	}

	s.logger.Info("overwriting ledger",
		zap.String("user_id", s.session.userID.String()),
		zap.Int("previous_transactions", s.session.ledger.Len()),
		zap.Int("imported_transactions", ledger.Len()))

	s.session.ledger = ledger.Clone()
	s.session.dirty = true
	_ = s.persistLocked(ctx)
	return nil
}

// persistLocked saves the full ledger. Callers hold s.mu.
func (s *ledgerService) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(s.session.ledger.Transactions)
	if err != nil {
		return errors.Wrap(err, "encode transactions")
	}

	err = s.store.SaveFields(ctx, s.session.userID, map[string]string{
		repository.FieldTransactions: string(payload),
		repository.FieldNetTotal:     s.session.ledger.NetTotal.String(),
	})
	if err != nil {
		s.logger.Warn("ledger kept in memory only",
			zap.String("user_id", s.session.userID.String()),
			zap.Error(err))
		return err
	}
	s.session.dirty = false
	return nil
}

// parseAmount accepts a finite decimal strictly greater than zero.
func parseAmount(text string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}
