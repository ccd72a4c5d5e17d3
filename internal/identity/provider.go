// internal/identity/provider.go
package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/repository"
)

// Provider hands out the stable per-installation user identifier.
type Provider interface {
	GetOrCreateUserID(ctx context.Context) domain.UserIdentity
}

type provider struct {
	store  *repository.LedgerStore
	logger *zap.Logger

	mu     sync.Mutex
	cached domain.UserIdentity
}

// NewProvider creates a Provider backed by the global userId key.
func NewProvider(store *repository.LedgerStore, logger *zap.Logger) Provider {
	return &provider{store: store, logger: logger}
}

// GetOrCreateUserID returns the persisted identifier, generating and saving
// one on first use. Storage failures never surface. When the stored value
// cannot be read, a process-local identifier is returned and nothing is
// written, so a transient failure never replaces the saved identity.
func (p *provider) GetOrCreateUserID(ctx context.Context) domain.UserIdentity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cached.IsZero() {
		return p.cached
	}

	stored, found, err := p.store.LoadGlobal(ctx, repository.GlobalUserID)
	if err != nil {
		p.cached = domain.NewUserIdentity()
		p.logger.Warn("failed to read user id, using a temporary one for this process",
			zap.String("user_id", p.cached.String()), zap.Error(err))
		return p.cached
	}
	if found && !domain.UserIdentity(stored).IsZero() {
		p.cached = domain.UserIdentity(stored)
		return p.cached
	}

	id := domain.NewUserIdentity()
	if err := p.store.SaveGlobal(ctx, repository.GlobalUserID, id.String()); err != nil {
		p.logger.Warn("failed to persist user id", zap.String("user_id", id.String()), zap.Error(err))
	} else {
		p.logger.Info("created user id", zap.String("user_id", id.String()))
	}
	p.cached = id
	return id
}
