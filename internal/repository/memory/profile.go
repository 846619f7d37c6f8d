package memory

import (
	"context"
	"time"

	"tweetledger/internal/model"
)

type profileRepository struct{ s *Store }

func (r *profileRepository) SetIconURL(_ context.Context, account, url string, updatedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.profiles[account]
	p.Account = account
	p.IconURL = url
	if updatedAt != nil {
		p.UpdatedAt = clonePtr(updatedAt)
	}
	r.s.profiles[account] = p
	return nil
}

func (r *profileRepository) Get(_ context.Context, account string) (*model.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[account]
	if !ok {
		return &model.Profile{Account: account}, nil
	}
	p.UpdatedAt = clonePtr(p.UpdatedAt)
	return &p, nil
}

type schemaRepository struct{ s *Store }

func (r *schemaRepository) History(context.Context) ([]model.SchemaRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]model.SchemaRecord{}, r.s.versions...), nil
}

// Apply records the version. The in-memory layout already carries every
// column, so there is no DDL to run for steps.
func (r *schemaRepository) Apply(_ context.Context, rec model.SchemaRecord, _ []model.SchemaVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n := len(r.s.versions); n > 0 && r.s.versions[n-1].Version >= rec.Version {
		return model.ErrVersionInitialized
	}
	r.s.versions = append(r.s.versions, rec)
	return nil
}

type accountRepository struct{ s *Store }

func (r *accountRepository) Create(_ context.Context, a *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[a.Address]; ok {
		return model.ErrAccountExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.s.accounts[a.Address] = *a
	return nil
}

func (r *accountRepository) GetByAddress(_ context.Context, address string) (*model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[address]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &a, nil
}
