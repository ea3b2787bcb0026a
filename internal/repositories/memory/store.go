// Package memory is an in-process implementation of the ledger store. A unit of work
// holds the single writer lock for its lifetime and works on a private copy of the
// state that replaces the committed state on Commit.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

var errTxDone = errors.New("unit of work already finished")

type state struct {
	accounts        map[string]domain.Account
	journals        map[string]domain.JournalEntry // headers; Lines is always nil
	lines           map[string]domain.JournalLine
	invoices        map[string]domain.Invoice
	payments        map[string]domain.Payment
	reconciliations map[string]domain.BankReconciliation
	settings        map[string]domain.Setting
}

func newState() *state {
	return &state{
		accounts:        make(map[string]domain.Account),
		journals:        make(map[string]domain.JournalEntry),
		lines:           make(map[string]domain.JournalLine),
		invoices:        make(map[string]domain.Invoice),
		payments:        make(map[string]domain.Payment),
		reconciliations: make(map[string]domain.BankReconciliation),
		settings:        make(map[string]domain.Setting),
	}
}

// clone copies every map. Stored values are never mutated in place, so a shallow copy
// of each value is enough.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.journals {
		c.journals[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.reconciliations {
		c.reconciliations[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// access runs a function against some state under the right lock.
type access interface {
	read(ctx context.Context, fn func(*state) error) error
	write(ctx context.Context, fn func(*state) error) error
}

// Store is the committed state plus autocommit repositories.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.Store = (*Store)(nil)

func (s *Store) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Begin takes the writer lock; it is released by Commit or Rollback. Repositories of
// the Store itself must not be used by the goroutine holding an open unit of work.
func (s *Store) Begin(ctx context.Context) (portsrepo.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &unitOfWork{store: s, st: s.st.clone()}, nil
}

func (s *Store) Accounts() portsrepo.AccountRepositoryFacade { return &accountRepository{db: s} }
func (s *Store) Journals() portsrepo.JournalRepositoryFacade { return &journalRepository{db: s} }
func (s *Store) Invoices() portsrepo.InvoiceRepositoryFacade { return &invoiceRepository{db: s} }
func (s *Store) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return &reconciliationRepository{db: s}
}
func (s *Store) Settings() portsrepo.SettingsRepositoryFacade { return &settingsRepository{db: s} }

type unitOfWork struct {
	store *Store
	st    *state
	done  bool
}

var _ portsrepo.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) read(ctx context.Context, fn func(*state) error) error {
	if u.done {
		return errTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(u.st)
}

func (u *unitOfWork) write(ctx context.Context, fn func(*state) error) error {
	return u.read(ctx, fn)
}

// Commit publishes the private state. A cancelled context aborts instead.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return errTxDone
	}
	if err := ctx.Err(); err != nil {
		u.release()
		return err
	}
	u.store.st = u.st
	u.release()
	return nil
}

func (u *unitOfWork) Rollback(context.Context) error {
	if u.done {
		return nil
	}
	u.release()
	return nil
}

func (u *unitOfWork) release() {
	u.done = true
	u.st = nil
	u.store.mu.Unlock()
}

func (u *unitOfWork) Accounts() portsrepo.AccountRepositoryFacade { return &accountRepository{db: u} }
func (u *unitOfWork) Journals() portsrepo.JournalRepositoryFacade { return &journalRepository{db: u} }
func (u *unitOfWork) Invoices() portsrepo.InvoiceRepositoryFacade { return &invoiceRepository{db: u} }
func (u *unitOfWork) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return &reconciliationRepository{db: u}
}
func (u *unitOfWork) Settings() portsrepo.SettingsRepositoryFacade { return &settingsRepository{db: u} }
