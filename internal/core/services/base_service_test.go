package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock Store ---
type MockStore struct {
	mock.Mock
}

var _ portsrepo.Store = (*MockStore)(nil)

func (m *MockStore) Begin(ctx context.Context) (portsrepo.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.UnitOfWork), args.Error(1)
}

func (m *MockStore) Accounts() portsrepo.AccountRepositoryFacade {
	return m.Called().Get(0).(portsrepo.AccountRepositoryFacade)
}

func (m *MockStore) Journals() portsrepo.JournalRepositoryFacade {
	return m.Called().Get(0).(portsrepo.JournalRepositoryFacade)
}

func (m *MockStore) Invoices() portsrepo.InvoiceRepositoryFacade {
	return m.Called().Get(0).(portsrepo.InvoiceRepositoryFacade)
}

func (m *MockStore) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return m.Called().Get(0).(portsrepo.ReconciliationRepositoryFacade)
}

func (m *MockStore) Settings() portsrepo.SettingsRepositoryFacade {
	return m.Called().Get(0).(portsrepo.SettingsRepositoryFacade)
}

func TestCreateJournalFailsWhenTransactionCannotBegin(t *testing.T) {
	store := new(MockStore)
	store.On("Begin", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	svc := services.NewJournalService(store, nil)
	_, err := svc.CreateJournal(context.Background(), domain.JournalEntry{Status: domain.StatusDraft}, "user-1")

	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.ErrorContains(t, err, "connection refused")
	store.AssertExpectations(t)
}
