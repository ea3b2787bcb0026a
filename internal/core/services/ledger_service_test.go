package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/repositories/cache"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const actor = "user-1"

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *memory.Store
	svc   *portssvc.ServiceContainer

	cash    *domain.Account
	bank    *domain.Account
	revenue *domain.Account
	expense *domain.Account
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	s.store = memory.NewStore()
	s.svc = services.NewContainer(s.store, cache.NewMemoryCache(), services.ContainerOptions{
		Clock: func() time.Time { return s.now },
	})

	s.cash = s.account("1000", "Cash", domain.Asset, "")
	s.bank = s.account("1010", "Bank", domain.Asset, domain.SubtypeBank)
	s.revenue = s.account("4000", "Sales", domain.Revenue, "")
	s.expense = s.account("5000", "Rent", domain.Expense, "")
}

func (s *LedgerServiceTestSuite) account(number, name string, t domain.AccountType, subtype string) *domain.Account {
	acc, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{
		AccountNumber: number,
		Name:          name,
		AccountType:   t,
		Subtype:       subtype,
	}, actor)
	s.Require().NoError(err)
	return acc
}

func (s *LedgerServiceTestSuite) balance(id string) decimal.Decimal {
	acc, err := s.svc.Account.GetAccount(s.ctx, id)
	s.Require().NoError(err)
	return acc.CurrentBalance
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func simpleEntry(status domain.JournalStatus, debitAcc, creditAcc string, debit, credit string) domain.JournalEntry {
	return domain.JournalEntry{
		Description: "test entry",
		Status:      status,
		Lines: []domain.JournalLine{
			{AccountID: debitAcc, DebitAmount: amt(debit)},
			{AccountID: creditAcc, CreditAmount: amt(credit)},
		},
	}
}

// --- Test Cases ---

func (s *LedgerServiceTestSuite) TestPostAndVoidApplyBalancesExactlyOnce() {
	draft, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "100", "100"), actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, draft.Status)
	s.True(s.balance(s.cash.AccountID).IsZero(), "drafts never touch balances")

	posted, err := s.svc.Journal.PostJournal(s.ctx, draft.JournalID, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, posted.Status)
	s.Require().NotNil(posted.PostedBy)
	s.Equal(actor, *posted.PostedBy)
	s.True(s.balance(s.cash.AccountID).Equal(amt("100")))
	s.True(s.balance(s.revenue.AccountID).Equal(amt("-100")))

	_, err = s.svc.Journal.PostJournal(s.ctx, draft.JournalID, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.True(s.balance(s.cash.AccountID).Equal(amt("100")), "a second post must not apply again")

	voided, err := s.svc.Journal.VoidJournal(s.ctx, draft.JournalID, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusVoid, voided.Status)
	s.True(s.balance(s.cash.AccountID).IsZero())
	s.True(s.balance(s.revenue.AccountID).IsZero())

	_, err = s.svc.Journal.VoidJournal(s.ctx, draft.JournalID, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.True(s.balance(s.cash.AccountID).IsZero())
}

func (s *LedgerServiceTestSuite) TestUnbalancedPostLeavesNoTrace() {
	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "100", "99.99"), actor)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	entries, _, err := s.svc.Journal.ListJournals(s.ctx, portsrepo.JournalFilter{}, 10, nil)
	s.Require().NoError(err)
	s.Empty(entries)
	s.True(s.balance(s.cash.AccountID).IsZero())

	// the failed attempt did not consume a number
	created, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "5", "5"), actor)
	s.Require().NoError(err)
	s.Equal("JE20250001", created.JournalNumber)
}

func (s *LedgerServiceTestSuite) TestDraftWithUnbalancedLinesCannotBePosted() {
	draft, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "10", "20"), actor)
	s.Require().NoError(err)

	_, err = s.svc.Journal.PostJournal(s.ctx, draft.JournalID, actor)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	got, err := s.svc.Journal.GetJournal(s.ctx, draft.JournalID)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
}

func (s *LedgerServiceTestSuite) TestJournalRoundTripKeepsLineOrder() {
	contact := "cust-9"
	entry := domain.JournalEntry{
		Description: "split",
		EntryDate:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Lines: []domain.JournalLine{
			{AccountID: s.cash.AccountID, DebitAmount: amt("60"), Description: "first"},
			{AccountID: s.bank.AccountID, DebitAmount: amt("40"), Description: "second", ContactID: &contact},
			{AccountID: s.revenue.AccountID, CreditAmount: amt("100"), Description: "third"},
		},
	}
	created, err := s.svc.Journal.CreateJournal(s.ctx, entry, actor)
	s.Require().NoError(err)

	got, err := s.svc.Journal.GetJournal(s.ctx, created.JournalID)
	s.Require().NoError(err)
	s.Require().Len(got.Lines, 3)
	for i, want := range []string{"first", "second", "third"} {
		s.Equal(want, got.Lines[i].Description)
		s.Equal(i+1, got.Lines[i].LineOrder)
	}
	s.Require().NotNil(got.Lines[1].ContactID)
	s.Equal(contact, *got.Lines[1].ContactID)
	s.True(got.Amount.Equal(amt("100")))
	s.Equal(domain.JournalGeneral, got.EntryType)
	s.Equal(domain.DefaultBaseCurrency, got.CurrencyID)
}

func (s *LedgerServiceTestSuite) TestForeignAmountsAreConverted() {
	foreign := amt("100")
	entry := domain.JournalEntry{
		CurrencyID:   "EUR",
		ExchangeRate: amt("3.5"),
		Status:       domain.StatusPosted,
		Lines: []domain.JournalLine{
			{AccountID: s.bank.AccountID, ForeignDebitAmount: &foreign},
			{AccountID: s.revenue.AccountID, ForeignCreditAmount: &foreign},
		},
	}
	created, err := s.svc.Journal.CreateJournal(s.ctx, entry, actor)
	s.Require().NoError(err)
	s.True(created.Lines[0].DebitAmount.Equal(amt("350.00")))
	s.True(created.Lines[1].CreditAmount.Equal(amt("350.00")))
	s.True(created.Amount.Equal(amt("350")))
	s.True(s.balance(s.bank.AccountID).Equal(amt("350")))
}

func (s *LedgerServiceTestSuite) TestNumbersAreSequentialPerYear() {
	var numbers, refs []string
	for i := 0; i < 3; i++ {
		created, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
		s.Require().NoError(err)
		numbers = append(numbers, created.JournalNumber)
		refs = append(refs, created.ReferenceNumber)
	}
	s.Equal([]string{"JE20250001", "JE20250002", "JE20250003"}, numbers)
	s.Equal([]string{"REF2025030001", "REF2025030002", "REF2025030003"}, refs)

	s.now = time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
	created, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)
	s.Equal("JE20260001", created.JournalNumber)
}

func (s *LedgerServiceTestSuite) TestListJournalsPagesNewestFirst() {
	for i := 0; i < 3; i++ {
		_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
		s.Require().NoError(err)
	}

	page, next, err := s.svc.Journal.ListJournals(s.ctx, portsrepo.JournalFilter{}, 2, nil)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("JE20250003", page[0].JournalNumber)
	s.Require().NotNil(next)

	page, next, err = s.svc.Journal.ListJournals(s.ctx, portsrepo.JournalFilter{}, 2, next)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("JE20250001", page[0].JournalNumber)
	s.Nil(next)

	bad := "not-a-token"
	_, _, err = s.svc.Journal.ListJournals(s.ctx, portsrepo.JournalFilter{}, 2, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestUpdatePostedJournalReappliesBalances() {
	posted, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "100", "100"), actor)
	s.Require().NoError(err)

	update := domain.JournalEntry{
		JournalID:   posted.JournalID,
		Description: "corrected",
		Lines: []domain.JournalLine{
			{AccountID: s.expense.AccountID, DebitAmount: amt("80")},
			{AccountID: s.cash.AccountID, CreditAmount: amt("80")},
		},
	}
	updated, err := s.svc.Journal.UpdateJournal(s.ctx, update, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, updated.Status)
	s.Equal(posted.JournalNumber, updated.JournalNumber)

	s.True(s.balance(s.cash.AccountID).Equal(amt("-80")))
	s.True(s.balance(s.revenue.AccountID).IsZero())
	s.True(s.balance(s.expense.AccountID).Equal(amt("80")))

	_, err = s.svc.Journal.UpdateJournal(s.ctx, domain.JournalEntry{JournalID: posted.JournalID, Status: domain.StatusDraft}, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.svc.Journal.UpdateJournal(s.ctx, domain.JournalEntry{JournalID: posted.JournalID, JournalNumber: "JE20259999"}, actor)
	s.ErrorIs(err, apperrors.ErrImmutableField)
}

func (s *LedgerServiceTestSuite) TestStatusOnlyUpdateKeepsHeader() {
	entry := simpleEntry(domain.StatusDraft, s.expense.AccountID, s.cash.AccountID, "40", "40")
	entry.Description = "rent march"
	draft, err := s.svc.Journal.CreateJournal(s.ctx, entry, actor)
	s.Require().NoError(err)

	posted, err := s.svc.Journal.UpdateJournal(s.ctx, domain.JournalEntry{JournalID: draft.JournalID, Status: domain.StatusPosted}, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, posted.Status)
	s.Equal("rent march", posted.Description)
	s.Equal(draft.ReferenceNumber, posted.ReferenceNumber)
	s.True(s.balance(s.expense.AccountID).Equal(amt("40")))

	got, err := s.svc.Journal.GetJournal(s.ctx, draft.JournalID)
	s.Require().NoError(err)
	s.Equal("rent march", got.Description)
	s.Len(got.Lines, 2)
}

func (s *LedgerServiceTestSuite) TestDeleteOnlyDrafts() {
	draft, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)
	posted, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Journal.DeleteJournal(s.ctx, draft.JournalID))
	_, err = s.svc.Journal.GetJournal(s.ctx, draft.JournalID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.ErrorIs(s.svc.Journal.DeleteJournal(s.ctx, posted.JournalID), apperrors.ErrInvalidState)
}

func (s *LedgerServiceTestSuite) TestInactiveAccountRejectsPosting() {
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, s.expense.AccountID, actor))

	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.expense.AccountID, s.cash.AccountID, "5", "5"), actor)
	s.ErrorIs(err, apperrors.ErrValidation)

	s.Require().NoError(s.svc.Account.ReactivateAccount(s.ctx, s.expense.AccountID, actor))
	_, err = s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.expense.AccountID, s.cash.AccountID, "5", "5"), actor)
	s.NoError(err)
}

func (s *LedgerServiceTestSuite) TestAccountTypeIsFrozenOnceUsed() {
	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)

	_, err = s.svc.Account.UpdateAccount(s.ctx, s.cash.AccountID, domain.AccountSpec{
		Name:        s.cash.Name,
		AccountType: domain.Expense,
	}, actor)
	s.ErrorIs(err, apperrors.ErrImmutableField)

	// an unused account may change type
	unused := s.account("1200", "Petty cash", domain.Asset, "")
	updated, err := s.svc.Account.UpdateAccount(s.ctx, unused.AccountID, domain.AccountSpec{
		Name:        unused.Name,
		AccountType: domain.Expense,
	}, actor)
	s.Require().NoError(err)
	s.Equal(domain.NormalDebit, updated.NormalBalance)
	s.Equal("1200", updated.AccountNumber)
}

func (s *LedgerServiceTestSuite) TestAccountNumbersAndUniqueness() {
	auto, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{Name: "Loan", AccountType: domain.Liability}, actor)
	s.Require().NoError(err)
	s.Equal("20001", auto.AccountNumber)
	s.Equal(domain.NormalCredit, auto.NormalBalance)

	_, err = s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{Name: "Cash", AccountType: domain.Asset}, actor)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	free, err := s.svc.Account.IsAccountNumberUnique(s.ctx, "1000", "")
	s.Require().NoError(err)
	s.False(free)
	free, err = s.svc.Account.IsAccountNumberUnique(s.ctx, "1000", s.cash.AccountID)
	s.Require().NoError(err)
	s.True(free)
	free, err = s.svc.Account.IsAccountNameUnique(s.ctx, "Travel", "")
	s.Require().NoError(err)
	s.True(free)
}

func (s *LedgerServiceTestSuite) TestHierarchyRejectsCycles() {
	parent := s.account("1500", "Fixed assets", domain.Asset, "")
	childParent := parent.AccountID
	child, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{
		AccountNumber:   "1510",
		Name:            "Vehicles",
		AccountType:     domain.Asset,
		ParentAccountID: &childParent,
	}, actor)
	s.Require().NoError(err)

	loop := child.AccountID
	_, err = s.svc.Account.UpdateAccount(s.ctx, parent.AccountID, domain.AccountSpec{
		Name:            parent.Name,
		AccountType:     domain.Asset,
		ParentAccountID: &loop,
	}, actor)
	s.ErrorIs(err, apperrors.ErrCycle)

	self := parent.AccountID
	_, err = s.svc.Account.UpdateAccount(s.ctx, parent.AccountID, domain.AccountSpec{
		Name:            parent.Name,
		AccountType:     domain.Asset,
		ParentAccountID: &self,
	}, actor)
	s.ErrorIs(err, apperrors.ErrCycle)

	roots, err := s.svc.Account.GetHierarchy(s.ctx)
	s.Require().NoError(err)
	var found bool
	for _, r := range roots {
		if r.Account.AccountID == parent.AccountID {
			found = true
			s.Require().Len(r.Children, 1)
			s.Equal(child.AccountID, r.Children[0].Account.AccountID)
		}
	}
	s.True(found)
}

func (s *LedgerServiceTestSuite) TestProtectedAccountsCannotBeChanged() {
	system, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{
		AccountNumber: "3900",
		Name:          "Retained earnings",
		AccountType:   domain.Equity,
		IsSystem:      true,
	}, actor)
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Account.DeleteAccount(s.ctx, system.AccountID), apperrors.ErrProtectedAccount)
	s.ErrorIs(s.svc.Account.DeactivateAccount(s.ctx, system.AccountID, actor), apperrors.ErrProtectedAccount)
}

func (s *LedgerServiceTestSuite) TestDeleteAccountWithLinesIsRejected() {
	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)
	s.ErrorIs(s.svc.Account.DeleteAccount(s.ctx, s.cash.AccountID), apperrors.ErrInvalidState)

	s.Require().NoError(s.svc.Account.DeleteAccount(s.ctx, s.expense.AccountID))
	_, err = s.svc.Account.GetAccount(s.ctx, s.expense.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestSalesInvoicePostsAgainstReceivable() {
	ar, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{
		AccountNumber: "1100",
		Name:          "Accounts Receivable",
		AccountType:   domain.Asset,
		Subtype:       domain.SubtypeAccountsReceivable,
	}, actor)
	s.Require().NoError(err)

	invoice, err := s.svc.Invoice.CreateInvoice(s.ctx, domain.InvoiceSpec{
		InvoiceNumber: "INV-1",
		Kind:          domain.InvoiceSales,
		ContactID:     "cust-1",
		InvoiceDate:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		Lines: []domain.InvoiceLineSpec{
			{AccountID: s.revenue.AccountID, Description: "consulting", Amount: amt("200")},
			{AccountID: s.revenue.AccountID, Description: "travel", Amount: amt("50.50")},
		},
	}, actor)
	s.Require().NoError(err)
	s.True(invoice.TotalAmount.Equal(amt("250.50")))
	s.True(s.balance(ar.AccountID).IsZero())

	posted, err := s.svc.Invoice.PostInvoice(s.ctx, invoice.InvoiceID, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, posted.Status)
	s.Require().NotNil(posted.JournalID)
	s.True(s.balance(ar.AccountID).Equal(amt("250.50")))
	s.True(s.balance(s.revenue.AccountID).Equal(amt("-250.50")))

	entry, err := s.svc.Journal.GetJournal(s.ctx, *posted.JournalID)
	s.Require().NoError(err)
	s.Equal(domain.JournalSalesInvoice, entry.EntryType)
	s.Equal(domain.StatusPosted, entry.Status)
	s.Require().NotNil(entry.SourceDocumentID)
	s.Equal(invoice.InvoiceID, *entry.SourceDocumentID)

	_, err = s.svc.Invoice.PostInvoice(s.ctx, invoice.InvoiceID, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	payment, err := s.svc.Invoice.RecordPayment(s.ctx, domain.PaymentSpec{
		Kind:          domain.PaymentReceived,
		ContactID:     "cust-1",
		PaymentDate:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Amount:        amt("100"),
		BankAccountID: s.bank.AccountID,
		Reference:     "wire",
	}, actor)
	s.Require().NoError(err)
	s.Require().NotNil(payment.JournalID)
	s.True(s.balance(ar.AccountID).Equal(amt("150.50")))
	s.True(s.balance(s.bank.AccountID).Equal(amt("100")))

	report, err := s.svc.Reporting.AgingReport(s.ctx, domain.InvoiceSales, "cust-1", s.now)
	s.Require().NoError(err)
	s.True(report.TotalOutstanding.Equal(amt("150.50")))
	s.True(report.Buckets.Days0To30.Equal(amt("150.50")))
}

func (s *LedgerServiceTestSuite) TestInvoiceRules() {
	spec := domain.InvoiceSpec{
		InvoiceNumber: "BILL-1",
		Kind:          domain.InvoicePurchase,
		ContactID:     "vendor-1",
		InvoiceDate:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		Lines:         []domain.InvoiceLineSpec{{AccountID: s.expense.AccountID, Amount: amt("75")}},
	}
	bill, err := s.svc.Invoice.CreateInvoice(s.ctx, spec, actor)
	s.Require().NoError(err)

	_, err = s.svc.Invoice.CreateInvoice(s.ctx, spec, actor)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Invoice.PostInvoice(s.ctx, bill.InvoiceID, actor)
	s.ErrorIs(err, apperrors.ErrMissingControlAccount)

	bad := spec
	bad.InvoiceNumber = "BILL-2"
	bad.Lines = []domain.InvoiceLineSpec{{AccountID: s.expense.AccountID, Amount: amt("1.005")}}
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, bad, actor)
	s.ErrorIs(err, apperrors.ErrValidation)

	bad.Lines = []domain.InvoiceLineSpec{{AccountID: s.expense.AccountID, Amount: amt("10")}}
	bad.DueDate = bad.InvoiceDate.AddDate(0, 0, -1)
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, bad, actor)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) payable() *domain.Account {
	ap, err := s.svc.Account.CreateAccount(s.ctx, domain.AccountSpec{
		AccountNumber: "2000",
		Name:          "Accounts Payable",
		AccountType:   domain.Liability,
		Subtype:       domain.SubtypeAccountsPayable,
	}, actor)
	s.Require().NoError(err)
	return ap
}

func (s *LedgerServiceTestSuite) bill(number string, lines ...domain.InvoiceLineSpec) *domain.Invoice {
	created, err := s.svc.Invoice.CreateInvoice(s.ctx, domain.InvoiceSpec{
		InvoiceNumber: number,
		Kind:          domain.InvoicePurchase,
		ContactID:     "vendor-1",
		InvoiceDate:   time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		Lines:         lines,
	}, actor)
	s.Require().NoError(err)
	return created
}

func (s *LedgerServiceTestSuite) TestPurchaseInvoiceCreditsPayable() {
	ap := s.payable()
	equipment := s.account("1500", "Equipment", domain.Asset, "")
	created := s.bill("BILL-7",
		domain.InvoiceLineSpec{AccountID: s.expense.AccountID, Description: "office rent", Amount: amt("60")},
		domain.InvoiceLineSpec{AccountID: equipment.AccountID, Description: "desk", Amount: amt("40.25")},
	)

	posted, err := s.svc.Invoice.PostInvoice(s.ctx, created.InvoiceID, actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, posted.Status)
	s.Require().NotNil(posted.JournalID)

	s.True(s.balance(s.expense.AccountID).Equal(amt("60")))
	s.True(s.balance(equipment.AccountID).Equal(amt("40.25")))
	s.True(s.balance(ap.AccountID).Equal(amt("-100.25")))

	entry, err := s.svc.Journal.GetJournal(s.ctx, *posted.JournalID)
	s.Require().NoError(err)
	s.Equal(domain.JournalPurchaseInvoice, entry.EntryType)
	s.True(entry.Amount.Equal(amt("100.25")))
	s.Require().Len(entry.Lines, 3)

	s.Equal(s.expense.AccountID, entry.Lines[0].AccountID)
	s.True(entry.Lines[0].DebitAmount.Equal(amt("60")))
	s.Equal(equipment.AccountID, entry.Lines[1].AccountID)
	s.True(entry.Lines[1].DebitAmount.Equal(amt("40.25")))

	control := entry.Lines[2]
	s.Equal(ap.AccountID, control.AccountID)
	s.True(control.CreditAmount.Equal(amt("100.25")))
	s.True(control.DebitAmount.IsZero())
	s.Require().NotNil(control.ContactID)
	s.Equal("vendor-1", *control.ContactID)
	s.Nil(control.ForeignCreditAmount, "base currency invoices carry no foreign mirror")
}

func (s *LedgerServiceTestSuite) TestForeignInvoiceCarriesMirrors() {
	ar := s.account("1100", "Accounts Receivable", domain.Asset, domain.SubtypeAccountsReceivable)
	rate := amt("2.5")
	created, err := s.svc.Invoice.CreateInvoice(s.ctx, domain.InvoiceSpec{
		InvoiceNumber: "INV-EUR-1",
		Kind:          domain.InvoiceSales,
		ContactID:     "cust-eu",
		InvoiceDate:   time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
		CurrencyID:    "eur",
		ExchangeRate:  &rate,
		Lines: []domain.InvoiceLineSpec{
			{AccountID: s.revenue.AccountID, Description: "licence", Amount: amt("100")},
			{AccountID: s.revenue.AccountID, Description: "support", Amount: amt("50")},
		},
	}, actor)
	s.Require().NoError(err)
	s.Equal("EUR", created.CurrencyID)

	posted, err := s.svc.Invoice.PostInvoice(s.ctx, created.InvoiceID, actor)
	s.Require().NoError(err)

	entry, err := s.svc.Journal.GetJournal(s.ctx, *posted.JournalID)
	s.Require().NoError(err)
	s.Equal("EUR", entry.CurrencyID)
	s.True(entry.ExchangeRate.Equal(rate))
	s.Require().Len(entry.Lines, 3)

	control := entry.Lines[0]
	s.Equal(ar.AccountID, control.AccountID)
	s.Require().NotNil(control.ForeignDebitAmount)
	s.True(control.ForeignDebitAmount.Equal(amt("60")), "mirror is amount / rate")
	s.True(control.DebitAmount.Equal(amt("150")), "base is recomputed from the mirror")

	s.Require().NotNil(entry.Lines[1].ForeignCreditAmount)
	s.True(entry.Lines[1].ForeignCreditAmount.Equal(amt("40")))
	s.True(entry.Lines[1].CreditAmount.Equal(amt("100")))
	s.Require().NotNil(entry.Lines[2].ForeignCreditAmount)
	s.True(entry.Lines[2].ForeignCreditAmount.Equal(amt("20")))
	s.True(entry.Lines[2].CreditAmount.Equal(amt("50")))

	s.True(s.balance(ar.AccountID).Equal(amt("150")))
	s.True(s.balance(s.revenue.AccountID).Equal(amt("-150")))
}

func (s *LedgerServiceTestSuite) TestControlAccountFoundByNumber() {
	debtors := s.account("1100", "Trade Debtors", domain.Asset, "")
	suppliers := s.account("2000", "Suppliers", domain.Liability, "")

	sale, err := s.svc.Invoice.CreateInvoice(s.ctx, domain.InvoiceSpec{
		InvoiceNumber: "INV-9",
		Kind:          domain.InvoiceSales,
		ContactID:     "cust-9",
		InvoiceDate:   time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC),
		Lines:         []domain.InvoiceLineSpec{{AccountID: s.revenue.AccountID, Amount: amt("30")}},
	}, actor)
	s.Require().NoError(err)
	_, err = s.svc.Invoice.PostInvoice(s.ctx, sale.InvoiceID, actor)
	s.Require().NoError(err)
	s.True(s.balance(debtors.AccountID).Equal(amt("30")))

	purchase := s.bill("BILL-9", domain.InvoiceLineSpec{AccountID: s.expense.AccountID, Amount: amt("12")})
	_, err = s.svc.Invoice.PostInvoice(s.ctx, purchase.InvoiceID, actor)
	s.Require().NoError(err)
	s.True(s.balance(suppliers.AccountID).Equal(amt("-12")))
}

func (s *LedgerServiceTestSuite) TestFailedInvoicePostChangesNothing() {
	ap := s.payable()
	created := s.bill("BILL-3", domain.InvoiceLineSpec{AccountID: s.expense.AccountID, Amount: amt("90")})
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, s.expense.AccountID, actor))

	_, err := s.svc.Invoice.PostInvoice(s.ctx, created.InvoiceID, actor)
	s.ErrorIs(err, apperrors.ErrValidation)

	got, err := s.svc.Invoice.GetInvoice(s.ctx, created.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.Nil(got.JournalID)

	entries, _, err := s.svc.Journal.ListJournals(s.ctx, portsrepo.JournalFilter{}, 10, nil)
	s.Require().NoError(err)
	s.Empty(entries)
	s.True(s.balance(ap.AccountID).IsZero())
	s.True(s.balance(s.expense.AccountID).IsZero())

	s.Require().NoError(s.svc.Account.ReactivateAccount(s.ctx, s.expense.AccountID, actor))
	posted, err := s.svc.Invoice.PostInvoice(s.ctx, created.InvoiceID, actor)
	s.Require().NoError(err)
	entry, err := s.svc.Journal.GetJournal(s.ctx, *posted.JournalID)
	s.Require().NoError(err)
	s.Equal("JE20250001", entry.JournalNumber)
	s.True(s.balance(ap.AccountID).Equal(amt("-90")))
}

func (s *LedgerServiceTestSuite) TestTrialBalanceStaysBalanced() {
	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "120.25", "120.25"), actor)
	s.Require().NoError(err)
	_, err = s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.expense.AccountID, s.cash.AccountID, "30", "30"), actor)
	s.Require().NoError(err)
	voided, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.expense.AccountID, s.bank.AccountID, "999", "999"), actor)
	s.Require().NoError(err)
	_, err = s.svc.Journal.VoidJournal(s.ctx, voided.JournalID, actor)
	s.Require().NoError(err)

	all, err := s.svc.Reporting.TrialBalance(s.ctx, domain.TrialBalanceOptions{})
	s.Require().NoError(err)
	s.True(all.IsBalanced)
	s.True(all.TotalDebit.Equal(amt("150.25")))
	s.True(all.TotalDebit.Equal(all.TotalCredit))

	posted, err := s.svc.Reporting.TrialBalance(s.ctx, domain.TrialBalanceOptions{PostedOnly: true})
	s.Require().NoError(err)
	s.True(posted.IsBalanced)
	s.True(posted.TotalDebit.Equal(amt("120.25")))

	drifts, err := s.svc.Account.RecalculateBalances(s.ctx, actor)
	s.Require().NoError(err)
	s.Empty(drifts)

	bal, err := s.svc.Reporting.AccountBalance(s.ctx, s.cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(bal.Equal(s.balance(s.cash.AccountID)))
}

func (s *LedgerServiceTestSuite) TestProfitAndLossAndBalanceSheet() {
	_, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.cash.AccountID, s.revenue.AccountID, "500", "500"), actor)
	s.Require().NoError(err)
	_, err = s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.expense.AccountID, s.cash.AccountID, "200", "200"), actor)
	s.Require().NoError(err)

	pl, err := s.svc.Reporting.ProfitAndLoss(s.ctx, nil, s.now)
	s.Require().NoError(err)
	s.True(pl.NetProfit.Equal(amt("300")))
	s.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), pl.From)

	bs, err := s.svc.Reporting.BalanceSheet(s.ctx, s.now)
	s.Require().NoError(err)
	s.True(bs.TotalAssets.Equal(amt("300")))
	s.True(bs.RetainedEarnings.Equal(amt("300")))
	s.True(bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}

func (s *LedgerServiceTestSuite) TestReconciliationClaimsLinesOnce() {
	entry, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.bank.AccountID, s.revenue.AccountID, "100", "100"), actor)
	s.Require().NoError(err)
	var bankLine string
	for _, l := range entry.Lines {
		if l.AccountID == s.bank.AccountID {
			bankLine = l.LineID
		}
	}
	s.Require().NotEmpty(bankLine)

	spec := domain.ReconciliationSpec{
		AccountID:      s.bank.AccountID,
		StatementDate:  s.now,
		OpeningBalance: decimal.Zero,
		ClosingBalance: amt("100"),
	}
	first, err := s.svc.Reconciliation.CreateReconciliation(s.ctx, spec, actor)
	s.Require().NoError(err)
	second, err := s.svc.Reconciliation.CreateReconciliation(s.ctx, spec, actor)
	s.Require().NoError(err)

	saved, err := s.svc.Reconciliation.SaveReconciliation(s.ctx, first.ReconciliationID, []string{bankLine}, actor)
	s.Require().NoError(err)
	s.Equal([]string{bankLine}, saved.LineIDs)

	_, err = s.svc.Reconciliation.SaveReconciliation(s.ctx, second.ReconciliationID, []string{bankLine}, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.svc.Journal.VoidJournal(s.ctx, entry.JournalID, actor)
	s.ErrorIs(err, apperrors.ErrInvalidState, "reconciled entries cannot be voided")

	done, err := s.svc.Reconciliation.CompleteReconciliation(s.ctx, first.ReconciliationID, actor)
	s.Require().NoError(err)
	s.Equal(domain.ReconciliationCompleted, done.Status)

	cancelled, err := s.svc.Reconciliation.CancelReconciliation(s.ctx, first.ReconciliationID, actor)
	s.Require().NoError(err)
	s.Empty(cancelled.LineIDs)

	_, err = s.svc.Reconciliation.SaveReconciliation(s.ctx, second.ReconciliationID, []string{bankLine}, actor)
	s.NoError(err, "cancelling releases the line")
}

func (s *LedgerServiceTestSuite) TestReconciliationMustMatchStatement() {
	entry, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusPosted, s.bank.AccountID, s.revenue.AccountID, "40", "40"), actor)
	s.Require().NoError(err)

	rec, err := s.svc.Reconciliation.CreateReconciliation(s.ctx, domain.ReconciliationSpec{
		AccountID:      s.bank.AccountID,
		StatementDate:  s.now,
		OpeningBalance: amt("10"),
		ClosingBalance: amt("60"),
	}, actor)
	s.Require().NoError(err)
	_, err = s.svc.Reconciliation.SaveReconciliation(s.ctx, rec.ReconciliationID, []string{entry.Lines[0].LineID}, actor)
	s.Require().NoError(err)

	_, err = s.svc.Reconciliation.CompleteReconciliation(s.ctx, rec.ReconciliationID, actor)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	_, err = s.svc.Reconciliation.CreateReconciliation(s.ctx, domain.ReconciliationSpec{
		AccountID:     s.revenue.AccountID,
		StatementDate: s.now,
	}, actor)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestSettingsValidateAndCache() {
	s.ErrorIs(s.svc.Settings.Set(s.ctx, domain.SettingBaseCurrency, "eur", actor), apperrors.ErrValidation)
	s.Require().NoError(s.svc.Settings.Set(s.ctx, domain.SettingBaseCurrency, "EUR", actor))

	base, err := s.svc.Settings.BaseCurrency(s.ctx)
	s.Require().NoError(err)
	s.Equal("EUR", base)

	created, err := s.svc.Journal.CreateJournal(s.ctx, simpleEntry(domain.StatusDraft, s.cash.AccountID, s.revenue.AccountID, "1", "1"), actor)
	s.Require().NoError(err)
	s.Equal("EUR", created.CurrencyID)

	s.ErrorIs(s.svc.Settings.Set(s.ctx, domain.SettingFiscalYearStart, "13-01", actor), apperrors.ErrValidation)
	s.Require().NoError(s.svc.Settings.Set(s.ctx, domain.SettingFiscalYearStart, "04-01", actor))
	start, err := s.svc.Settings.FiscalYearStart(s.ctx, 2025)
	s.Require().NoError(err)
	s.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), start)

	s.Require().NoError(s.svc.Settings.Reload(s.ctx))
	settings, err := s.svc.Settings.ListSettings(s.ctx)
	s.Require().NoError(err)
	s.Len(settings, 2)
}

const templatesYAML = `
templates:
  - name: monthly-rent
    description: Monthly rent
    lines:
      - account_id: "%EXPENSE%"
        debit: "1200"
      - account_id: "%CASH%"
        credit: "1200"
        reference: lease
`

func (s *LedgerServiceTestSuite) TestTemplatesLoadStrictly() {
	doc := strings.NewReplacer("%EXPENSE%", s.expense.AccountID, "%CASH%", s.cash.AccountID).Replace(templatesYAML)
	loaded, err := s.svc.Template.LoadTemplates(strings.NewReader(doc))
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Len(s.svc.Template.ListTemplates(), 1)

	entry, err := s.svc.Template.CreateFromTemplate(s.ctx, "monthly-rent", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), actor)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, entry.Status)
	s.Equal(domain.JournalTypeTemplate, entry.EntryType)
	s.True(entry.Amount.Equal(amt("1200")))
	s.Contains(entry.Lines[1].Description, "lease")

	_, err = s.svc.Template.CreateFromTemplate(s.ctx, "missing", s.now, actor)
	s.ErrorIs(err, apperrors.ErrNotFound)

	unbalanced := strings.Replace(doc, `credit: "1200"`, `credit: "1100"`, 1)
	_, err = s.svc.Template.LoadTemplates(strings.NewReader(unbalanced))
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	unknownKey := strings.Replace(doc, "reference: lease", "memo: lease", 1)
	_, err = s.svc.Template.LoadTemplates(strings.NewReader(unknownKey))
	s.ErrorIs(err, apperrors.ErrValidation)

	twoSided := strings.Replace(doc, `debit: "1200"`, "debit: \"1200\"\n        credit: \"1\"", 1)
	_, err = s.svc.Template.LoadTemplates(strings.NewReader(twoSided))
	s.ErrorIs(err, apperrors.ErrValidation)
}
