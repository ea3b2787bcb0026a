package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type reportingService struct {
	BaseService
	store    portsrepo.Store
	settings portssvc.SettingsSvcFacade
}

// NewReportingService creates a new reporting service. Reports read through the store's
// autocommit repositories and never lock.
func NewReportingService(store portsrepo.Store, settings portssvc.SettingsSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{store: store, settings: settings}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

var postedOnly = []domain.JournalStatus{domain.StatusPosted}

func (s *reportingService) accountIndex(ctx context.Context) (map[string]domain.Account, error) {
	accounts, err := s.store.Accounts().ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		index[a.AccountID] = a
	}
	return index, nil
}

// TrialBalance groups lines by account. Without PostedOnly it covers DRAFT and POSTED
// entries; VOID entries never contribute.
func (s *reportingService) TrialBalance(ctx context.Context, opts domain.TrialBalanceOptions) (*domain.TrialBalance, error) {
	filter := portsrepo.LineFilter{Statuses: []domain.JournalStatus{domain.StatusDraft, domain.StatusPosted}}
	if opts.PostedOnly {
		filter.Statuses = postedOnly
	}
	if opts.AsOf != nil {
		eod := domain.EndOfDay(*opts.AsOf)
		filter.To = &eod
	}

	totals, err := s.store.Journals().SumLinesByAccount(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate lines for trial balance")
		return nil, err
	}
	accounts, err := s.accountIndex(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for trial balance")
		return nil, err
	}

	report := &domain.TrialBalance{
		AsOf:        opts.AsOf,
		PostedOnly:  opts.PostedOnly,
		Rows:        make([]domain.TrialBalanceRow, 0, len(totals)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, t := range totals {
		acc := accounts[t.AccountID]
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:     t.AccountID,
			AccountNumber: acc.AccountNumber,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			Debit:         t.Debit,
			Credit:        t.Credit,
			Net:           t.Debit.Sub(t.Credit),
		})
		report.TotalDebit = report.TotalDebit.Add(t.Debit)
		report.TotalCredit = report.TotalCredit.Add(t.Credit)
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].AccountNumber < report.Rows[j].AccountNumber })
	report.IsBalanced = report.TotalDebit.Equal(report.TotalCredit)

	if !report.IsBalanced {
		s.GetLogger(ctx).Warn("Trial balance does not balance",
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()))
	}
	return report, nil
}

func (s *reportingService) AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	if _, err := s.store.Accounts().FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	balance, err := postedBalance(ctx, s.store.Journals(), accountID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute account balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *reportingService) AgingReport(ctx context.Context, kind domain.InvoiceKind, contactID string, today time.Time) (*domain.AgingReport, error) {
	invoices, payments, err := s.agingInputs(ctx, kind, contactID)
	if err != nil {
		return nil, err
	}
	report := buildAging(kind, contactID, invoices, payments, today)
	return &report, nil
}

func (s *reportingService) AgingSummary(ctx context.Context, kind domain.InvoiceKind, today time.Time) ([]domain.AgingReport, error) {
	invoices, payments, err := s.agingInputs(ctx, kind, "")
	if err != nil {
		return nil, err
	}

	byContact := make(map[string][]domain.Invoice)
	for _, inv := range invoices {
		byContact[inv.ContactID] = append(byContact[inv.ContactID], inv)
	}
	paymentsByContact := make(map[string][]domain.Payment)
	for _, p := range payments {
		paymentsByContact[p.ContactID] = append(paymentsByContact[p.ContactID], p)
	}

	contacts := make([]string, 0, len(byContact))
	for c := range byContact {
		contacts = append(contacts, c)
	}
	sort.Strings(contacts)

	reports := make([]domain.AgingReport, 0, len(contacts))
	for _, c := range contacts {
		reports = append(reports, buildAging(kind, c, byContact[c], paymentsByContact[c], today))
	}
	return reports, nil
}

func (s *reportingService) agingInputs(ctx context.Context, kind domain.InvoiceKind, contactID string) ([]domain.Invoice, []domain.Payment, error) {
	posted := domain.StatusPosted
	invoices, err := s.store.Invoices().ListInvoices(ctx, portsrepo.InvoiceFilter{Kind: kind, ContactID: contactID, Status: &posted})
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices for aging")
		return nil, nil, err
	}
	paymentKind := domain.PaymentReceived
	if kind == domain.InvoicePurchase {
		paymentKind = domain.PaymentMade
	}
	payments, err := s.store.Invoices().ListPayments(ctx, portsrepo.PaymentFilter{Kind: paymentKind, ContactID: contactID})
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments for aging")
		return nil, nil, err
	}
	return invoices, payments, nil
}

func (s *reportingService) DaysSalesOutstanding(ctx context.Context, contactID string) (*domain.DSOResult, error) {
	ar, err := controlAccount(ctx, s.store.Accounts(), domain.InvoiceSales)
	if err != nil {
		s.logFailure(ctx, err, "Failed to locate receivable account")
		return nil, err
	}
	lines, err := s.store.Journals().ListLedgerLines(ctx, portsrepo.LineFilter{
		AccountIDs: []string{ar.AccountID},
		ContactID:  &contactID,
		Statuses:   postedOnly,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list receivable lines", slog.String("contact_id", contactID))
		return nil, err
	}
	result := computeDSO(contactID, lines)
	return &result, nil
}

func (s *reportingService) ProfitAndLoss(ctx context.Context, from *time.Time, to time.Time) (*domain.PAndLReport, error) {
	start := time.Time{}
	if from != nil {
		start = domain.StartOfDay(*from)
	} else {
		fy, err := s.fiscalYearStart(ctx, to)
		if err != nil {
			return nil, err
		}
		start = fy
	}
	end := domain.EndOfDay(to)
	if start.After(end) {
		return nil, fmt.Errorf("%w: report starts after it ends", apperrors.ErrValidation)
	}

	totals, err := s.store.Journals().SumLinesByAccount(ctx, portsrepo.LineFilter{Statuses: postedOnly, From: &start, To: &end})
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate lines for profit and loss")
		return nil, err
	}
	accounts, err := s.accountIndex(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.PAndLReport{
		From:      start,
		To:        domain.StartOfDay(to),
		Revenue:   make([]domain.AccountAmount, 0),
		Expenses:  make([]domain.AccountAmount, 0),
		NetProfit: decimal.Zero,
	}
	for _, t := range totals {
		acc, ok := accounts[t.AccountID]
		if !ok {
			continue
		}
		amount := domain.AccountAmount{AccountID: acc.AccountID, AccountNumber: acc.AccountNumber, Name: acc.Name}
		net := t.Debit.Sub(t.Credit)
		switch acc.AccountType {
		case domain.Revenue:
			amount.NetAmount = accounting.NormalSide(net, domain.NormalCredit)
			report.Revenue = append(report.Revenue, amount)
			report.NetProfit = report.NetProfit.Add(amount.NetAmount)
		case domain.Expense:
			amount.NetAmount = accounting.NormalSide(net, domain.NormalDebit)
			report.Expenses = append(report.Expenses, amount)
			report.NetProfit = report.NetProfit.Sub(amount.NetAmount)
		}
	}
	sortAmounts(report.Revenue)
	sortAmounts(report.Expenses)
	return report, nil
}

// BalanceSheet folds all revenue and expense up to asOf into retained earnings, so
// TotalAssets == TotalLiabilities + TotalEquity on a balanced ledger.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	end := domain.EndOfDay(asOf)
	totals, err := s.store.Journals().SumLinesByAccount(ctx, portsrepo.LineFilter{Statuses: postedOnly, To: &end})
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate lines for balance sheet")
		return nil, err
	}
	accounts, err := s.accountIndex(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             domain.StartOfDay(asOf),
		Assets:           make([]domain.AccountAmount, 0),
		Liabilities:      make([]domain.AccountAmount, 0),
		Equity:           make([]domain.AccountAmount, 0),
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, t := range totals {
		acc, ok := accounts[t.AccountID]
		if !ok {
			continue
		}
		net := t.Debit.Sub(t.Credit)
		amount := domain.AccountAmount{
			AccountID:     acc.AccountID,
			AccountNumber: acc.AccountNumber,
			Name:          acc.Name,
			NetAmount:     accounting.NormalSide(net, acc.AccountType.DefaultNormalBalance()),
		}
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(amount.NetAmount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(amount.NetAmount)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(amount.NetAmount)
		case domain.Revenue, domain.Expense:
			report.RetainedEarnings = report.RetainedEarnings.Sub(net)
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.RetainedEarnings)
	sortAmounts(report.Assets)
	sortAmounts(report.Liabilities)
	sortAmounts(report.Equity)
	return report, nil
}

// fiscalYearStart returns the start of the fiscal year containing t.
func (s *reportingService) fiscalYearStart(ctx context.Context, t time.Time) (time.Time, error) {
	if s.settings == nil {
		return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	start, err := s.settings.FiscalYearStart(ctx, t.UTC().Year())
	if err != nil {
		return time.Time{}, err
	}
	if start.After(t) {
		return s.settings.FiscalYearStart(ctx, t.UTC().Year()-1)
	}
	return start, nil
}

func sortAmounts(amounts []domain.AccountAmount) {
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].AccountNumber < amounts[j].AccountNumber })
}
