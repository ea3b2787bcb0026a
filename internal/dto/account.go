package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// An empty AccountNumber is generated from the account type.
type CreateAccountRequest struct {
	AccountNumber   string               `json:"accountNumber" binding:"omitempty,numeric,max=20"`
	Name            string               `json:"name" binding:"required,max=200"`
	AccountType     domain.AccountType   `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype         string               `json:"subtype" binding:"max=100"`
	NormalBalance   domain.NormalBalance `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"`
	ParentAccountID *string              `json:"parentAccountID"`
	Description     string               `json:"description" binding:"max=1000"`
	IsSystem        bool                 `json:"isSystem"`
}

// UpdateAccountRequest replaces every descriptive field of an account.
type UpdateAccountRequest = CreateAccountRequest

// ToSpec converts the request to the service input.
func (r CreateAccountRequest) ToSpec() domain.AccountSpec {
	return domain.AccountSpec{
		AccountNumber:   r.AccountNumber,
		Name:            r.Name,
		AccountType:     r.AccountType,
		Subtype:         r.Subtype,
		NormalBalance:   r.NormalBalance,
		ParentAccountID: r.ParentAccountID,
		Description:     r.Description,
		IsSystem:        r.IsSystem,
	}
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string               `json:"accountID"`
	AccountNumber   string               `json:"accountNumber"`
	Name            string               `json:"name"`
	AccountType     domain.AccountType   `json:"accountType"`
	Subtype         string               `json:"subtype"`
	NormalBalance   domain.NormalBalance `json:"normalBalance"`
	ParentAccountID string               `json:"parentAccountID"` // empty for roots
	Description     string               `json:"description"`
	IsActive        bool                 `json:"isActive"`
	IsSystem        bool                 `json:"isSystem"`
	CurrentBalance  decimal.Decimal      `json:"currentBalance"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	parent := ""
	if acc.ParentAccountID != nil {
		parent = *acc.ParentAccountID
	}
	return AccountResponse{
		AccountID:       acc.AccountID,
		AccountNumber:   acc.AccountNumber,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Subtype:         acc.Subtype,
		NormalBalance:   acc.NormalBalance,
		ParentAccountID: parent,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		IsSystem:        acc.IsSystem,
		CurrentBalance:  acc.CurrentBalance,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountNodeResponse is one vertex of the account hierarchy.
type AccountNodeResponse struct {
	AccountResponse
	Children []AccountNodeResponse `json:"children"`
}

func ToAccountNodeResponses(nodes []*domain.AccountNode) []AccountNodeResponse {
	res := make([]AccountNodeResponse, len(nodes))
	for i, n := range nodes {
		res[i] = AccountNodeResponse{
			AccountResponse: ToAccountResponse(&n.Account),
			Children:        ToAccountNodeResponses(n.Children),
		}
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      *time.Time      `json:"asOf,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceQuery is the optional as-of date of balance and report queries.
type BalanceQuery struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02"`
}

// UniqueQuery checks a candidate number or name; ExcludeID skips the account being edited.
type UniqueQuery struct {
	Value     string `form:"value" binding:"required"`
	ExcludeID string `form:"excludeID"`
}

type UniqueResponse struct {
	Unique bool `json:"unique"`
}

// RecalculateResponse lists the accounts whose cached balance was corrected.
type RecalculateResponse struct {
	Drifted []domain.BalanceDrift `json:"drifted"`
}
