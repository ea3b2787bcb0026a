package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/cache"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string
	token     string
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

// generateTestToken creates a signed JWT for testing.
func (suite *LedgerHandlerTestSuite) generateTestToken(userID string, expiresIn time.Duration) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.token = suite.generateTestToken("user-42", time.Hour)

	cfg := &config.Config{
		IsProduction: true,
		JWTSecret:    suite.jwtSecret,
		JWTIssuer:    "ledger-test",
	}
	container := services.NewContainer(memory.NewStore(), cache.NewMemoryCache(), services.ContainerOptions{})

	suite.router = gin.New()
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, cfg, container))
}

func (suite *LedgerHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if s, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(s))
	} else {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerHandlerTestSuite) createAccount(number, name string, t domain.AccountType) dto.AccountResponse {
	w := suite.do(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		AccountNumber: number,
		Name:          name,
		AccountType:   t,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func journalBody(status domain.JournalStatus, debitAcc, creditAcc, debit, credit string) dto.CreateJournalRequest {
	return dto.CreateJournalRequest{
		Description: "handler test",
		Status:      status,
		Lines: []dto.JournalLineRequest{
			{AccountID: debitAcc, DebitAmount: decimal.RequireFromString(debit)},
			{AccountID: creditAcc, CreditAmount: decimal.RequireFromString(credit)},
		},
	}
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestHealthIsPublic() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *LedgerHandlerTestSuite) TestAuthIsRequired() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)

	suite.token = suite.generateTestToken("user-42", -time.Minute)
	w = suite.do(http.MethodGet, "/api/v1/accounts", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "expired")
}

func (suite *LedgerHandlerTestSuite) TestPostingFlow() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	sales := suite.createAccount("4000", "Sales", domain.Revenue)
	suite.Equal(domain.NormalCredit, sales.NormalBalance)

	w := suite.do(http.MethodPost, "/api/v1/journals", journalBody(domain.StatusDraft, cash.AccountID, sales.AccountID, "75.50", "75.50"))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var draft domain.JournalEntry
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &draft))
	suite.Equal(domain.StatusDraft, draft.Status)
	suite.Equal("user-42", draft.CreatedBy)

	w = suite.do(http.MethodPost, "/api/v1/journals/"+draft.JournalID+"/post", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/v1/journals/"+draft.JournalID+"/post", nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/"+cash.AccountID+"/balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var bal dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &bal))
	suite.True(bal.Balance.Equal(decimal.RequireFromString("75.50")))

	w = suite.do(http.MethodGet, "/api/v1/journals?limit=10", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListJournalsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	suite.Len(list.Journals, 1)
	suite.Nil(list.NextToken)

	w = suite.do(http.MethodGet, "/api/v1/reports/trial-balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tb domain.TrialBalance
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tb))
	suite.True(tb.IsBalanced)
}

func (suite *LedgerHandlerTestSuite) TestErrorStatuses() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	sales := suite.createAccount("4000", "Sales", domain.Revenue)

	w := suite.do(http.MethodPost, "/api/v1/journals", journalBody(domain.StatusPosted, cash.AccountID, sales.AccountID, "10", "9"))
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/journals/does-not-exist", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Name: "Cash", AccountType: domain.Asset})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/accounts", `{"name": "Broken", "accountType": "INCOME"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.True(strings.HasPrefix(w.Body.String(), `{"error":"Invalid request format`))

	w = suite.do(http.MethodPut, "/api/v1/settings/base_currency", dto.SetSettingRequest{Value: "euro"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/settings/base_currency", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestUniqueChecks() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)

	w := suite.do(http.MethodGet, "/api/v1/accounts/unique/number?value=1000", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.UniqueResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Unique)

	w = suite.do(http.MethodGet, "/api/v1/accounts/unique/name?value=Cash&excludeID="+cash.AccountID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Unique)
}
