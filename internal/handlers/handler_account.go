package handlers

import (
	"context"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/hierarchy", h.getHierarchy)
		accounts.GET("/unique/number", h.isNumberUnique)
		accounts.GET("/unique/name", h.isNameUnique)
		accounts.POST("/recalculate", h.recalculateBalances)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
		accounts.POST("/:id/reactivate", h.reactivateAccount)
		accounts.GET("/:id/balance", h.getBalance)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates an account. Without an account number the next free number of the type's range is used.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Duplicate number or name"
// @Failure 422 {object} map[string]string "Parent would create a cycle"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateAccount")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req.ToSpec(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists every account ordered by account number
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getHierarchy godoc
// @Summary Get the account tree
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountNodeResponse
// @Security BearerAuth
// @Router /accounts/hierarchy [get]
func (h *accountHandler) getHierarchy(c *gin.Context) {
	roots, err := h.accountService.GetHierarchy(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to build account hierarchy")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountNodeResponses(roots))
}

// updateAccount godoc
// @Summary Update an account
// @Description Replaces the descriptive fields of an account. The type is frozen once the account has lines.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Account details"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Immutable field or protected account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "UpdateAccount")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req.ToSpec(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Deletes an account without lines or active children
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Account in use or protected"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	h.setActive(c, false)
}

// reactivateAccount godoc
// @Summary Reactivate an account
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /accounts/{id}/reactivate [post]
func (h *accountHandler) reactivateAccount(c *gin.Context) {
	h.setActive(c, true)
}

func (h *accountHandler) setActive(c *gin.Context, active bool) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	var err error
	if active {
		err = h.accountService.ReactivateAccount(c.Request.Context(), c.Param("id"), actorID)
	} else {
		err = h.accountService.DeactivateAccount(c.Request.Context(), c.Param("id"), actorID)
	}
	if err != nil {
		respondWithError(c, err, "Failed to change account status")
		return
	}
	c.Status(http.StatusNoContent)
}

// getBalance godoc
// @Summary Get an account balance
// @Description Without asOf the cached running balance is returned; with asOf the posted lines up to that day are summed.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   asOf query string false "Inclusive as-of date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Security BearerAuth
// @Router /accounts/{id}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	var q dto.BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err, "GetBalance")
		return
	}
	accountID := c.Param("id")
	balance, err := h.accountService.GetBalance(c.Request.Context(), accountID, q.AsOf)
	if err != nil {
		respondWithError(c, err, "Failed to get account balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, AsOf: q.AsOf, Balance: balance})
}

// isNumberUnique godoc
// @Summary Check whether an account number is free
// @Tags accounts
// @Produce  json
// @Param   value query string true "Candidate number"
// @Param   excludeID query string false "Account being edited"
// @Success 200 {object} dto.UniqueResponse
// @Security BearerAuth
// @Router /accounts/unique/number [get]
func (h *accountHandler) isNumberUnique(c *gin.Context) {
	h.unique(c, h.accountService.IsAccountNumberUnique)
}

// isNameUnique godoc
// @Summary Check whether an account name is free
// @Tags accounts
// @Produce  json
// @Param   value query string true "Candidate name"
// @Param   excludeID query string false "Account being edited"
// @Success 200 {object} dto.UniqueResponse
// @Security BearerAuth
// @Router /accounts/unique/name [get]
func (h *accountHandler) isNameUnique(c *gin.Context) {
	h.unique(c, h.accountService.IsAccountNameUnique)
}

func (h *accountHandler) unique(c *gin.Context, check func(ctx context.Context, value, excludeID string) (bool, error)) {
	var q dto.UniqueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err, "UniqueCheck")
		return
	}
	free, err := check(c.Request.Context(), q.Value, q.ExcludeID)
	if err != nil {
		respondWithError(c, err, "Failed to check uniqueness")
		return
	}
	c.JSON(http.StatusOK, dto.UniqueResponse{Unique: free})
}

// recalculateBalances godoc
// @Summary Rebuild cached balances
// @Description Recomputes every running balance from posted lines and reports the accounts that drifted
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.RecalculateResponse
// @Security BearerAuth
// @Router /accounts/recalculate [post]
func (h *accountHandler) recalculateBalances(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	drifted, err := h.accountService.RecalculateBalances(c.Request.Context(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to recalculate balances")
		return
	}
	if len(drifted) > 0 {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Cached balances drifted", slog.Int("accounts", len(drifted)))
	}
	c.JSON(http.StatusOK, dto.RecalculateResponse{Drifted: drifted})
}
