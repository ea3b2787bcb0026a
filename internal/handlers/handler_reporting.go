package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler exposes the read-only financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
	now              func() time.Time
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService, now: time.Now}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/aging", h.aging)
		reports.GET("/aging/summary", h.agingSummary)
		reports.GET("/dso/:contactID", h.dso)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/balance-sheet", h.balanceSheet)
	}
}

func (h *reportingHandler) today(t *time.Time) time.Time {
	if t != nil {
		return domain.StartOfDay(*t)
	}
	return domain.StartOfDay(h.now())
}

// trialBalance godoc
// @Summary Trial balance
// @Description Per-account debit and credit totals with the grand totals
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Last entry date included (YYYY-MM-DD)"
// @Param   postedOnly query bool false "Exclude DRAFT entries"
// @Success 200 {object} domain.TrialBalance
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "TrialBalance")
		return
	}
	report, err := h.reportingService.TrialBalance(c.Request.Context(), domain.TrialBalanceOptions{
		AsOf:       params.AsOf,
		PostedOnly: params.PostedOnly,
	})
	if err != nil {
		respondWithError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// aging godoc
// @Summary Aging report for one contact
// @Tags reports
// @Produce  json
// @Param   kind query string true "SALES or PURCHASE"
// @Param   contactID query string true "Contact"
// @Param   today query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} domain.AgingReport
// @Security BearerAuth
// @Router /reports/aging [get]
func (h *reportingHandler) aging(c *gin.Context) {
	var params dto.AgingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "AgingReport")
		return
	}
	if params.ContactID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contactID is required"})
		return
	}
	report, err := h.reportingService.AgingReport(c.Request.Context(), params.Kind, params.ContactID, h.today(params.Today))
	if err != nil {
		respondWithError(c, err, "Failed to build aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// agingSummary godoc
// @Summary Aging report for every contact
// @Tags reports
// @Produce  json
// @Param   kind query string true "SALES or PURCHASE"
// @Param   today query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {array} domain.AgingReport
// @Security BearerAuth
// @Router /reports/aging/summary [get]
func (h *reportingHandler) agingSummary(c *gin.Context) {
	var params dto.AgingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "AgingSummary")
		return
	}
	reports, err := h.reportingService.AgingSummary(c.Request.Context(), params.Kind, h.today(params.Today))
	if err != nil {
		respondWithError(c, err, "Failed to build aging summary")
		return
	}
	c.JSON(http.StatusOK, reports)
}

// dso godoc
// @Summary Days sales outstanding for a customer
// @Tags reports
// @Produce  json
// @Param   contactID path string true "Contact"
// @Success 200 {object} domain.DSOResult
// @Security BearerAuth
// @Router /reports/dso/{contactID} [get]
func (h *reportingHandler) dso(c *gin.Context) {
	result, err := h.reportingService.DaysSalesOutstanding(c.Request.Context(), c.Param("contactID"))
	if err != nil {
		respondWithError(c, err, "Failed to compute DSO")
		return
	}
	c.JSON(http.StatusOK, result)
}

// profitAndLoss godoc
// @Summary Profit and loss
// @Description Revenue and expense totals over a period. From defaults to the fiscal year start.
// @Tags reports
// @Produce  json
// @Param   from query string false "Period start (YYYY-MM-DD)"
// @Param   to query string false "Period end (YYYY-MM-DD)"
// @Success 200 {object} domain.PAndLReport
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ProfitAndLoss")
		return
	}
	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), params.From, h.today(params.To))
	if err != nil {
		respondWithError(c, err, "Failed to build profit and loss")
		return
	}
	c.JSON(http.StatusOK, report)
}

// balanceSheet godoc
// @Summary Balance sheet
// @Tags reports
// @Produce  json
// @Param   to query string false "As-of date (YYYY-MM-DD)"
// @Success 200 {object} domain.BalanceSheetReport
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "BalanceSheet")
		return
	}
	report, err := h.reportingService.BalanceSheet(c.Request.Context(), h.today(params.To))
	if err != nil {
		respondWithError(c, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}
