package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func registerReconciliationRoutes(rg *gin.RouterGroup, svc portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconciliationService: svc}

	recs := rg.Group("/reconciliations")
	{
		recs.POST("", h.create)
		recs.GET("/:id", h.get)
		recs.PUT("/:id/lines", h.save)
		recs.POST("/:id/complete", h.complete)
		recs.POST("/:id/cancel", h.cancel)
	}
}

// create godoc
// @Summary Start a bank reconciliation
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   reconciliation body dto.CreateReconciliationRequest true "Statement"
// @Success 201 {object} domain.BankReconciliation
// @Security BearerAuth
// @Router /reconciliations [post]
func (h *reconciliationHandler) create(c *gin.Context) {
	var req dto.CreateReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateReconciliation")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.CreateReconciliation(c.Request.Context(), req.ToSpec(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create reconciliation")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// get godoc
// @Summary Get a reconciliation with its cleared lines
// @Tags reconciliations
// @Produce  json
// @Param   id path string true "Reconciliation ID"
// @Success 200 {object} domain.BankReconciliation
// @Security BearerAuth
// @Router /reconciliations/{id} [get]
func (h *reconciliationHandler) get(c *gin.Context) {
	rec, err := h.reconciliationService.GetReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve reconciliation")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// save godoc
// @Summary Set the cleared lines of a draft reconciliation
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   id path string true "Reconciliation ID"
// @Param   lines body dto.SaveReconciliationRequest true "Cleared line IDs"
// @Success 200 {object} domain.BankReconciliation
// @Failure 409 {object} map[string]string "Line claimed by another reconciliation"
// @Security BearerAuth
// @Router /reconciliations/{id}/lines [put]
func (h *reconciliationHandler) save(c *gin.Context) {
	var req dto.SaveReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "SaveReconciliation")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.SaveReconciliation(c.Request.Context(), c.Param("id"), req.LineIDs, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to save reconciliation")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// complete godoc
// @Summary Complete a reconciliation
// @Tags reconciliations
// @Produce  json
// @Param   id path string true "Reconciliation ID"
// @Success 200 {object} domain.BankReconciliation
// @Failure 422 {object} map[string]string "Cleared lines do not match the statement"
// @Security BearerAuth
// @Router /reconciliations/{id}/complete [post]
func (h *reconciliationHandler) complete(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.CompleteReconciliation(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to complete reconciliation")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// cancel godoc
// @Summary Cancel a reconciliation and release its lines
// @Tags reconciliations
// @Produce  json
// @Param   id path string true "Reconciliation ID"
// @Success 200 {object} domain.BankReconciliation
// @Security BearerAuth
// @Router /reconciliations/{id}/cancel [post]
func (h *reconciliationHandler) cancel(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.CancelReconciliation(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to cancel reconciliation")
		return
	}
	c.JSON(http.StatusOK, rec)
}
