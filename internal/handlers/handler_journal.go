package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries and their templates.
type journalHandler struct {
	journalService  portssvc.JournalSvcFacade
	templateService portssvc.TemplateSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade, ts portssvc.TemplateSvcFacade) *journalHandler {
	return &journalHandler{journalService: js, templateService: ts}
}

// registerJournalRoutes registers journal specific routes
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, templateService portssvc.TemplateSvcFacade) {
	h := newJournalHandler(journalService, templateService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
		journals.POST("/from-template", h.createFromTemplate)
		journals.GET("/:journalID", h.getJournal)
		journals.PUT("/:journalID", h.updateJournal)
		journals.DELETE("/:journalID", h.deleteJournal)
		journals.POST("/:journalID/post", h.postJournal)
		journals.POST("/:journalID/void", h.voidJournal)
	}
	rg.GET("/templates", h.listTemplates)
}

// createJournal godoc
// @Summary Create a journal entry
// @Description Creates a DRAFT entry, or a POSTED one whose balances are applied immediately
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal entry"
// @Success 201 {object} domain.JournalEntry
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 422 {object} map[string]string "Entry is not balanced"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateJournal")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateJournal(c.Request.Context(), req.ToDomain(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create journal")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// getJournal godoc
// @Summary Get a journal entry with its lines
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} domain.JournalEntry
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	entry, err := h.journalService.GetJournal(c.Request.Context(), c.Param("journalID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// listJournals godoc
// @Summary List journal entries
// @Description Pages journal headers newest first
// @Tags journals
// @Produce  json
// @Param   status query string false "DRAFT, POSTED or VOID"
// @Param   entryType query string false "Entry type"
// @Param   from query string false "First entry date (YYYY-MM-DD)"
// @Param   to query string false "Last entry date (YYYY-MM-DD)"
// @Param   accountID query string false "Only entries touching this account"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ListJournals")
		return
	}
	entries, next, err := h.journalService.ListJournals(c.Request.Context(), params.Filter(), params.Limit, params.NextToken)
	if err != nil {
		respondWithError(c, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, dto.ListJournalsResponse{Journals: entries, NextToken: next})
}

// updateJournal godoc
// @Summary Update a journal entry
// @Description Replaces header fields and optionally all lines. A POSTED entry is reversed and reapplied.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Param   journal body dto.UpdateJournalRequest true "Changes"
// @Success 200 {object} domain.JournalEntry
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Security BearerAuth
// @Router /journals/{journalID} [put]
func (h *journalHandler) updateJournal(c *gin.Context) {
	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "UpdateJournal")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	entry, err := h.journalService.UpdateJournal(c.Request.Context(), req.ToDomain(c.Param("journalID")), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to update journal")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteJournal godoc
// @Summary Delete a DRAFT journal entry
// @Tags journals
// @Param   journalID path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Journal is not a draft"
// @Security BearerAuth
// @Router /journals/{journalID} [delete]
func (h *journalHandler) deleteJournal(c *gin.Context) {
	if err := h.journalService.DeleteJournal(c.Request.Context(), c.Param("journalID")); err != nil {
		respondWithError(c, err, "Failed to delete journal")
		return
	}
	c.Status(http.StatusNoContent)
}

// postJournal godoc
// @Summary Post a DRAFT journal entry
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} domain.JournalEntry
// @Failure 409 {object} map[string]string "Journal is not a draft"
// @Failure 422 {object} map[string]string "Entry is not balanced"
// @Security BearerAuth
// @Router /journals/{journalID}/post [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	entry, err := h.journalService.PostJournal(c.Request.Context(), c.Param("journalID"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to post journal")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// voidJournal godoc
// @Summary Void a journal entry
// @Description Reverses the balances of a POSTED entry exactly once
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} domain.JournalEntry
// @Failure 409 {object} map[string]string "Journal already void or reconciled"
// @Security BearerAuth
// @Router /journals/{journalID}/void [post]
func (h *journalHandler) voidJournal(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	entry, err := h.journalService.VoidJournal(c.Request.Context(), c.Param("journalID"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to void journal")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// createFromTemplate godoc
// @Summary Create a DRAFT entry from a template
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   request body dto.FromTemplateRequest true "Template name and date"
// @Success 201 {object} domain.JournalEntry
// @Failure 404 {object} map[string]string "Template not found"
// @Security BearerAuth
// @Router /journals/from-template [post]
func (h *journalHandler) createFromTemplate(c *gin.Context) {
	var req dto.FromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateFromTemplate")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	entry, err := h.templateService.CreateFromTemplate(c.Request.Context(), req.Name, req.EntryDate, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create journal from template")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal created from template",
		slog.String("template", req.Name), slog.String("journal_id", entry.JournalID))
	c.JSON(http.StatusCreated, entry)
}

// listTemplates godoc
// @Summary List journal templates
// @Tags journals
// @Produce  json
// @Success 200 {array} domain.JournalTemplate
// @Security BearerAuth
// @Router /templates [get]
func (h *journalHandler) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.templateService.ListTemplates())
}
