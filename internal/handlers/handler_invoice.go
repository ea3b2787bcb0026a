package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles invoices, bills and payments.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.POST("/:invoiceID/post", h.postInvoice)
	}
	rg.POST("/payments", h.recordPayment)
}

// createInvoice godoc
// @Summary Create a draft invoice or bill
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} domain.Invoice
// @Failure 409 {object} map[string]string "Duplicate invoice number"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateInvoice")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req.ToSpec(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce  json
// @Param   kind query string false "SALES or PURCHASE"
// @Param   contactID query string false "Contact"
// @Param   status query string false "DRAFT, POSTED or VOID"
// @Success 200 {array} domain.Invoice
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ListInvoices")
		return
	}
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), params.Filter())
	if err != nil {
		respondWithError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// postInvoice godoc
// @Summary Post an invoice to the ledger
// @Description Writes the balanced entry against the receivable or payable control account
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 422 {object} map[string]string "Control account missing"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/post [post]
func (h *invoiceHandler) postInvoice(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.PostInvoice(c.Request.Context(), c.Param("invoiceID"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to post invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// recordPayment godoc
// @Summary Record a payment
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Security BearerAuth
// @Router /payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "RecordPayment")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	payment, err := h.invoiceService.RecordPayment(c.Request.Context(), req.ToSpec(), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to record payment")
		return
	}
	c.JSON(http.StatusCreated, payment)
}
