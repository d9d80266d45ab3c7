package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/services"
)

// ObligationHandler handles obligation ("must pay") requests.
type ObligationHandler struct {
	obligationService services.ObligationServicer
	auditService      services.AuditServicer
}

// NewObligationHandler creates a new ObligationHandler.
func NewObligationHandler(obligationService services.ObligationServicer, auditService services.AuditServicer) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService, auditService: auditService}
}

// CreateObligationRequest represents the request payload for creating an obligation.
type CreateObligationRequest struct {
	PersonID    uint   `json:"person_id" binding:"required"`
	PeriodID    uint   `json:"period_id" binding:"required"`
	Description string `json:"description" binding:"max=500"`
	Amount      int64  `json:"amount" binding:"gte=0"`
}

// CreateObligation handles the creation of an obligation
// @Summary     Create an obligation
// @Description Plan an amount a person must pay within a period
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Param       request body CreateObligationRequest true "Obligation details"
// @Success     201 {object} models.Obligation "Obligation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person or period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations [post]
func (h *ObligationHandler) CreateObligation(c *gin.Context) {
	var req CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ob, err := h.obligationService.CreateObligation(c.Request.Context(), services.CreateObligationInput{
		PersonID:    req.PersonID,
		PeriodID:    req.PeriodID,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "CREATE_OBLIGATION", "obligation", ob.ID, c.ClientIP(),
		map[string]interface{}{"person_id": req.PersonID, "period_id": req.PeriodID, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"obligation": ob})
}

// ListObligations handles listing the obligations of the period containing a date
// @Summary     List obligations
// @Tags        obligations
// @Produce     json
// @Param       date query string false "Calendar date (YYYY-MM-DD, default today)"
// @Success     200 {object} services.ObligationList "Obligations of the period"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     404 {object} ErrorResponse "No period contains the date"
// @Router      /obligations [get]
func (h *ObligationHandler) ListObligations(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := h.obligationService.ListObligations(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetObligation handles the retrieval of an obligation
// @Summary     Get obligation by ID
// @Tags        obligations
// @Produce     json
// @Param       id path int true "Obligation ID"
// @Success     200 {object} models.Obligation "Obligation details"
// @Failure     400 {object} ErrorResponse "Invalid obligation ID"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [get]
func (h *ObligationHandler) GetObligation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ob, err := h.obligationService.GetObligationByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"obligation": ob})
}

// UpdateObligation handles a partial update of an obligation
// @Summary     Update obligation
// @Description Change an obligation's fields. A new amount replaces the outstanding amount as is.
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Param       id      path int                       true "Obligation ID"
// @Param       request body services.ObligationUpdate true "Fields to update"
// @Success     200 {object} models.Obligation "Updated obligation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [put]
func (h *ObligationHandler) UpdateObligation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.ObligationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ob, err := h.obligationService.UpdateObligation(c.Request.Context(), id, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "UPDATE_OBLIGATION", "obligation", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"obligation": ob})
}

// DeleteObligation handles the deletion of an obligation
// @Summary     Delete obligation
// @Description Delete an obligation. Payments applied against it are kept and unlinked.
// @Tags        obligations
// @Produce     json
// @Param       id path int true "Obligation ID"
// @Success     200 {object} MessageResponse "Obligation deleted"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [delete]
func (h *ObligationHandler) DeleteObligation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.obligationService.DeleteObligation(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "DELETE_OBLIGATION", "obligation", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Obligation deleted successfully"})
}
