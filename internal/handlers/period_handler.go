package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
	"ledger/internal/services"
)

// PeriodHandler handles billing period requests.
type PeriodHandler struct {
	periodService services.PeriodServicer
	auditService  services.AuditServicer
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService services.PeriodServicer, auditService services.AuditServicer) *PeriodHandler {
	return &PeriodHandler{periodService: periodService, auditService: auditService}
}

// CreatePeriodRequest represents the request payload for creating a period.
// Both bounds are inclusive.
type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate string `json:"start_date" binding:"required,iso_date"`
	EndDate   string `json:"end_date" binding:"required,iso_date"`
}

// CreatePeriod handles the creation of a period
// @Summary     Create a period
// @Description Create a billing period covering start_date..end_date inclusive
// @Tags        periods
// @Accept      json
// @Produce     json
// @Param       request body CreatePeriodRequest true "Period details"
// @Success     201 {object} models.Period "Period created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [post]
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// iso_date has already checked both strings.
	start := models.MustParseDate(req.StartDate)
	end := models.MustParseDate(req.EndDate)

	period, err := h.periodService.CreatePeriod(c.Request.Context(), req.Name, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "CREATE_PERIOD", "period", period.ID, c.ClientIP(),
		map[string]interface{}{"name": period.Name, "start_date": req.StartDate, "end_date": req.EndDate})

	c.JSON(http.StatusCreated, gin.H{"period": period})
}

// ListPeriods handles listing all periods
// @Summary     List periods
// @Tags        periods
// @Produce     json
// @Success     200 {array}  models.Period "Periods, earliest first"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [get]
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodService.ListPeriods(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

// ResolvePeriod handles looking up the period containing a date
// @Summary     Resolve period for a date
// @Tags        periods
// @Produce     json
// @Param       date query string false "Calendar date (YYYY-MM-DD, default today)"
// @Success     200 {object} models.Period "Containing period"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     404 {object} ErrorResponse "No period contains the date"
// @Failure     409 {object} ErrorResponse "Date is covered by more than one period"
// @Router      /periods/resolve [get]
func (h *PeriodHandler) ResolvePeriod(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required"))
		return
	}

	period, err := h.periodService.Resolve(c.Request.Context(), *date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period})
}

// GetPeriod handles the retrieval of a period
// @Summary     Get period by ID
// @Tags        periods
// @Produce     json
// @Param       id path int true "Period ID"
// @Success     200 {object} models.Period "Period details"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Router      /periods/{id} [get]
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period})
}

// UpdatePeriod handles a partial update of a period
// @Summary     Update period
// @Description Rename a period or move its bounds. Bounds cannot move while obligations reference the period.
// @Tags        periods
// @Accept      json
// @Produce     json
// @Param       id      path int                  true "Period ID"
// @Param       request body services.PeriodUpdate true "Fields to update"
// @Success     200 {object} models.Period "Updated period"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period in use"
// @Router      /periods/{id} [put]
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.PeriodUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.periodService.UpdatePeriod(c.Request.Context(), id, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "UPDATE_PERIOD", "period", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// DeletePeriod handles the deletion of a period
// @Summary     Delete period
// @Tags        periods
// @Produce     json
// @Param       id path int true "Period ID"
// @Success     200 {object} MessageResponse "Period deleted"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period in use"
// @Router      /periods/{id} [delete]
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.periodService.DeletePeriod(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "DELETE_PERIOD", "period", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Period deleted successfully"})
}
