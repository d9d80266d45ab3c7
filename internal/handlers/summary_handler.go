package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger/internal/services"
)

// SummaryHandler serves period reports.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary handles the personal period summary
// @Summary     Period summary
// @Description Spending, remaining budget, days left and per-day allowance for the period containing date
// @Tags        summary
// @Produce     json
// @Param       person_id query int    false "Person ID (default: primary person)"
// @Param       date      query string false "Calendar date (YYYY-MM-DD, default today)"
// @Success     200 {object} services.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid query"
// @Failure     404 {object} ErrorResponse "Person or period not found"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	personID, err := parseIDQuery(c, "person_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.Summarize(c.Request.Context(), personID, date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetObligationSummary handles the obligation summary
// @Summary     Obligation summary
// @Description Outstanding obligations, paid amount and remainder for one person in the period containing date
// @Tags        summary
// @Produce     json
// @Param       person_id query int    false "Person ID (default: obligation person)"
// @Param       date      query string false "Calendar date (YYYY-MM-DD, default today)"
// @Success     200 {object} services.ObligationSummary "Obligation summary"
// @Failure     400 {object} ErrorResponse "Invalid query"
// @Failure     404 {object} ErrorResponse "Person or period not found"
// @Router      /summary/obligations [get]
func (h *SummaryHandler) GetObligationSummary(c *gin.Context) {
	personID, err := parseIDQuery(c, "person_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.SummarizeObligations(c.Request.Context(), personID, date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
