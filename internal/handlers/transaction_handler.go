package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/services"
)

// TransactionHandler handles payment requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a
// payment. Amounts are signed minor units; expenses are negative.
type CreateTransactionRequest struct {
	PersonID     uint    `json:"person_id" binding:"required"`
	WalletID     uint    `json:"wallet_id" binding:"required"`
	ObligationID *uint   `json:"obligation_id"`
	Amount       int64   `json:"amount"`
	Description  *string `json:"description" binding:"omitempty,max=500"`
	Date         *string `json:"date" binding:"omitempty,iso_date"`
}

// CreateTransaction handles the creation of a payment
// @Summary     Create a transaction
// @Description Record a payment. When obligation_id is set the amount is applied against that obligation.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Period, person, wallet or obligation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), services.CreateTransactionInput{
		PersonID:     req.PersonID,
		WalletID:     req.WalletID,
		ObligationID: req.ObligationID,
		Date:         date,
		Description:  req.Description,
		Amount:       req.Amount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "wallet_id": req.WalletID, "obligation_id": req.ObligationID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions handles listing the payments of the period containing a date
// @Summary     List transactions
// @Description List every payment dated within the period containing date, newest first
// @Tags        transactions
// @Produce     json
// @Param       date query string false "Calendar date (YYYY-MM-DD, default today)"
// @Success     200 {object} services.TransactionList "Payments of the period"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     404 {object} ErrorResponse "No period contains the date"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := h.transactionService.ListTransactions(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Partially update a payment. Changing obligation_id or amount reverses the old application and applies the new one; obligation_id null unlinks.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int                          true "Transaction ID"
// @Param       request body services.TransactionUpdate true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction, period, person, wallet or obligation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.TransactionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), txID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "UPDATE_TRANSACTION", "transaction", txID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a payment, reversing it on its linked obligation. The deleted record is returned.
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Deleted transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(),
		map[string]interface{}{"amount": deleted.Amount, "obligation_id": deleted.ObligationID})

	c.JSON(http.StatusOK, gin.H{"transaction": deleted})
}

// ReconcileRequest carries the real remaining balance of each wallet.
type ReconcileRequest struct {
	PersonID uint                       `json:"person_id"`
	Date     *string                    `json:"date" binding:"omitempty,iso_date"`
	Wallets  []services.WalletRemaining `json:"wallets" binding:"required,min=1,dive"`
}

// Reconcile handles wallet reconciliation
// @Summary     Reconcile wallets
// @Description Insert one balancing payment per wallet so its period balance matches the stated remaining amount
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body ReconcileRequest true "Remaining balance per wallet"
// @Success     201 {array}  models.Transaction "Balancing payments created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Period, person or wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/reconciliation [post]
func (h *TransactionHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.transactionService.Reconcile(c.Request.Context(), services.ReconcileInput{
		PersonID: req.PersonID,
		Date:     date,
		Wallets:  req.Wallets,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	for i := range created {
		h.auditService.Log(c.Request.Context(), "RECONCILE_WALLET", "transaction", created[i].ID, c.ClientIP(),
			map[string]interface{}{"wallet_id": created[i].WalletID, "amount": created[i].Amount})
	}

	c.JSON(http.StatusCreated, gin.H{"transactions": created})
}
