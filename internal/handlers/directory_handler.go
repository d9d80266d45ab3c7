package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/services"
)

// DirectoryHandler handles people and wallet requests.
type DirectoryHandler struct {
	directoryService services.DirectoryServicer
	auditService     services.AuditServicer
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directoryService services.DirectoryServicer, auditService services.AuditServicer) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService, auditService: auditService}
}

// CreateNamedRequest is the payload for creating a person or a wallet.
type CreateNamedRequest struct {
	Name string `json:"name" binding:"required,max=100,ledger_name"`
}

// CreatePerson handles the creation of a person
// @Summary     Create a person
// @Description Register a person payments and obligations can be attributed to
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       request body CreateNamedRequest true "Person details"
// @Success     201 {object} models.Person "Person created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Name already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [post]
func (h *DirectoryHandler) CreatePerson(c *gin.Context) {
	var req CreateNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.directoryService.CreatePerson(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "CREATE_PERSON", "person", person.ID, c.ClientIP(),
		map[string]interface{}{"name": person.Name})

	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// ListPeople handles listing all people
// @Summary     List people
// @Tags        people
// @Produce     json
// @Success     200 {array}  models.Person "People"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [get]
func (h *DirectoryHandler) ListPeople(c *gin.Context) {
	people, err := h.directoryService.ListPeople(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": people})
}

// GetPerson handles the retrieval of a person
// @Summary     Get person by ID
// @Tags        people
// @Produce     json
// @Param       id path int true "Person ID"
// @Success     200 {object} models.Person "Person details"
// @Failure     400 {object} ErrorResponse "Invalid person ID"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id} [get]
func (h *DirectoryHandler) GetPerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	person, err := h.directoryService.GetPersonByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// CreateWallet handles the creation of a wallet
// @Summary     Create a wallet
// @Description Register a wallet (a source of funds such as cash or a bank account)
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Param       request body CreateNamedRequest true "Wallet details"
// @Success     201 {object} models.Wallet "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Name already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [post]
func (h *DirectoryHandler) CreateWallet(c *gin.Context) {
	var req CreateNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.directoryService.CreateWallet(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "CREATE_WALLET", "wallet", wallet.ID, c.ClientIP(),
		map[string]interface{}{"name": wallet.Name})

	c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
}

// ListWallets handles listing all wallets
// @Summary     List wallets
// @Tags        wallets
// @Produce     json
// @Success     200 {array}  models.Wallet "Wallets"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [get]
func (h *DirectoryHandler) ListWallets(c *gin.Context) {
	wallets, err := h.directoryService.ListWallets(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": wallets})
}

// GetWallet handles the retrieval of a wallet
// @Summary     Get wallet by ID
// @Tags        wallets
// @Produce     json
// @Param       id path int true "Wallet ID"
// @Success     200 {object} models.Wallet "Wallet details"
// @Failure     400 {object} ErrorResponse "Invalid wallet ID"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [get]
func (h *DirectoryHandler) GetWallet(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.directoryService.GetWalletByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}
