package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	apperrors "ledger/internal/errors"
	"ledger/internal/metrics"
	"ledger/internal/middleware"
	"ledger/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Directory    services.DirectoryServicer
	Periods      services.PeriodServicer
	Obligations  services.ObligationServicer
	Transactions services.TransactionServicer
	Summaries    services.SummaryServicer
	Audit        services.AuditServicer
}

// NewRouter builds the gin engine with middleware, operational endpoints and
// the /api/v1 routes. m may be nil, in which case /metrics is not served.
func NewRouter(svc Services, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Rendered by middleware.ErrorHandler.
	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrRouteNotFound)
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil {
		router.GET("/metrics", m.Handler())
	}

	directoryHandler := NewDirectoryHandler(svc.Directory, svc.Audit)
	periodHandler := NewPeriodHandler(svc.Periods, svc.Audit)
	obligationHandler := NewObligationHandler(svc.Obligations, svc.Audit)
	transactionHandler := NewTransactionHandler(svc.Transactions, svc.Audit)
	summaryHandler := NewSummaryHandler(svc.Summaries)

	v1 := router.Group("/api/v1")

	people := v1.Group("/people")
	people.POST("", directoryHandler.CreatePerson)
	people.GET("", directoryHandler.ListPeople)
	people.GET("/:id", directoryHandler.GetPerson)

	wallets := v1.Group("/wallets")
	wallets.POST("", directoryHandler.CreateWallet)
	wallets.GET("", directoryHandler.ListWallets)
	wallets.GET("/:id", directoryHandler.GetWallet)

	periods := v1.Group("/periods")
	periods.POST("", periodHandler.CreatePeriod)
	periods.GET("", periodHandler.ListPeriods)
	periods.GET("/resolve", periodHandler.ResolvePeriod)
	periods.GET("/:id", periodHandler.GetPeriod)
	periods.PUT("/:id", periodHandler.UpdatePeriod)
	periods.DELETE("/:id", periodHandler.DeletePeriod)

	obligations := v1.Group("/obligations")
	obligations.POST("", obligationHandler.CreateObligation)
	obligations.GET("", obligationHandler.ListObligations)
	obligations.GET("/:id", obligationHandler.GetObligation)
	obligations.PUT("/:id", obligationHandler.UpdateObligation)
	obligations.DELETE("/:id", obligationHandler.DeleteObligation)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("/reconciliation", transactionHandler.Reconcile)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	summary := v1.Group("/summary")
	summary.GET("", summaryHandler.GetSummary)
	summary.GET("/obligations", summaryHandler.GetObligationSummary)

	return router
}
