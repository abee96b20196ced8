// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/handlers"
	"github.com/greenhydro/subsidy-backend/internal/metrics"
	"github.com/greenhydro/subsidy-backend/internal/middleware"
	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/socket"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	hub := socket.NewHub()
	workflowMetrics := metrics.New()
	notificationService := services.NewNotificationService(cfg)
	storageService, _ := services.NewStorageService(cfg)
	transferService := services.NewChainTransferService(cfg)
	riskRouter := services.NewRiskRouter(cfg.Subsidy.RiskThreshold)

	producerService := services.NewProducerService(db)
	certifierService := services.NewCertifierService(db)
	documentService := services.NewDocumentService(db, riskRouter)
	ledgerService := services.NewLedgerService(db)
	approvalService := services.NewApprovalService(
		db, certifierService, documentService, ledgerService, riskRouter,
		transferService, notificationService, workflowMetrics, hub, cfg,
	)

	// Initialize handlers
	producerHandler := handlers.NewProducerHandler(producerService)
	documentHandler := handlers.NewDocumentHandler(documentService, approvalService, storageService)
	poolHandler := handlers.NewPoolHandler(ledgerService)
	certifierHandler := handlers.NewCertifierHandler(certifierService)
	authHandler := handlers.NewAuthHandler(certifierService, cfg)
	adminHandler := handlers.NewAdminHandler(documentService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	limits := middleware.NewRateLimits(cfg)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(limits.General())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication
	auth := r.Group("/auth")
	auth.Use(limits.Auth())
	{
		auth.POST("/token", authHandler.IssueToken)
	}

	// Producer routes
	producers := r.Group("/producers")
	{
		producers.POST("", producerHandler.Register)
		producers.GET("", producerHandler.ListProducers)
		producers.GET("/:id", producerHandler.GetProducer)
	}

	// Document routes
	documents := r.Group("/documents")
	{
		documents.POST("", documentHandler.SubmitDocument)
		documents.GET("", documentHandler.ListDocuments)
		documents.GET("/:id", documentHandler.GetDocument)
		documents.PUT("/:id/status", documentHandler.UpdateStatus)
		documents.POST("/:id/risk", documentHandler.SetRiskScore)
		documents.POST("/:id/upload", limits.Upload(), documentHandler.UploadFile)
		documents.GET("/:id/download", middleware.AuthRequired(), documentHandler.DownloadURL)
	}

	// Subsidy pool routes
	pools := r.Group("/pools")
	{
		pools.POST("", poolHandler.CreatePool)
		pools.POST("/:id/deposit", poolHandler.Deposit)
		pools.GET("/:id/balance", poolHandler.Balance)
		pools.GET("/:id/records", middleware.AuthRequired(), poolHandler.ListRecords)
	}

	// Certifier routes
	certifiers := r.Group("/certifiers")
	{
		certifiers.POST("", certifierHandler.AddCertifier)
		certifiers.GET("", certifierHandler.ListCertifiers)
		certifiers.DELETE("/:id", certifierHandler.RevokeCertifier)
	}

	// Admin dashboard
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/stats", adminHandler.GetStats)
	}

	// Live document feed for certifier dashboards
	r.GET("/ws/documents", wsHandler.ServeDocumentFeed)

	return r
}
