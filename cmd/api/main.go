package main

import (
	"fmt"
	"net/http"
	"os"

	"altvest/internal/config"
	"altvest/internal/database"
	"altvest/internal/handlers"
	"altvest/internal/logger"
	"altvest/internal/middleware"
	"altvest/internal/services"
	"altvest/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "altvest/internal/docs" // Import swagger docs
)

// @title           Altvest API
// @version         1.0
// @description     Altvest is a multi-tenant fund administration platform for managing investment vehicle hierarchies, delegated access, investments, and investor portfolio reporting.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	accessService := services.NewAccessService(db)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	structureService := services.NewStructureService(db, accessService)
	investmentService := services.NewInvestmentService(db, accessService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	structureHandler := handlers.NewStructureHandler(structureService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile and administration
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/users/:id/role", authHandler.UpdateRole)

	// Structure routes
	structures := protected.Group("/structures")
	structures.POST("", structureHandler.CreateStructure)
	structures.GET("", structureHandler.ListStructures)
	structures.GET("/:id", structureHandler.GetStructure)
	structures.PUT("/:id", structureHandler.UpdateStructure)
	structures.DELETE("/:id", structureHandler.DeleteStructure)
	structures.GET("/:id/children", structureHandler.GetChildren)
	structures.PUT("/:id/financials", structureHandler.UpdateFinancials)
	structures.POST("/:id/admins", structureHandler.GrantAdmin)
	structures.GET("/:id/admins", structureHandler.ListAdmins)
	structures.DELETE("/:id/admins/:userId", structureHandler.RevokeAdmin)
	structures.POST("/:id/investors", structureHandler.AddInvestor)
	structures.GET("/:id/investors", structureHandler.ListInvestors)
	structures.DELETE("/:id/investors/:userId", structureHandler.RemoveInvestor)
	structures.GET("/:id/investments", investmentHandler.ListInvestments)
	structures.GET("/:id/portfolio", investmentHandler.GetStructurePortfolio)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("/:id", investmentHandler.GetInvestment)
	investments.PUT("/:id", investmentHandler.UpdateInvestment)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)
	investments.PUT("/:id/performance", investmentHandler.UpdatePerformance)
	investments.POST("/:id/exit", investmentHandler.MarkExited)

	// Investor dashboard
	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	log.Infof("Starting Altvest backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
