package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"altvest/internal/handlers"
	"altvest/internal/logger"
	"altvest/internal/middleware"
	"altvest/internal/models"
	"altvest/internal/services"
	"altvest/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Structure{},
		&models.StructureAdmin{},
		&models.StructureInvestorLink{},
		&models.Investment{},
		&models.CapitalCall{},
		&models.CapitalCallAllocation{},
		&models.Distribution{},
		&models.DistributionAllocation{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	accessService := services.NewAccessService(db)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	structureService := services.NewStructureService(db, accessService)
	investmentService := services.NewInvestmentService(db, accessService)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	structureHandler := handlers.NewStructureHandler(structureService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/users/:id/role", authHandler.UpdateRole)

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

	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("/:id", investmentHandler.GetInvestment)
	investments.PUT("/:id", investmentHandler.UpdateInvestment)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)
	investments.PUT("/:id/performance", investmentHandler.UpdatePerformance)
	investments.POST("/:id/exit", investmentHandler.MarkExited)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
// New accounts always start as investors.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// registerUserWithRole registers a user and raises their role directly in the
// database, then logs them in again so the token carries the new role.
func (app *testApp) registerUserWithRole(t *testing.T, email, password string, role models.Role) (token, userID string) {
	t.Helper()
	_, userID = app.registerUser(t, email, password)
	if err := app.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error; err != nil {
		t.Fatalf("failed to update role: %v", err)
	}
	token = app.loginUser(t, email, password)
	return token, userID
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}
