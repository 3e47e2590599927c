package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parcel_system/internal/domain"
	"parcel_system/internal/middleware"
	"parcel_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "api-test-secret"

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&domain.User{}, &domain.Parcel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

// newTestRouter mirrors the server's route wiring, with caching disabled.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Handlers expect the key to exist; a nil client disables caching
	withRedis := func(c *gin.Context) {
		c.Set("redisClient", (*redis.Client)(nil))
		c.Next()
	}

	r.POST("/register", RegisterHandler(db))
	r.POST("/login", LoginHandler(db, testSecret))

	pages := r.Group("/")
	pages.Use(middleware.RouteGuard(testSecret))
	pages.GET("", HomeHandler)
	pages.GET("/dashboard/admin", AdminDashboardHandler(db, nil))
	pages.GET("/dashboard/agent", AgentDashboardHandler(db, nil))
	pages.GET("/dashboard/customer", CustomerDashboardHandler(db, nil))

	parcelGroup := r.Group("/parcels")
	parcelGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.RequireRole(domain.RoleCustomer), withRedis)
	parcelGroup.POST("", CreateParcelHandler(db))
	parcelGroup.GET("", ListParcelsHandler(db))
	parcelGroup.GET("/:id", GetParcelHandler(db))
	parcelGroup.PATCH("/:id", UpdateParcelHandler(db))
	parcelGroup.DELETE("/:id", DeleteParcelHandler(db))

	agentGroup := r.Group("/agent")
	agentGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.RequireRole(domain.RoleAgent), withRedis)
	agentGroup.GET("/parcels", ListAssignedParcelsHandler(db))
	agentGroup.PATCH("/parcels/:id", UpdateParcelStatusHandler(db))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.RequireRole(domain.RoleAdmin), withRedis)
	adminGroup.GET("/parcels", ListAllParcelsHandler(db, nil))
	adminGroup.GET("/agents", ListAgentsHandler(db))
	adminGroup.PATCH("/parcels/:id/assign", AssignAgentHandler(db))

	return r
}

// seedUser inserts a user with a bcrypt-hashed password.
func seedUser(t *testing.T, db *gorm.DB, name, email string, role domain.Role) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := domain.User{Name: name, Email: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// bearer issues a signed token for the user.
func bearer(t *testing.T, user domain.User) string {
	t.Helper()

	token, err := utils.GenerateJWT(user.ID, user.Role, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

// doJSON performs a request with an optional JSON body and auth header.
func doJSON(t *testing.T, router *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(b)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into dest.
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
