package main

import (
	"context"                           // context package is needed for Redis operations
	"log"                               // log package is needed for logging
	"parcel_system/internal/api"        // Custom package for API handlers
	"parcel_system/internal/config"     // Custom package for configuration
	"parcel_system/internal/domain"     // Custom package for domain models
	"parcel_system/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client; the service runs without caching when Redis is down
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Warn("Redis unavailable, running without cache")
		redisClient = nil
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Inject the Redis client so mutating handlers can invalidate caches
	withRedis := func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	}

	// Auth routes
	r.POST("/register", api.RegisterHandler(db))          // Registration endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Page routes, gated by the route guard's redirect rules
	pages := r.Group("/")
	pages.Use(middleware.RouteGuard(cfg.JWTSecret))
	pages.GET("", api.HomeHandler)                                                  // Public landing page
	pages.GET("/login", api.LoginPageHandler)                                       // Public login page
	pages.GET("/register", api.RegisterPageHandler)                                 // Public registration page
	pages.GET("/dashboard/admin", api.AdminDashboardHandler(db, redisClient))       // Admin metrics dashboard
	pages.GET("/dashboard/agent", api.AgentDashboardHandler(db, redisClient))       // Agent metrics dashboard
	pages.GET("/dashboard/customer", api.CustomerDashboardHandler(db, redisClient)) // Customer metrics dashboard

	// Customer parcel routes (protected by JWT, customer only)
	parcelGroup := r.Group("/parcels")
	parcelGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(domain.RoleCustomer), withRedis)
	parcelGroup.POST("", api.CreateParcelHandler(db))       // Book a parcel
	parcelGroup.GET("", api.ListParcelsHandler(db))         // List own parcels
	parcelGroup.GET("/:id", api.GetParcelHandler(db))       // View one own parcel
	parcelGroup.PATCH("/:id", api.UpdateParcelHandler(db))  // Edit a pending parcel
	parcelGroup.DELETE("/:id", api.DeleteParcelHandler(db)) // Delete a pending parcel

	// Agent routes (protected, agent only)
	agentGroup := r.Group("/agent")
	agentGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(domain.RoleAgent), withRedis)
	agentGroup.GET("/parcels", api.ListAssignedParcelsHandler(db))      // List assigned parcels
	agentGroup.PATCH("/parcels/:id", api.UpdateParcelStatusHandler(db)) // Update delivery status

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(domain.RoleAdmin), withRedis)
	adminGroup.GET("/parcels", api.ListAllParcelsHandler(db, redisClient)) // Filtered, paginated listing with metrics
	adminGroup.GET("/agents", api.ListAgentsHandler(db))                   // Agent directory
	adminGroup.PATCH("/parcels/:id/assign", api.AssignAgentHandler(db))    // Assign an agent

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
