package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key formatting
	"time"     // Cache TTL

	"parcel_system/internal/domain" // Importing domain models
	"parcel_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// metricsTTL bounds how stale a cached dashboard block may be
const metricsTTL = 60 * time.Second

// CustomerMetrics summarizes the caller's own parcels
type CustomerMetrics struct {
	Total     int64 `json:"total"`     // All parcels owned by the customer
	Pending   int64 `json:"pending"`   // Count with status PENDING
	InTransit int64 `json:"inTransit"` // Count with status IN_TRANSIT
	Delivered int64 `json:"delivered"` // Count with status DELIVERED
	Failed    int64 `json:"failed"`    // Count with status FAILED
}

// AgentMetrics summarizes the caller's assignments
type AgentMetrics struct {
	AssignedToday int64 `json:"assignedToday"` // Assigned parcels created today
	Delivered     int64 `json:"delivered"`     // Assigned parcels delivered
	Failed        int64 `json:"failed"`        // Assigned parcels failed
}

// HomeHandler is the public landing page
func HomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Parcel booking and delivery tracking service"})
}

// LoginPageHandler is the public login page placeholder; the RouteGuard
// bounces authenticated visitors to their dashboard before this runs
func LoginPageHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "login"})
}

// RegisterPageHandler is the public registration page placeholder
func RegisterPageHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register"})
}

// AdminDashboardHandler serves the fleet-wide metric block
func AdminDashboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()                                // Context for Redis operations
		cacheKey := "metrics:admin"                                // Single global key
		var metrics AdminMetrics                                   // Metric block to fill
		found, err := utils.GetCache(ctx, rdb, cacheKey, &metrics) // Try the cache first
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": true})
			return
		}
		// Recompute over the full parcel set
		metrics, mErr := adminMetrics(db)
		if mErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, metrics, metricsTTL)       // Cache the block
		c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": false}) // Return the block
	}
}

// CustomerDashboardHandler serves per-status counts over the caller's parcels
func CustomerDashboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "metrics:customer:" + strconv.Itoa(int(userID.(uint)))
		var metrics CustomerMetrics // Metric block to fill
		found, err := utils.GetCache(ctx, rdb, cacheKey, &metrics)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": true})
			return
		}
		own := db.Model(&domain.Parcel{}).Where("customer_id = ?", userID) // Caller's parcels
		if err := own.Count(&metrics.Total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		// One count per status value
		counts := map[domain.Status]*int64{
			domain.StatusPending:   &metrics.Pending,
			domain.StatusInTransit: &metrics.InTransit,
			domain.StatusDelivered: &metrics.Delivered,
			domain.StatusFailed:    &metrics.Failed,
		}
		for status, dest := range counts {
			if err := db.Model(&domain.Parcel{}).
				Where("customer_id = ? AND status = ?", userID, status).
				Count(dest).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
				return
			}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, metrics, metricsTTL)       // Cache the block
		c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": false}) // Return the block
	}
}

// AgentDashboardHandler serves counts over the caller's assignments
func AgentDashboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "metrics:agent:" + strconv.Itoa(int(userID.(uint)))
		var metrics AgentMetrics // Metric block to fill
		found, err := utils.GetCache(ctx, rdb, cacheKey, &metrics)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": true})
			return
		}
		// Assigned parcels booked since local midnight
		if err := db.Model(&domain.Parcel{}).
			Where("assigned_agent_id = ? AND created_at >= ?", userID, startOfToday()).
			Count(&metrics.AssignedToday).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		// Delivered assignments
		if err := db.Model(&domain.Parcel{}).
			Where("assigned_agent_id = ? AND status = ?", userID, domain.StatusDelivered).
			Count(&metrics.Delivered).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		// Failed assignments
		if err := db.Model(&domain.Parcel{}).
			Where("assigned_agent_id = ? AND status = ?", userID, domain.StatusFailed).
			Count(&metrics.Failed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, metrics, metricsTTL)       // Cache the block
		c.JSON(http.StatusOK, gin.H{"metrics": metrics, "cached": false}) // Return the block
	}
}
