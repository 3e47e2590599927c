package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Date range handling

	"parcel_system/internal/domain" // Importing domain models
	"parcel_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// adminPageSize is the fixed page size for the admin parcel listing
const adminPageSize = 20

// AgentResponse is the agent directory entry returned to admins
type AgentResponse struct {
	ID    uint   `json:"id"`    // Agent user ID
	Name  string `json:"name"`  // Agent name
	Email string `json:"email"` // Agent email
}

// AssignRequest is the payload for assigning an agent to a parcel
type AssignRequest struct {
	AgentID uint `json:"agentId" binding:"required"` // Agent ID must be provided
}

// AdminMetrics is the fleet-wide metric block
type AdminMetrics struct {
	DailyBookings    int64   `json:"dailyBookings"`    // Parcels created today
	FailedDeliveries int64   `json:"failedDeliveries"` // Parcels with status FAILED
	TotalCOD         float64 `json:"totalCOD"`         // Sum of COD amounts over non-prepaid parcels
}

// startOfToday returns the caller-local midnight boundary
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// adminMetrics computes the global metric block, always over the full
// parcel set rather than the current page
func adminMetrics(db *gorm.DB) (AdminMetrics, error) {
	var m AdminMetrics
	// Parcels booked since local midnight
	if err := db.Model(&domain.Parcel{}).
		Where("created_at >= ?", startOfToday()).
		Count(&m.DailyBookings).Error; err != nil {
		return m, err
	}
	// Parcels currently failed
	if err := db.Model(&domain.Parcel{}).
		Where("status = ?", domain.StatusFailed).
		Count(&m.FailedDeliveries).Error; err != nil {
		return m, err
	}
	// Outstanding cash on delivery across all non-prepaid parcels
	if err := db.Model(&domain.Parcel{}).
		Where("prepaid = ?", false).
		Select("COALESCE(SUM(cod_amount), 0)").
		Scan(&m.TotalCOD).Error; err != nil {
		return m, err
	}
	return m, nil
}

// ListAllParcelsHandler returns every parcel with optional tracking-code
// search and creation-date range, paginated at a fixed size, plus the
// global metric block
func ListAllParcelsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"search", "from", "to", "page"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:parcels:" + strings.Join(keyParts, ":")
		var cached struct {
			Parcels    []domain.Parcel `json:"parcels"`    // List of parcels
			Metrics    AdminMetrics    `json:"metrics"`    // Global metric block
			TotalPages int             `json:"totalPages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"parcels":    cached.Parcels,    // List of parcels
				"metrics":    cached.Metrics,    // Global metric block
				"totalPages": cached.TotalPages, // Total pages
				"cached":     true,              // Indicate response is from cache
			})
			return
		}
		page := 1 // Default page number
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		offset := (page - 1) * adminPageSize // Calculate offset for pagination
		query := db.Model(&domain.Parcel{})  // Start building the query
		// Case-insensitive tracking code substring search
		if search := c.Query("search"); search != "" {
			query = query.Where("LOWER(tracking_code) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		// Creation date range: from-day start, inclusive
		if from := c.Query("from"); from != "" {
			if t, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
				query = query.Where("created_at >= ?", t)
			}
		}
		// Creation date range: to-day end 23:59:59.999, inclusive
		if to := c.Query("to"); to != "" {
			if t, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
				endOfDay := t.Add(24*time.Hour - time.Millisecond)
				query = query.Where("created_at <= ?", endOfDay)
			}
		}
		var total int64 // Total parcel count for the filter
		// Get total count of parcels matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count parcels"})
			return
		}
		var parcels []domain.Parcel // Slice to hold parcels
		// Fetch the current page, newest first, with the owning customer
		// and assigned agent embedded in each row
		if err := query.Preload("Customer").Preload("AssignedAgent").
			Order("created_at desc").Offset(offset).Limit(adminPageSize).Find(&parcels).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parcels"})
			return
		}
		// Metrics are global, not limited to the filtered page
		metrics, err := adminMetrics(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + adminPageSize - 1) / adminPageSize
		respData := gin.H{
			"parcels":    parcels,    // List of parcels
			"metrics":    metrics,    // Global metric block
			"totalPages": totalPages, // Total pages
			"cached":     false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListAgentsHandler returns id, name and email of every AGENT user
func ListAgentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []domain.User // Slice to hold agent users
		// Fetch all users with the AGENT role
		if err := db.Where("role = ?", domain.RoleAgent).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agents"})
			return
		}
		// Map users to the trimmed response format
		resp := make([]AgentResponse, len(users))
		for i, u := range users {
			resp[i] = AgentResponse{
				ID:    u.ID,    // Agent user ID
				Name:  u.Name,  // Agent name
				Email: u.Email, // Agent email
			}
		}
		c.JSON(http.StatusOK, resp) // Return the agent directory
	}
}

// AssignAgentHandler sets the assigned agent on a parcel, any status.
// The target must be an existing user with the AGENT role.
func AssignAgentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Agent ID required"})
			return
		}
		id, ok := parcelID(c)
		// A malformed id is indistinguishable from a missing parcel
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		var parcel domain.Parcel // Fetch parcel by ID
		if err := db.First(&parcel, id).Error; err != nil {
			// If parcel not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		// The assignee must be a real agent account
		var agent domain.User
		if err := db.Where("id = ? AND role = ?", req.AgentID, domain.RoleAgent).First(&agent).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Agent not found"})
			return
		}
		// Persist the assignment
		if err := db.Model(&parcel).Update("assigned_agent_id", agent.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign agent"})
			return
		}
		// Log the assignment
		logrus.WithFields(logrus.Fields{
			"parcel_id": parcel.ID, // Assigned parcel
			"agent_id":  agent.ID,  // Assigned agent
		}).Info("Agent assigned")
		invalidateParcelCaches(c)     // Derived views are stale now
		c.JSON(http.StatusOK, parcel) // Return the updated parcel
	}
}
