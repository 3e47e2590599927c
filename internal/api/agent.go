package api

import (
	"net/http" // HTTP status codes

	"parcel_system/internal/domain"    // Importing domain models
	"parcel_system/internal/lifecycle" // Parcel business rules

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// StatusUpdateRequest is the payload for an agent status update
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"` // Target status must be provided
}

// ListAssignedParcelsHandler returns the parcels assigned to the
// authenticated agent, newest first
func ListAssignedParcelsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var parcels []domain.Parcel // Slice to hold parcels
		// Fetch only parcels assigned to the caller
		if err := db.Where("assigned_agent_id = ?", userID).
			Order("created_at desc").
			Find(&parcels).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parcels"})
			return
		}
		c.JSON(http.StatusOK, parcels) // Return the parcel list
	}
}

// UpdateParcelStatusHandler moves an assigned parcel along the lifecycle.
// A parcel that exists but belongs to another agent answers 404, not 403,
// so the caller cannot probe for foreign parcels.
func UpdateParcelStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req StatusUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// An unknown status value is invalid input regardless of the parcel
		next := domain.Status(req.Status)
		if !next.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
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
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		// Assignee gate plus the transition table
		if err := lifecycle.StatusUpdateAllowed(&parcel, userID.(uint), next); err != nil {
			if err == lifecycle.ErrNotAssignee {
				c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		previous := parcel.Status // Remember the state we left
		// Persist the transition
		if err := db.Model(&parcel).Update("status", next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
		// Log the transition
		logrus.WithFields(logrus.Fields{
			"parcel_id": parcel.ID,     // Updated parcel
			"agent_id":  userID.(uint), // Assigned agent
			"from":      previous,      // Previous status
			"to":        next,          // New status
		}).Info("Parcel status updated")
		invalidateParcelCaches(c)     // Derived views are stale now
		c.JSON(http.StatusOK, parcel) // Return the updated parcel
	}
}
