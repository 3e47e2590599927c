package api

import (
	"context"       // Context for Redis operations
	"encoding/json" // json.Number for the COD amount field
	"net/http"      // HTTP status codes
	"strconv"       // Path id parsing

	"parcel_system/internal/domain"    // Importing domain models
	"parcel_system/internal/lifecycle" // Parcel business rules
	"parcel_system/internal/tracking"  // Tracking code generation
	"parcel_system/internal/utils"     // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ParcelRequest is the payload for booking and editing a parcel
type ParcelRequest struct {
	PickupAddress   string      `json:"pickupAddress" binding:"required"`   // Pickup address must be provided
	DeliveryAddress string      `json:"deliveryAddress" binding:"required"` // Delivery address must be provided
	ParcelType      string      `json:"parcelType" binding:"required"`      // Parcel type must be provided
	PaymentMethod   string      `json:"paymentMethod" binding:"required"`   // Payment method must be provided
	CODAmount       json.Number `json:"codAmount"`                          // COD amount, accepts number or string
}

// createAttempts bounds retries on a tracking code collision
const createAttempts = 5

// invalidateParcelCaches drops every cached view derived from the parcel
// set after a mutation
func invalidateParcelCaches(c *gin.Context) {
	if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
		ctx := context.Background()                               // Context for Redis operations
		_ = utils.DeleteCacheByPrefix(ctx, rdb, "admin:parcels:") // Admin listings embed filters in the key
		_ = utils.DeleteCacheByPrefix(ctx, rdb, "metrics:")       // Dashboard metric blocks
	}
}

// parcelID parses the :id path parameter. Only a typed id ever reaches
// the database; anything non-numeric answers the same 404 as a missing
// parcel.
func parcelID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err == nil
}

// CreateParcelHandler books a new parcel for the authenticated customer
func CreateParcelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ParcelRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		// Validate the parcel type against the closed enum
		parcelType := domain.ParcelType(req.ParcelType)
		if !parcelType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parcel type"})
			return
		}
		// Normalize the payment pair
		prepaid, cod, err := lifecycle.PaymentFields(domain.PaymentMethod(req.PaymentMethod), req.CODAmount.String())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		parcel := domain.Parcel{
			PickupAddress:   req.PickupAddress,    // Pickup address
			DeliveryAddress: req.DeliveryAddress,  // Delivery address
			ParcelType:      parcelType,           // Validated parcel type
			Status:          domain.StatusPending, // Every parcel starts pending
			Prepaid:         prepaid,              // Payment flag
			CODAmount:       cod,                  // Nil when prepaid
			CustomerID:      userID.(uint),        // Owning customer
		}
		// The tracking code carries a unique index; retry on a collision
		created := false
		for i := 0; i < createAttempts; i++ {
			parcel.TrackingCode = tracking.NewCode()
			if err := db.Create(&parcel).Error; err == nil {
				created = true
				break
			}
		}
		if !created {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create parcel"})
			return
		}
		// Log the booking
		logrus.WithFields(logrus.Fields{
			"parcel_id":     parcel.ID,           // New parcel ID
			"tracking_code": parcel.TrackingCode, // Tracking code
			"customer_id":   parcel.CustomerID,   // Owning customer
			"prepaid":       parcel.Prepaid,      // Payment flag
		}).Info("Parcel booked")
		invalidateParcelCaches(c)          // Derived views are stale now
		c.JSON(http.StatusCreated, parcel) // Return the created parcel
	}
}

// ListParcelsHandler returns the authenticated customer's parcels, newest first
func ListParcelsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var parcels []domain.Parcel // Slice to hold parcels
		// Fetch only parcels owned by the caller
		if err := db.Where("customer_id = ?", userID).
			Order("created_at desc").
			Find(&parcels).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parcels"})
			return
		}
		c.JSON(http.StatusOK, parcels) // Return the parcel list
	}
}

// GetParcelHandler returns one parcel owned by the caller. An existing
// parcel owned by someone else answers the same 404 as a missing one.
func GetParcelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parcelID(c)
		// A malformed id is indistinguishable from a missing parcel
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		var parcel domain.Parcel // Fetch parcel by ID
		if err := db.First(&parcel, id).Error; err != nil || parcel.CustomerID != userID.(uint) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		c.JSON(http.StatusOK, parcel) // Return the parcel
	}
}

// UpdateParcelHandler edits a pending parcel owned by the caller
func UpdateParcelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
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
		// Owner and PENDING gate
		if err := lifecycle.CanModify(&parcel, userID.(uint)); err != nil {
			if err == lifecycle.ErrNotOwner {
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending parcels can be edited"})
			return
		}
		var req ParcelRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		// Validate the parcel type against the closed enum
		parcelType := domain.ParcelType(req.ParcelType)
		if !parcelType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parcel type"})
			return
		}
		// Recompute the payment pair exactly as in create
		prepaid, cod, err := lifecycle.PaymentFields(domain.PaymentMethod(req.PaymentMethod), req.CODAmount.String())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Overwrite the editable fields in one statement
		updates := map[string]any{
			"pickup_address":   req.PickupAddress,   // New pickup address
			"delivery_address": req.DeliveryAddress, // New delivery address
			"parcel_type":      parcelType,          // New parcel type
			"prepaid":          prepaid,             // Recomputed payment flag
			"cod_amount":       cod,                 // Nil clears the column when prepaid
		}
		if err := db.Model(&parcel).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update parcel"})
			return
		}
		// Log the edit
		logrus.WithFields(logrus.Fields{
			"parcel_id":   parcel.ID,     // Edited parcel
			"customer_id": userID.(uint), // Owner performing the edit
		}).Info("Parcel updated")
		invalidateParcelCaches(c)     // Derived views are stale now
		c.JSON(http.StatusOK, parcel) // Return the updated parcel
	}
}

// DeleteParcelHandler removes a pending parcel owned by the caller
func DeleteParcelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
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
		// Owner and PENDING gate
		if err := lifecycle.CanModify(&parcel, userID.(uint)); err != nil {
			if err == lifecycle.ErrNotOwner {
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending parcels can be deleted"})
			return
		}
		// Permanently remove the record
		if err := db.Delete(&parcel).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete parcel"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"parcel_id":   parcel.ID,     // Deleted parcel
			"customer_id": userID.(uint), // Owner performing the delete
		}).Info("Parcel deleted")
		invalidateParcelCaches(c)                // Derived views are stale now
		c.JSON(http.StatusOK, gin.H{"ok": true}) // Confirm the deletion
	}
}
