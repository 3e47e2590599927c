package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"parcel_system/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assign wires an agent to a parcel directly in the store
func assign(t *testing.T, db *gorm.DB, parcelID, agentID uint) {
	t.Helper()
	require.NoError(t, db.Model(&domain.Parcel{}).Where("id = ?", parcelID).
		Update("assigned_agent_id", agentID).Error)
}

func TestListAssignedParcels(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)
	alice := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCustomer)
	gary := seedUser(t, db, "Gary", "gary@example.com", domain.RoleAgent)
	hank := seedUser(t, db, "Hank", "hank@example.com", domain.RoleAgent)

	mine := bookParcel(t, router, bearer(t, alice), gin.H{
		"pickupAddress": "X", "deliveryAddress": "Y", "parcelType": "SMALL", "paymentMethod": "PREPAID",
	})
	other := bookParcel(t, router, bearer(t, alice), gin.H{
		"pickupAddress": "X", "deliveryAddress": "Y", "parcelType": "SMALL", "paymentMethod": "PREPAID",
	})
	assign(t, db, mine.ID, gary.ID)
	assign(t, db, other.ID, hank.ID)

	w := doJSON(t, router, http.MethodGet, "/agent/parcels", bearer(t, gary), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var parcels []domain.Parcel
	decode(t, w, &parcels)
	require.Len(t, parcels, 1)
	assert.Equal(t, mine.ID, parcels[0].ID)
	require.NotNil(t, parcels[0].AssignedAgentID)
	assert.Equal(t, gary.ID, *parcels[0].AssignedAgentID)
}

func TestUpdateParcelStatus(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)
	alice := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCustomer)
	gary := seedUser(t, db, "Gary", "gary@example.com", domain.RoleAgent)
	hank := seedUser(t, db, "Hank", "hank@example.com", domain.RoleAgent)

	newAssigned := func(t *testing.T) domain.Parcel {
		parcel := bookParcel(t, router, bearer(t, alice), gin.H{
			"pickupAddress": "X", "deliveryAddress": "Y", "parcelType": "SMALL", "paymentMethod": "PREPAID",
		})
		assign(t, db, parcel.ID, gary.ID)
		return parcel
	}

	patch := func(t *testing.T, auth string, id uint, status string) *httptest.ResponseRecorder {
		return doJSON(t, router, http.MethodPatch, fmt.Sprintf("/agent/parcels/%d", id), auth, gin.H{"status": status})
	}

	t.Run("assignee moves pending to in transit", func(t *testing.T) {
		parcel := newAssigned(t)
		w := patch(t, bearer(t, gary), parcel.ID, "IN_TRANSIT")
		assert.Equal(t, http.StatusOK, w.Code)

		var updated domain.Parcel
		require.NoError(t, db.First(&updated, parcel.ID).Error)
		assert.Equal(t, domain.StatusInTransit, updated.Status)
	})

	t.Run("full delivery run", func(t *testing.T) {
		parcel := newAssigned(t)
		assert.Equal(t, http.StatusOK, patch(t, bearer(t, gary), parcel.ID, "IN_TRANSIT").Code)
		assert.Equal(t, http.StatusOK, patch(t, bearer(t, gary), parcel.ID, "DELIVERED").Code)

		// Terminal: nothing moves a delivered parcel
		w := patch(t, bearer(t, gary), parcel.ID, "PENDING")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pending cannot skip to delivered", func(t *testing.T) {
		parcel := newAssigned(t)
		w := patch(t, bearer(t, gary), parcel.ID, "DELIVERED")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "transition")
	})

	t.Run("unknown status value answers 400", func(t *testing.T) {
		parcel := newAssigned(t)
		w := patch(t, bearer(t, gary), parcel.ID, "LOST")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid status")
	})

	t.Run("unknown status beats missing parcel", func(t *testing.T) {
		// Invalid input is reported independent of parcel state or existence
		w := patch(t, bearer(t, gary), 99999, "LOST")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-assignee answers 404 not 403", func(t *testing.T) {
		parcel := newAssigned(t)
		w := patch(t, bearer(t, hank), parcel.ID, "IN_TRANSIT")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing parcel answers 404", func(t *testing.T) {
		w := patch(t, bearer(t, gary), 99999, "IN_TRANSIT")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("customer cannot reach the endpoint", func(t *testing.T) {
		parcel := newAssigned(t)
		w := patch(t, bearer(t, alice), parcel.ID, "IN_TRANSIT")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// Scenario: assign, move to IN_TRANSIT, then the owner can no longer delete.
func TestDeliveryFlowLocksCustomerOut(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)
	alice := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCustomer)
	admin := seedUser(t, db, "Root", "root@example.com", domain.RoleAdmin)
	gary := seedUser(t, db, "Gary", "gary@example.com", domain.RoleAgent)

	parcel := bookParcel(t, router, bearer(t, alice), gin.H{
		"pickupAddress": "X", "deliveryAddress": "Y", "parcelType": "SMALL", "paymentMethod": "PREPAID",
	})

	// Admin assigns the agent
	w := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/admin/parcels/%d/assign", parcel.ID),
		bearer(t, admin), gin.H{"agentId": gary.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Agent picks it up
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/agent/parcels/%d", parcel.ID),
		bearer(t, gary), gin.H{"status": "IN_TRANSIT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The owner is now locked out of delete
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/parcels/%d", parcel.ID), bearer(t, alice), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only pending parcels can be deleted")
}
