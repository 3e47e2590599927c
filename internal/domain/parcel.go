package domain

import "time"

// Parcel Model
type Parcel struct {
	ID              uint       `gorm:"primaryKey" json:"id"`                     // Primary key
	TrackingCode    string     `gorm:"uniqueIndex;not null" json:"trackingCode"` // Shareable code, TRK- + 8 chars
	PickupAddress   string     `gorm:"not null" json:"pickupAddress"`            // Where the parcel is collected
	DeliveryAddress string     `gorm:"not null" json:"deliveryAddress"`          // Where the parcel goes
	ParcelType      ParcelType `gorm:"not null" json:"parcelType"`               // DOCUMENT, SMALL, MEDIUM or LARGE
	Status          Status     `gorm:"default:PENDING" json:"status"`            // Lifecycle status
	Prepaid         bool       `json:"prepaid"`                                  // True when paid up front
	CODAmount       *float64   `json:"codAmount"`                                // Cash on delivery amount, nil when prepaid
	CustomerID      uint       `gorm:"index;not null" json:"customerId"`         // Owning customer
	AssignedAgentID *uint      `gorm:"index" json:"assignedAgentId"`             // Assigned delivery agent, nil until assigned
	CreatedAt       time.Time  `json:"createdAt"`                                // Timestamp of creation

	// Populated on admin reads via Preload; omitted everywhere else
	Customer      *User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AssignedAgent *User `gorm:"foreignKey:AssignedAgentID" json:"assignedAgent,omitempty"`
}
