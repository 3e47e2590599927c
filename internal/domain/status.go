package domain

// Role enumerates the closed set of account roles.
type Role string

// Status enumerates the parcel lifecycle states.
type Status string

// ParcelType enumerates the supported parcel sizes.
type ParcelType string

// PaymentMethod enumerates how a booking is paid.
type PaymentMethod string

// List of possible roles
const (
	RoleAdmin    Role = "ADMIN"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
)

// List of possible parcel statuses
const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
)

// List of possible parcel types
const (
	TypeDocument ParcelType = "DOCUMENT"
	TypeSmall    ParcelType = "SMALL"
	TypeMedium   ParcelType = "MEDIUM"
	TypeLarge    ParcelType = "LARGE"
)

// List of possible payment methods
const (
	PaymentPrepaid PaymentMethod = "PREPAID"
	PaymentCOD     PaymentMethod = "COD"
)

// List of allowed statuses
var allowedStatuses = [...]Status{
	StatusPending, StatusInTransit, StatusDelivered, StatusFailed,
}

var allowedParcelTypes = [...]ParcelType{
	TypeDocument, TypeSmall, TypeMedium, TypeLarge,
}

// Valid checks if the Role is valid
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Valid checks if the Status is valid
func (s Status) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave this status.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// Valid checks if the ParcelType is valid
func (t ParcelType) Valid() bool {
	for _, v := range allowedParcelTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Valid checks if the PaymentMethod is valid
func (m PaymentMethod) Valid() bool {
	return m == PaymentPrepaid || m == PaymentCOD
}
