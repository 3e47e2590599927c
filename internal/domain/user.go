package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`              // Primary key
	Name     string `gorm:"not null" json:"name"`              // Display name
	Email    string `gorm:"uniqueIndex;not null" json:"email"` // Unique login email
	Password string `gorm:"not null" json:"-"`                 // Hashed password, never serialized
	Role     Role   `gorm:"default:CUSTOMER" json:"role"`      // Role: ADMIN, AGENT or CUSTOMER
}
