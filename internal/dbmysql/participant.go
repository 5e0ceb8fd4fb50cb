package dbmysql

import "time"

// Manager is the business-side participant record. Only the fields the
// conversation engine consumes live here; credential handling is a
// separate system.
type Manager struct {
	ID           string `gorm:"primaryKey;size:36"`
	ManagerName  string `gorm:"size:120;not null"`
	BusinessName string `gorm:"size:120;not null"`
	BusinessSlug string `gorm:"size:120;uniqueIndex"`
	ContactEmail string `gorm:"size:190;uniqueIndex"`
	MobileNumber string `gorm:"size:32"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is the guest-side participant record.
type Customer struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:120;not null"`
	Phone        string `gorm:"size:32;index:idx_customer_manager_phone"`
	Email        string `gorm:"size:190"`
	ManagerID    string `gorm:"size:36;index:idx_customer_manager_phone"`
	BusinessSlug string `gorm:"size:120;index"`
	Status       string `gorm:"size:16;default:active"`
	LastSeenAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
