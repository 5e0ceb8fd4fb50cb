// Package directory resolves participant display details from the
// manager and customer records.
package directory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed participant directory.
func NewRepository(db *gorm.DB) common.ParticipantDirectory {
	return &repository{db: db}
}

func (r *repository) Manager(ctx context.Context, managerID string) (*common.Participant, error) {
	var manager dbmysql.Manager
	err := r.db.WithContext(ctx).First(&manager, "id = ?", managerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("manager not found")
	}
	if err != nil {
		return nil, err
	}
	return &common.Participant{
		ID:           manager.ID,
		Role:         common.RoleManager,
		Name:         manager.ManagerName,
		BusinessName: manager.BusinessName,
		Phone:        manager.MobileNumber,
	}, nil
}

func (r *repository) Customer(ctx context.Context, customerID string) (*common.Participant, error) {
	var customer dbmysql.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("customer not found")
	}
	if err != nil {
		return nil, err
	}
	return &common.Participant{
		ID:    customer.ID,
		Role:  common.RoleCustomer,
		Name:  customer.Name,
		Phone: customer.Phone,
	}, nil
}
