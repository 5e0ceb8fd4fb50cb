package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsParticipant(t *testing.T) {
	assert.True(t, RoleManager.IsParticipant())
	assert.True(t, RoleCustomer.IsParticipant())
	assert.False(t, RoleSystem.IsParticipant())
	assert.False(t, Role("bot").IsParticipant())
}

func TestRole_Other(t *testing.T) {
	assert.Equal(t, RoleCustomer, RoleManager.Other())
	assert.Equal(t, RoleManager, RoleCustomer.Other())
}

func TestDeliveryStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		name    string
		from    DeliveryStatus
		to      DeliveryStatus
		allowed bool
	}{
		{"sent to delivered", StatusSent, StatusDelivered, true},
		{"sent to read skips delivered", StatusSent, StatusRead, true},
		{"delivered to read", StatusDelivered, StatusRead, true},
		{"delivered back to sent", StatusDelivered, StatusSent, false},
		{"read back to delivered", StatusRead, StatusDelivered, false},
		{"read to read", StatusRead, StatusRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestDeliveryStatus_IsValid(t *testing.T) {
	assert.True(t, StatusSent.IsValid())
	assert.True(t, StatusDelivered.IsValid())
	assert.True(t, StatusRead.IsValid())
	assert.False(t, DeliveryStatus("seen").IsValid())
}
