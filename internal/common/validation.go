package common

import (
	"strings"

	"github.com/google/uuid"
)

// ValidateID checks that an identifier is a well formed UUID.
func ValidateID(id, what string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return InvalidArgument("invalid %s identifier", what)
	}
	return nil
}

// ValidateParticipantRole rejects anything that is not manager or customer.
func ValidateParticipantRole(role Role) error {
	if !role.IsParticipant() {
		return InvalidArgument("role must be manager or customer")
	}
	return nil
}

// NewID mints a record identifier.
func NewID() string {
	return uuid.NewString()
}
