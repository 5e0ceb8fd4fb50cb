package dbmysql

import (
	"time"

	"gorm.io/datatypes"

	"chatdesk/internal/common"
)

// ConversationMetadata is the stable display metadata shown in list
// views. Bot progress lives in BookingState, not here.
type ConversationMetadata struct {
	ManagerName   string `json:"managerName,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// BookingState is the bot-managed record of an in-progress booking,
// persisted on the conversation so the flow survives restarts.
type BookingState struct {
	Service              string     `json:"service,omitempty"`
	ServiceDescription   string     `json:"serviceDescription,omitempty"`
	TimeSlot             string     `json:"timeSlot,omitempty"`
	Date                 *time.Time `json:"date,omitempty"`
	Confirmed            bool       `json:"confirmed,omitempty"`
	OfferClaimed         bool       `json:"offerClaimed,omitempty"`
	ServiceBrowseOffset  int        `json:"serviceBrowseOffset,omitempty"`
	ServicesFullyBrowsed bool       `json:"servicesFullyBrowsed,omitempty"`
}

// Merge applies a delta on top of the current state, keeping fields the
// delta leaves at their zero value.
func (b BookingState) Merge(delta BookingState) BookingState {
	out := b
	if delta.Service != "" {
		out.Service = delta.Service
	}
	if delta.ServiceDescription != "" {
		out.ServiceDescription = delta.ServiceDescription
	}
	if delta.TimeSlot != "" {
		out.TimeSlot = delta.TimeSlot
	}
	if delta.Date != nil {
		out.Date = delta.Date
	}
	if delta.Confirmed {
		out.Confirmed = true
	}
	if delta.OfferClaimed {
		out.OfferClaimed = true
	}
	if delta.ServiceBrowseOffset > 0 {
		out.ServiceBrowseOffset = delta.ServiceBrowseOffset
	}
	if delta.ServicesFullyBrowsed {
		out.ServicesFullyBrowsed = true
	}
	return out
}

type Conversation struct {
	ID                   string `gorm:"primaryKey;size:36"`
	ManagerID            string `gorm:"size:36;uniqueIndex:idx_manager_customer;index:idx_manager_updated"`
	CustomerID           string `gorm:"size:36;uniqueIndex:idx_manager_customer;index"`
	Status               string `gorm:"size:16;default:open;index"`
	UnreadByManager      int    `gorm:"not null;default:0"`
	UnreadByCustomer     int    `gorm:"not null;default:0"`
	LastMessageAt        *time.Time
	LastMessageSnippet   string                                       `gorm:"size:255;default:''"`
	Tags                 datatypes.JSONSlice[string]                  `gorm:"type:json"`
	MutedForManager      bool                                         `gorm:"not null;default:false"`
	MutedForCustomer     bool                                         `gorm:"not null;default:false"`
	AutoChatEnabled      bool                                         `gorm:"not null;default:true;index"`
	AutoChatMessageCount int                                          `gorm:"not null;default:0"`
	HandoffSent          bool                                         `gorm:"not null;default:false"`
	Metadata             datatypes.JSONType[ConversationMetadata]     `gorm:"type:json"`
	Booking              datatypes.JSONType[BookingState]             `gorm:"type:json"`
	CreatedAt            time.Time
	UpdatedAt            time.Time `gorm:"index:idx_manager_updated"`
}

// UnreadFor returns the viewer's own unread counter.
func (c *Conversation) UnreadFor(role common.Role) int {
	if role == common.RoleManager {
		return c.UnreadByManager
	}
	return c.UnreadByCustomer
}

// MutedFor returns the viewer's own mute flag.
func (c *Conversation) MutedFor(role common.Role) bool {
	if role == common.RoleManager {
		return c.MutedForManager
	}
	return c.MutedForCustomer
}
