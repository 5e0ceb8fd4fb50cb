package dbmysql

import (
	"time"

	"gorm.io/datatypes"

	"chatdesk/internal/common"
)

// ServiceItem is one entry of the manager's service catalog. Order in
// the slice is presentation order.
type ServiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// TimeSlot is one bookable window.
type TimeSlot struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// ResponseTemplate is a canned bot response with its quick replies.
// Content may carry {placeholder} tokens substituted at send time.
type ResponseTemplate struct {
	Content      string              `json:"content"`
	QuickReplies []common.QuickReply `json:"quickReplies"`
}

// AutoReplyConfig is the per-manager bot configuration. Read-mostly,
// cached with a TTL and invalidated explicitly on update.
type AutoReplyConfig struct {
	ID        string                                            `gorm:"primaryKey;size:36"`
	ManagerID string                                            `gorm:"size:36;uniqueIndex"`
	Welcome   datatypes.JSONType[ResponseTemplate]              `gorm:"type:json"`
	Services  datatypes.JSONSlice[ServiceItem]                  `gorm:"type:json"`
	TimeSlots datatypes.JSONSlice[TimeSlot]                     `gorm:"type:json"`
	Responses datatypes.JSONType[map[string]ResponseTemplate]   `gorm:"type:json"`
	IsActive  bool                                              `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Response looks up the canned template for an intent key.
func (c *AutoReplyConfig) Response(key string) (ResponseTemplate, bool) {
	responses := c.Responses.Data()
	if responses == nil {
		return ResponseTemplate{}, false
	}
	tpl, ok := responses[key]
	if !ok || tpl.Content == "" {
		return ResponseTemplate{}, false
	}
	return tpl, true
}
