package dbmysql

import (
	"time"

	"gorm.io/datatypes"

	"chatdesk/internal/common"
)

// Attachment is embedded in the message's attachments JSON column.
// StorageRef is kept for physical deletion and must be stripped before
// anything leaves the API.
type Attachment struct {
	Type       common.AttachmentType `json:"type"`
	Name       string                `json:"name,omitempty"`
	Size       int64                 `json:"size,omitempty"`
	MimeType   string                `json:"mimeType,omitempty"`
	URL        string                `json:"url"`
	Preview    string                `json:"preview,omitempty"`
	StorageRef string                `json:"storageRef,omitempty"`
}

// Reaction tracks which side reacted with a given emoji. Reactions are
// deduplicated by emoji content, one entry per emoji.
type Reaction struct {
	Emoji           string    `json:"emoji"`
	ManagerReacted  bool      `json:"managerReacted"`
	CustomerReacted bool      `json:"customerReacted"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ReplySnapshot is the denormalized preview of a replied-to message.
type ReplySnapshot struct {
	MessageID  string      `json:"messageId"`
	AuthorType common.Role `json:"authorType,omitempty"`
	AuthorName string      `json:"authorName,omitempty"`
	Content    string      `json:"content"`
	HasMedia   bool        `json:"hasMedia"`
}

type Message struct {
	ID             string      `gorm:"primaryKey;size:36"`
	ConversationID string      `gorm:"size:36;index:idx_conversation_created;index:idx_conversation_author"`
	AuthorType     common.Role `gorm:"size:16;index:idx_conversation_author"`
	AuthorID       string      `gorm:"size:36"`
	Content        string      `gorm:"type:text"`

	Attachments  datatypes.JSONSlice[Attachment]        `gorm:"type:json"`
	Reactions    datatypes.JSONSlice[Reaction]          `gorm:"type:json"`
	QuickReplies datatypes.JSONSlice[common.QuickReply] `gorm:"type:json"`
	ReplyTo      datatypes.JSONType[*ReplySnapshot]     `gorm:"type:json"`

	// Per-participant delivery state as plain columns so bulk
	// transitions stay single atomic UPDATEs.
	ManagerStatus    common.DeliveryStatus `gorm:"size:16;default:sent"`
	ManagerStatusAt  *time.Time
	CustomerStatus   common.DeliveryStatus `gorm:"size:16;default:sent"`
	CustomerStatusAt *time.Time

	EditedAt   *time.Time
	ArchivedAt *time.Time
	CreatedAt  time.Time `gorm:"index:idx_conversation_created"`
	UpdatedAt  time.Time
}

// StatusFor returns the delivery status on the given participant's side.
func (m *Message) StatusFor(role common.Role) common.DeliveryStatus {
	if role == common.RoleManager {
		return m.ManagerStatus
	}
	return m.CustomerStatus
}

// SetStatusFor stamps a participant's side with a new status.
func (m *Message) SetStatusFor(role common.Role, status common.DeliveryStatus, at time.Time) {
	if role == common.RoleManager {
		m.ManagerStatus = status
		m.ManagerStatusAt = &at
		return
	}
	m.CustomerStatus = status
	m.CustomerStatusAt = &at
}

// HasMedia reports whether the message carries any attachment.
func (m *Message) HasMedia() bool {
	return len(m.Attachments) > 0
}
