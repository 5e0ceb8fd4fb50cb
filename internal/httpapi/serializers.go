// Package httpapi is the HTTP transport: REST handlers, the websocket
// endpoint, read-through caching for conversation views, and the
// serializers that define the wire contract.
package httpapi

import (
	"time"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

// AttachmentDTO is the public attachment shape. The storage ref never
// leaves the server.
type AttachmentDTO struct {
	Type     common.AttachmentType `json:"type"`
	Name     string                `json:"name,omitempty"`
	Size     int64                 `json:"size,omitempty"`
	MimeType string                `json:"mimeType,omitempty"`
	URL      string                `json:"url"`
	Preview  string                `json:"preview,omitempty"`
}

type ReactorsDTO struct {
	Manager  bool `json:"manager"`
	Customer bool `json:"customer"`
}

type ReactionDTO struct {
	Emoji    string      `json:"emoji"`
	Reactors ReactorsDTO `json:"reactors"`
}

type StatusByParticipantDTO struct {
	Manager  common.DeliveryStatus `json:"manager"`
	Customer common.DeliveryStatus `json:"customer"`
}

type MessageDTO struct {
	ID                  string                 `json:"id"`
	ConversationID      string                 `json:"conversationId"`
	AuthorType          common.Role            `json:"authorType"`
	AuthorID            string                 `json:"authorId,omitempty"`
	Content             string                 `json:"content"`
	Attachments         []AttachmentDTO        `json:"attachments"`
	QuickReplies        []common.QuickReply    `json:"quickReplies,omitempty"`
	Status              common.DeliveryStatus  `json:"status"`
	StatusByParticipant StatusByParticipantDTO `json:"statusByParticipant"`
	Reactions           []ReactionDTO          `json:"reactions"`
	ReplyTo             *dbmysql.ReplySnapshot `json:"replyTo,omitempty"`
	EditedAt            *time.Time             `json:"editedAt,omitempty"`
	ArchivedAt          *time.Time             `json:"archivedAt,omitempty"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

type MetadataDTO struct {
	ManagerName   string `json:"managerName"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type MutedByDTO struct {
	Manager  bool `json:"manager"`
	Customer bool `json:"customer"`
}

type ConversationDTO struct {
	ID                 string       `json:"id"`
	ManagerID          string       `json:"managerId"`
	CustomerID         string       `json:"customerId"`
	Metadata           MetadataDTO  `json:"metadata"`
	Status             string       `json:"status"`
	UnreadByManager    int          `json:"unreadByManager"`
	UnreadByCustomer   int          `json:"unreadByCustomer"`
	LastMessageAt      *time.Time   `json:"lastMessageAt,omitempty"`
	LastMessageSnippet string       `json:"lastMessageSnippet"`
	Tags               []string     `json:"tags"`
	MutedBy            MutedByDTO   `json:"mutedBy"`
	AutoChatEnabled    bool         `json:"autoChatEnabled"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	Messages           []MessageDTO `json:"messages"`
}

type PaginationDTO struct {
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	HasMore bool `json:"hasMore"`
}

func serializeMessage(msg *dbmysql.Message) MessageDTO {
	attachments := make([]AttachmentDTO, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, AttachmentDTO{
			Type:     att.Type,
			Name:     att.Name,
			Size:     att.Size,
			MimeType: att.MimeType,
			URL:      att.URL,
			Preview:  att.Preview,
		})
	}

	reactions := make([]ReactionDTO, 0, len(msg.Reactions))
	for _, reaction := range msg.Reactions {
		reactions = append(reactions, ReactionDTO{
			Emoji: reaction.Emoji,
			Reactors: ReactorsDTO{
				Manager:  reaction.ManagerReacted,
				Customer: reaction.CustomerReacted,
			},
		})
	}

	return MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		AuthorType:     msg.AuthorType,
		AuthorID:       msg.AuthorID,
		Content:        msg.Content,
		Attachments:    attachments,
		QuickReplies:   msg.QuickReplies,
		Status:         audienceStatus(msg),
		StatusByParticipant: StatusByParticipantDTO{
			Manager:  msg.ManagerStatus,
			Customer: msg.CustomerStatus,
		},
		Reactions:  reactions,
		ReplyTo:    msg.ReplyTo.Data(),
		EditedAt:   msg.EditedAt,
		ArchivedAt: msg.ArchivedAt,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  msg.UpdatedAt,
	}
}

// audienceStatus is the message's progress toward its audience: the
// recipient side's delivery state. System messages are born read.
func audienceStatus(msg *dbmysql.Message) common.DeliveryStatus {
	switch msg.AuthorType {
	case common.RoleManager:
		return msg.CustomerStatus
	case common.RoleCustomer:
		return msg.ManagerStatus
	default:
		return common.StatusRead
	}
}

func serializeMessages(msgs []*dbmysql.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, serializeMessage(msg))
	}
	return out
}

func serializeConversation(conv *dbmysql.Conversation, msgs []*dbmysql.Message) ConversationDTO {
	metadata := conv.Metadata.Data()
	if metadata.ManagerName == "" {
		metadata.ManagerName = "Manager"
	}
	if metadata.CustomerName == "" {
		metadata.CustomerName = "Customer"
	}

	tags := []string(conv.Tags)
	if tags == nil {
		tags = []string{}
	}

	return ConversationDTO{
		ID:         conv.ID,
		ManagerID:  conv.ManagerID,
		CustomerID: conv.CustomerID,
		Metadata: MetadataDTO{
			ManagerName:   metadata.ManagerName,
			CustomerName:  metadata.CustomerName,
			CustomerPhone: metadata.CustomerPhone,
			Notes:         metadata.Notes,
		},
		Status:             conv.Status,
		UnreadByManager:    conv.UnreadByManager,
		UnreadByCustomer:   conv.UnreadByCustomer,
		LastMessageAt:      conv.LastMessageAt,
		LastMessageSnippet: conv.LastMessageSnippet,
		Tags:               tags,
		MutedBy: MutedByDTO{
			Manager:  conv.MutedForManager,
			Customer: conv.MutedForCustomer,
		},
		AutoChatEnabled: conv.AutoChatEnabled,
		CreatedAt:       conv.CreatedAt,
		UpdatedAt:       conv.UpdatedAt,
		Messages:        serializeMessages(msgs),
	}
}

// AutoReplyConfigDTO is the management view of the bot configuration.
type AutoReplyConfigDTO struct {
	ID        string                              `json:"id"`
	ManagerID string                              `json:"managerId"`
	Welcome   dbmysql.ResponseTemplate            `json:"welcomeMessage"`
	Services  []dbmysql.ServiceItem               `json:"services"`
	TimeSlots []dbmysql.TimeSlot                  `json:"timeSlots"`
	Responses map[string]dbmysql.ResponseTemplate `json:"responses"`
	IsActive  bool                                `json:"isActive"`
	CreatedAt time.Time                           `json:"createdAt"`
	UpdatedAt time.Time                           `json:"updatedAt"`
}

func serializeAutoReplyConfig(config *dbmysql.AutoReplyConfig) AutoReplyConfigDTO {
	services := []dbmysql.ServiceItem(config.Services)
	if services == nil {
		services = []dbmysql.ServiceItem{}
	}
	slots := []dbmysql.TimeSlot(config.TimeSlots)
	if slots == nil {
		slots = []dbmysql.TimeSlot{}
	}
	responses := config.Responses.Data()
	if responses == nil {
		responses = map[string]dbmysql.ResponseTemplate{}
	}
	return AutoReplyConfigDTO{
		ID:        config.ID,
		ManagerID: config.ManagerID,
		Welcome:   config.Welcome.Data(),
		Services:  services,
		TimeSlots: slots,
		Responses: responses,
		IsActive:  config.IsActive,
		CreatedAt: config.CreatedAt,
		UpdatedAt: config.UpdatedAt,
	}
}
