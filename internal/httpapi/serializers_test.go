package httpapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

func TestSerializeMessage_StripsStorageRef(t *testing.T) {
	msg := &dbmysql.Message{
		ID:         "m1",
		AuthorType: common.RoleCustomer,
		Attachments: []dbmysql.Attachment{
			{Type: common.AttachmentImage, URL: "/attachments/abc", StorageRef: "abc"},
		},
	}

	dto := serializeMessage(msg)
	assert.Len(t, dto.Attachments, 1)
	assert.Equal(t, "/attachments/abc", dto.Attachments[0].URL)

	raw, err := json.Marshal(dto)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "storageRef")
}

func TestAudienceStatus(t *testing.T) {
	tests := []struct {
		name     string
		msg      *dbmysql.Message
		expected common.DeliveryStatus
	}{
		{
			name: "manager message tracks customer side",
			msg: &dbmysql.Message{
				AuthorType:     common.RoleManager,
				ManagerStatus:  common.StatusRead,
				CustomerStatus: common.StatusDelivered,
			},
			expected: common.StatusDelivered,
		},
		{
			name: "customer message tracks manager side",
			msg: &dbmysql.Message{
				AuthorType:     common.RoleCustomer,
				ManagerStatus:  common.StatusSent,
				CustomerStatus: common.StatusRead,
			},
			expected: common.StatusSent,
		},
		{
			name:     "system messages are born read",
			msg:      &dbmysql.Message{AuthorType: common.RoleSystem},
			expected: common.StatusRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, audienceStatus(tt.msg))
		})
	}
}

func TestSerializeMessage_Reactions(t *testing.T) {
	msg := &dbmysql.Message{
		ID:         "m1",
		AuthorType: common.RoleManager,
		Reactions: []dbmysql.Reaction{
			{Emoji: "👍", ManagerReacted: true, CustomerReacted: false},
		},
	}

	dto := serializeMessage(msg)
	assert.Len(t, dto.Reactions, 1)
	assert.Equal(t, "👍", dto.Reactions[0].Emoji)
	assert.True(t, dto.Reactions[0].Reactors.Manager)
	assert.False(t, dto.Reactions[0].Reactors.Customer)
}

func TestSerializeConversation_Defaults(t *testing.T) {
	now := time.Now().UTC()
	conv := &dbmysql.Conversation{
		ID:              "conv1",
		ManagerID:       "m1",
		CustomerID:      "c1",
		Status:          "open",
		AutoChatEnabled: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	dto := serializeConversation(conv, nil)
	assert.Equal(t, "Manager", dto.Metadata.ManagerName)
	assert.Equal(t, "Customer", dto.Metadata.CustomerName)
	assert.NotNil(t, dto.Tags, "tags must serialize as [] rather than null")
	assert.Empty(t, dto.Tags)
	assert.NotNil(t, dto.Messages)
	assert.True(t, dto.AutoChatEnabled)

	raw, err := json.Marshal(dto)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"tags":[]`)
	assert.Contains(t, string(raw), `"messages":[]`)
}

func TestSerializeConversation_Metadata(t *testing.T) {
	conv := &dbmysql.Conversation{
		ID: "conv1",
		Metadata: dbmysql.MetadataJSON(dbmysql.ConversationMetadata{
			ManagerName:   "Priya",
			CustomerName:  "Aman",
			CustomerPhone: "+91 9000000000",
		}),
		MutedForCustomer: true,
	}

	dto := serializeConversation(conv, nil)
	assert.Equal(t, "Priya", dto.Metadata.ManagerName)
	assert.Equal(t, "Aman", dto.Metadata.CustomerName)
	assert.True(t, dto.MutedBy.Customer)
	assert.False(t, dto.MutedBy.Manager)
}

func TestSerializeAutoReplyConfig_EmptyCollections(t *testing.T) {
	cfg := &dbmysql.AutoReplyConfig{ID: "cfg1", ManagerID: "m1", IsActive: true}

	dto := serializeAutoReplyConfig(cfg)
	assert.NotNil(t, dto.Services)
	assert.NotNil(t, dto.TimeSlots)
	assert.NotNil(t, dto.Responses)

	raw, err := json.Marshal(dto)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"services":[]`)
	assert.Contains(t, string(raw), `"responses":{}`)
}
