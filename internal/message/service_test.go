package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"chatdesk/internal/common"
	commonmocks "chatdesk/internal/common/mocks"
	convmocks "chatdesk/internal/conversation/mocks"
	"chatdesk/internal/config"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/message"
	"chatdesk/internal/message/mocks"
)

const (
	testConversationID = "c3a1f7e9-8d2b-4c6a-b5f0-1e9d8c7b6a03"
	testMessageID      = "9e4d2b1a-7c6f-4a8e-b3d5-0f1e2a3b4c05"
	testCustomerID     = "7d0e6b41-9a52-4f0e-8dbd-2c7a9b3e5c02"
)

type serviceMocks struct {
	repo     *mocks.MockRepository
	convRepo *convmocks.MockRepository
	storage  *commonmocks.MockAttachmentStorage
	svc      message.Service
}

func newServiceMocks(t *testing.T) serviceMocks {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	convRepo := convmocks.NewMockRepository(ctrl)
	storage := commonmocks.NewMockAttachmentStorage(ctrl)
	limits := config.MessageConfig{MaxTextLength: 2000, MaxAttachments: 5}
	return serviceMocks{
		repo:     repo,
		convRepo: convRepo,
		storage:  storage,
		svc:      message.NewService(repo, convRepo, storage, limits),
	}
}

func TestService_Create(t *testing.T) {
	m := newServiceMocks(t)

	conv := &dbmysql.Conversation{ID: testConversationID}
	m.convRepo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			assert.NotEmpty(t, msg.ID)
			assert.Equal(t, common.RoleCustomer, msg.AuthorType)
			// The author's own side is born read; the other side starts
			// at sent.
			assert.Equal(t, common.StatusRead, msg.CustomerStatus)
			assert.Equal(t, common.StatusSent, msg.ManagerStatus)
			assert.WithinDuration(t, time.Now(), msg.CreatedAt, time.Second)
			return nil
		})
	m.convRepo.EXPECT().IncrementUnread(gomock.Any(), testConversationID, common.RoleManager).Return(nil)
	m.convRepo.EXPECT().UpdateLastMessage(gomock.Any(), testConversationID, "Hello!", gomock.Any()).Return(nil)

	msg, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleCustomer,
		AuthorID:       testCustomerID,
		Content:        "Hello!",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Hello!", msg.Content)
}

func TestService_Create_SystemAuthorSkipsUnread(t *testing.T) {
	m := newServiceMocks(t)

	conv := &dbmysql.Conversation{ID: testConversationID}
	m.convRepo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			assert.Equal(t, common.StatusRead, msg.ManagerStatus)
			assert.Equal(t, common.StatusRead, msg.CustomerStatus)
			return nil
		})
	m.convRepo.EXPECT().UpdateLastMessage(gomock.Any(), testConversationID, gomock.Any(), gomock.Any()).Return(nil)

	_, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleSystem,
		Content:        "Conversation created.",
	})
	assert.NoError(t, err)
}

func TestService_Create_ContentTooLong(t *testing.T) {
	m := newServiceMocks(t)

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'x'
	}
	// The rejected upload must be rolled back from storage.
	m.storage.EXPECT().Delete(gomock.Any(), "ref-1").Return(nil)

	_, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleCustomer,
		Content:        string(long),
		Attachments: []message.AttachmentInput{
			{URL: "/attachments/a", StorageRef: "ref-1", MimeType: "image/png"},
		},
	})
	assert.Error(t, err)
	assert.Equal(t, common.CodeLimitExceeded, common.CodeOf(err))
}

func TestService_Create_TooManyAttachments(t *testing.T) {
	m := newServiceMocks(t)

	var inputs []message.AttachmentInput
	for i := 0; i < 6; i++ {
		inputs = append(inputs, message.AttachmentInput{URL: "/attachments/a", MimeType: "image/png"})
	}

	_, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleManager,
		Attachments:    inputs,
	})
	assert.Error(t, err)
	assert.Equal(t, common.CodeLimitExceeded, common.CodeOf(err))
}

func TestService_Create_EmptyMessageRejected(t *testing.T) {
	m := newServiceMocks(t)

	_, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleCustomer,
		Content:        "   ",
	})
	assert.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestService_Create_WithReplySnapshot(t *testing.T) {
	m := newServiceMocks(t)

	target := &dbmysql.Message{
		ID:         testMessageID,
		AuthorType: common.RoleManager,
		Content:    "Original question",
	}
	conv := &dbmysql.Conversation{ID: testConversationID}
	m.convRepo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
	m.repo.EXPECT().FindByID(gomock.Any(), testMessageID).Return(target, nil)
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			snapshot := msg.ReplyTo.Data()
			if assert.NotNil(t, snapshot) {
				assert.Equal(t, testMessageID, snapshot.MessageID)
				assert.Equal(t, "Original question", snapshot.Content)
			}
			return nil
		})
	m.convRepo.EXPECT().IncrementUnread(gomock.Any(), testConversationID, common.RoleManager).Return(nil)
	m.convRepo.EXPECT().UpdateLastMessage(gomock.Any(), testConversationID, gomock.Any(), gomock.Any()).Return(nil)

	_, err := m.svc.Create(context.Background(), message.CreatePayload{
		ConversationID: testConversationID,
		AuthorType:     common.RoleCustomer,
		Content:        "Replying",
		ReplyTo:        &message.ReplyInput{MessageID: testMessageID},
	})
	assert.NoError(t, err)
}

func TestService_Edit_ReplacesAttachments(t *testing.T) {
	m := newServiceMocks(t)

	existing := &dbmysql.Message{
		ID: testMessageID,
		Attachments: []dbmysql.Attachment{
			{URL: "/attachments/a", StorageRef: "ref-a"},
			{URL: "/attachments/b", StorageRef: "ref-b"},
		},
	}
	m.repo.EXPECT().FindByID(gomock.Any(), testMessageID).Return(existing, nil)
	// /attachments/b is no longer kept, so its file goes away.
	m.storage.EXPECT().Delete(gomock.Any(), "ref-b").Return(nil)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			assert.Len(t, msg.Attachments, 2)
			assert.Equal(t, "/attachments/a", msg.Attachments[0].URL)
			assert.Equal(t, "/attachments/c", msg.Attachments[1].URL)
			assert.NotNil(t, msg.EditedAt)
			return nil
		})

	_, err := m.svc.Edit(context.Background(), message.EditPayload{
		MessageID: testMessageID,
		Attachments: &message.AttachmentEdit{
			Keep: []string{"/attachments/a"},
			Uploads: []message.AttachmentInput{
				{URL: "/attachments/c", StorageRef: "ref-c", MimeType: "image/png"},
			},
		},
	})
	assert.NoError(t, err)
}

func TestService_Edit_ContentTooLong(t *testing.T) {
	m := newServiceMocks(t)

	m.repo.EXPECT().FindByID(gomock.Any(), testMessageID).Return(&dbmysql.Message{ID: testMessageID}, nil)

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'x'
	}
	content := string(long)

	_, err := m.svc.Edit(context.Background(), message.EditPayload{
		MessageID: testMessageID,
		Content:   &content,
	})
	assert.Error(t, err)
	assert.Equal(t, common.CodeLimitExceeded, common.CodeOf(err))
}

func TestService_Delete_RemovesStoredFiles(t *testing.T) {
	m := newServiceMocks(t)

	existing := &dbmysql.Message{
		ID: testMessageID,
		Attachments: []dbmysql.Attachment{
			{URL: "/attachments/a", StorageRef: "ref-a"},
			{URL: "https://example.com/external.png"},
		},
	}
	m.repo.EXPECT().FindByID(gomock.Any(), testMessageID).Return(existing, nil)
	// Only stored files are deleted; external links have no ref.
	m.storage.EXPECT().Delete(gomock.Any(), "ref-a").Return(nil)
	m.repo.EXPECT().Delete(gomock.Any(), testMessageID).Return(nil)

	msg, err := m.svc.Delete(context.Background(), testMessageID)
	assert.NoError(t, err)
	assert.Equal(t, testMessageID, msg.ID)
}

func TestService_ToggleReaction_RequiresEmoji(t *testing.T) {
	m := newServiceMocks(t)

	_, err := m.svc.ToggleReaction(context.Background(), testMessageID, "  ", common.RoleManager)
	assert.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestService_ToggleReaction(t *testing.T) {
	m := newServiceMocks(t)

	m.repo.EXPECT().FindByID(gomock.Any(), testMessageID).Return(&dbmysql.Message{ID: testMessageID}, nil)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	msg, err := m.svc.ToggleReaction(context.Background(), testMessageID, "👍", common.RoleCustomer)
	assert.NoError(t, err)
	assert.Len(t, msg.Reactions, 1)
	assert.True(t, msg.Reactions[0].CustomerReacted)
}

func TestService_History_ReturnsChronologicalOrder(t *testing.T) {
	m := newServiceMocks(t)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	newestFirst := []*dbmysql.Message{
		{ID: "m3", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m2", CreatedAt: base.Add(time.Minute)},
		{ID: "m1", CreatedAt: base},
	}
	m.repo.EXPECT().ListByConversation(gomock.Any(), testConversationID, 100, 0).Return(newestFirst, nil)

	msgs, err := m.svc.History(context.Background(), testConversationID, 100, 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}
