package autochat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"chatdesk/internal/cache"
	"chatdesk/internal/common"
	commonmocks "chatdesk/internal/common/mocks"
	"chatdesk/internal/config"
	convmocks "chatdesk/internal/conversation/mocks"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/message"
	msgmocks "chatdesk/internal/message/mocks"
)

const (
	engineManagerID      = "0b8f3c5a-2f0f-4f2d-9a44-6d4a1c1f1a01"
	engineCustomerID     = "7d0e6b41-9a52-4f0e-8dbd-2c7a9b3e5c02"
	engineConversationID = "c3a1f7e9-8d2b-4c6a-b5f0-1e9d8c7b6a03"
)

type engineFixture struct {
	messages  *msgmocks.MockService
	msgRepo   *msgmocks.MockRepository
	convRepo  *convmocks.MockRepository
	directory *commonmocks.MockParticipantDirectory
	engine    *Engine
}

// newEngineFixture wires the engine against mocks, with the manager's
// bot configuration pre-seeded in the cache so the store never reaches
// for the database.
func newEngineFixture(t *testing.T) *engineFixture {
	ctrl := gomock.NewController(t)
	messages := msgmocks.NewMockService(ctrl)
	msgRepo := msgmocks.NewMockRepository(ctrl)
	convRepo := convmocks.NewMockRepository(ctrl)
	directory := commonmocks.NewMockParticipantDirectory(ctrl)

	memCache := cache.NewMemoryCache(100)
	t.Cleanup(func() { memCache.Close() })
	cfg := dbmysql.AutoReplyConfig{ID: common.NewID(), ManagerID: engineManagerID, IsActive: true}
	raw, err := json.Marshal(&cfg)
	assert.NoError(t, err)
	memCache.SetWithTTL(context.Background(), cache.AutoReplyConfigKey(engineManagerID), raw, time.Minute)

	configs := NewConfigStore(nil, memCache, time.Minute)
	settings := config.AutoChatConfig{
		MaxMessages:  10,
		WelcomeGrace: 10 * time.Minute,
		ConfigTTL:    time.Minute,
	}

	return &engineFixture{
		messages:  messages,
		msgRepo:   msgRepo,
		convRepo:  convRepo,
		directory: directory,
		engine:    NewEngine(messages, msgRepo, convRepo, directory, configs, settings),
	}
}

func freshConversation() *dbmysql.Conversation {
	return &dbmysql.Conversation{
		ID:              engineConversationID,
		ManagerID:       engineManagerID,
		CustomerID:      engineCustomerID,
		AutoChatEnabled: true,
		CreatedAt:       time.Now().UTC(),
		Metadata:        dbmysql.MetadataJSON(dbmysql.ConversationMetadata{CustomerName: "Aman"}),
	}
}

func (f *engineFixture) expectManagerLookup() {
	f.directory.EXPECT().Manager(gomock.Any(), engineManagerID).Return(&common.Participant{
		ID:           engineManagerID,
		Name:         "Priya",
		BusinessName: "Serenity Spa",
		Phone:        "+91 9000000000",
	}, nil)
}

func TestEngine_Process_DisabledConversation(t *testing.T) {
	f := newEngineFixture(t)

	conv := freshConversation()
	conv.AutoChatEnabled = false
	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(conv, nil)

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "hello", "")
	assert.NoError(t, err)
	assert.Nil(t, msgs)
}

func TestEngine_Process_TalkToHumanBypassesQuota(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	// The quota is never consulted: no ConsumeAutoChatBudget call.
	f.convRepo.EXPECT().DisableAutoChat(gomock.Any(), engineConversationID).Return(nil)
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, payload message.CreatePayload) (*dbmysql.Message, error) {
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "", ActionTalkWithManager)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEngine_Process_ReplyWithinBudget(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(1, true, nil)
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p message.CreatePayload) (*dbmysql.Message, error) {
			assert.Equal(t, common.RoleManager, p.AuthorType)
			assert.Equal(t, engineManagerID, p.AuthorID)
			for _, qr := range p.QuickReplies {
				assert.NotEqual(t, handoffQuickReply, qr, "no handoff option before the final slot")
			}
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEngine_Process_FinalReplyCarriesHandoffOption(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(10, true, nil)
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p message.CreatePayload) (*dbmysql.Message, error) {
			if assert.NotEmpty(t, p.QuickReplies) {
				assert.Equal(t, handoffQuickReply, p.QuickReplies[len(p.QuickReplies)-1])
			}
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEngine_Process_HandoffOptionOnlyOnFinalSlot(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil).Times(2)
	f.expectManagerLookup()
	f.expectManagerLookup()
	gomock.InOrder(
		f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(9, true, nil),
		f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(10, true, nil),
	)

	var decorated []bool
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(ctx context.Context, p message.CreatePayload) (*dbmysql.Message, error) {
			carries := len(p.QuickReplies) > 0 && p.QuickReplies[len(p.QuickReplies)-1] == handoffQuickReply
			decorated = append(decorated, carries)
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	_, err := f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)
	_, err = f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)

	// Each claim sees its own post-increment count, so only the turn
	// that consumed the final slot offers the manager handoff.
	assert.Equal(t, []bool{false, true}, decorated)
}

func TestEngine_Process_ExhaustedQuotaHandsOffOnce(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(0, false, nil)
	f.convRepo.EXPECT().ClaimHandoff(gomock.Any(), engineConversationID).Return(true, nil)
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p message.CreatePayload) (*dbmysql.Message, error) {
			assert.Equal(t, handoffContent, p.Content)
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEngine_Process_HandoffAlreadyClaimedStaysSilent(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(0, false, nil)
	f.convRepo.EXPECT().ClaimHandoff(gomock.Any(), engineConversationID).Return(false, nil)

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "hi", "")
	assert.NoError(t, err)
	assert.Nil(t, msgs, "a lost claim never repeats the handoff message")
}

func TestEngine_Process_PersistsBookingState(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.expectManagerLookup()
	f.convRepo.EXPECT().ConsumeAutoChatBudget(gomock.Any(), engineConversationID, 10).Return(2, true, nil)
	f.convRepo.EXPECT().MergeBookingState(gomock.Any(), engineConversationID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string, delta dbmysql.BookingState) error {
			assert.True(t, delta.OfferClaimed)
			return nil
		})
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&dbmysql.Message{ID: common.NewID()}, nil)

	msgs, err := f.engine.Process(context.Background(), engineConversationID, "", ActionClaimOffer)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEngine_SendWelcome(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.msgRepo.EXPECT().CountNonSystem(gomock.Any(), engineConversationID).Return(int64(0), nil)
	f.expectManagerLookup()
	f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p message.CreatePayload) (*dbmysql.Message, error) {
			assert.Contains(t, p.Content, "Welcome, Aman!")
			assert.Contains(t, p.Content, "Serenity Spa")
			return &dbmysql.Message{ID: common.NewID()}, nil
		})

	msg, err := f.engine.SendWelcome(context.Background(), engineConversationID)
	assert.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestEngine_SendWelcome_SkipsWhenSomeoneSpoke(t *testing.T) {
	f := newEngineFixture(t)

	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(freshConversation(), nil)
	f.msgRepo.EXPECT().CountNonSystem(gomock.Any(), engineConversationID).Return(int64(2), nil)

	msg, err := f.engine.SendWelcome(context.Background(), engineConversationID)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestEngine_SendWelcome_SkipsStaleConversations(t *testing.T) {
	f := newEngineFixture(t)

	conv := freshConversation()
	conv.CreatedAt = time.Now().Add(-time.Hour)
	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(conv, nil)
	f.msgRepo.EXPECT().CountNonSystem(gomock.Any(), engineConversationID).Return(int64(0), nil)

	msg, err := f.engine.SendWelcome(context.Background(), engineConversationID)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestEngine_SendWelcome_SkipsDisabled(t *testing.T) {
	f := newEngineFixture(t)

	conv := freshConversation()
	conv.AutoChatEnabled = false
	f.convRepo.EXPECT().FindByID(gomock.Any(), engineConversationID).Return(conv, nil)

	msg, err := f.engine.SendWelcome(context.Background(), engineConversationID)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestEngine_Disable(t *testing.T) {
	f := newEngineFixture(t)

	err := f.engine.Disable(context.Background(), "not-a-uuid")
	assert.Error(t, err)

	f.convRepo.EXPECT().DisableAutoChat(gomock.Any(), engineConversationID).Return(nil)
	assert.NoError(t, f.engine.Disable(context.Background(), engineConversationID))
}
