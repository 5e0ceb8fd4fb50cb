package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"chatdesk/internal/common"
	commonmocks "chatdesk/internal/common/mocks"
	"chatdesk/internal/conversation/mocks"
	"chatdesk/internal/dbmysql"
	deliverymocks "chatdesk/internal/delivery/mocks"
)

const (
	testManagerID      = "0b8f3c5a-2f0f-4f2d-9a44-6d4a1c1f1a01"
	testCustomerID     = "7d0e6b41-9a52-4f0e-8dbd-2c7a9b3e5c02"
	testConversationID = "c3a1f7e9-8d2b-4c6a-b5f0-1e9d8c7b6a03"
)

func newServiceMocks(t *testing.T) (*mocks.MockRepository, *deliverymocks.MockTracker, *commonmocks.MockParticipantDirectory, Service) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	tracker := deliverymocks.NewMockTracker(ctrl)
	directory := commonmocks.NewMockParticipantDirectory(ctrl)
	return repo, tracker, directory, NewService(repo, tracker, directory)
}

func expectParticipants(directory *commonmocks.MockParticipantDirectory) {
	directory.EXPECT().Manager(gomock.Any(), testManagerID).Return(&common.Participant{
		ID:           testManagerID,
		Name:         "Priya",
		BusinessName: "Serenity Spa",
	}, nil)
	directory.EXPECT().Customer(gomock.Any(), testCustomerID).Return(&common.Participant{
		ID:    testCustomerID,
		Name:  "Aman",
		Phone: "+91 9000000000",
	}, nil)
}

func TestService_Ensure_CreatesOnFirstContact(t *testing.T) {
	repo, _, directory, svc := newServiceMocks(t)

	expectParticipants(directory)
	repo.EXPECT().FindByPair(gomock.Any(), testManagerID, testCustomerID).Return(nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, conv *dbmysql.Conversation) error {
			assert.Equal(t, testManagerID, conv.ManagerID)
			assert.Equal(t, testCustomerID, conv.CustomerID)
			assert.Equal(t, string(common.ConversationOpen), conv.Status)
			assert.True(t, conv.AutoChatEnabled)
			assert.Equal(t, "Aman", conv.Metadata.Data().CustomerName)
			assert.Equal(t, "Priya", conv.Metadata.Data().ManagerName)
			return nil
		})
	repo.EXPECT().InsertSystemMessage(gomock.Any(), gomock.Any(), "Conversation created between Aman and Priya.").Return(nil)

	conv, created, err := svc.Ensure(context.Background(), testManagerID, testCustomerID, dbmysql.ConversationMetadata{})
	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, conv.ID)
}

func TestService_Ensure_ReturnsExistingWithoutWrite(t *testing.T) {
	repo, _, directory, svc := newServiceMocks(t)

	expectParticipants(directory)
	existing := &dbmysql.Conversation{
		ID:         testConversationID,
		ManagerID:  testManagerID,
		CustomerID: testCustomerID,
		Metadata: dbmysql.MetadataJSON(dbmysql.ConversationMetadata{
			ManagerName:   "Priya",
			CustomerName:  "Aman",
			CustomerPhone: "+91 9000000000",
		}),
	}
	repo.EXPECT().FindByPair(gomock.Any(), testManagerID, testCustomerID).Return(existing, nil)
	// No UpdateMetadata expected: nothing changed.

	conv, created, err := svc.Ensure(context.Background(), testManagerID, testCustomerID, dbmysql.ConversationMetadata{})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, testConversationID, conv.ID)
}

func TestService_Ensure_RefreshesChangedMetadata(t *testing.T) {
	repo, _, directory, svc := newServiceMocks(t)

	expectParticipants(directory)
	existing := &dbmysql.Conversation{
		ID:         testConversationID,
		ManagerID:  testManagerID,
		CustomerID: testCustomerID,
		Metadata: dbmysql.MetadataJSON(dbmysql.ConversationMetadata{
			ManagerName:  "Priya",
			CustomerName: "Guest",
		}),
	}
	repo.EXPECT().FindByPair(gomock.Any(), testManagerID, testCustomerID).Return(existing, nil)
	repo.EXPECT().UpdateMetadata(gomock.Any(), testConversationID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string, metadata dbmysql.ConversationMetadata) error {
			assert.Equal(t, "Aman", metadata.CustomerName)
			assert.Equal(t, "+91 9000000000", metadata.CustomerPhone)
			return nil
		})

	conv, created, err := svc.Ensure(context.Background(), testManagerID, testCustomerID, dbmysql.ConversationMetadata{})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Aman", conv.Metadata.Data().CustomerName)
}

func TestService_Ensure_ResolvesDuplicateRace(t *testing.T) {
	repo, _, directory, svc := newServiceMocks(t)

	expectParticipants(directory)
	winner := &dbmysql.Conversation{
		ID:         testConversationID,
		ManagerID:  testManagerID,
		CustomerID: testCustomerID,
		Metadata: dbmysql.MetadataJSON(dbmysql.ConversationMetadata{
			ManagerName:   "Priya",
			CustomerName:  "Aman",
			CustomerPhone: "+91 9000000000",
		}),
	}
	first := repo.EXPECT().FindByPair(gomock.Any(), testManagerID, testCustomerID).Return(nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrDuplicatePair)
	repo.EXPECT().FindByPair(gomock.Any(), testManagerID, testCustomerID).Return(winner, nil).After(first)

	conv, created, err := svc.Ensure(context.Background(), testManagerID, testCustomerID, dbmysql.ConversationMetadata{})
	assert.NoError(t, err)
	assert.False(t, created, "the racing loser must not report creation")
	assert.Equal(t, testConversationID, conv.ID)
}

func TestService_Ensure_RejectsBadIDs(t *testing.T) {
	_, _, _, svc := newServiceMocks(t)

	_, _, err := svc.Ensure(context.Background(), "not-a-uuid", testCustomerID, dbmysql.ConversationMetadata{})
	assert.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))

	_, _, err = svc.Ensure(context.Background(), testManagerID, "", dbmysql.ConversationMetadata{})
	assert.Error(t, err)
}

func TestService_MarkRead(t *testing.T) {
	tests := []struct {
		name        string
		changed     int64
		expectReset bool
	}{
		{"messages moved resets unread", 3, true},
		{"redundant call stays write-free", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, tracker, _, svc := newServiceMocks(t)

			conv := &dbmysql.Conversation{ID: testConversationID, UnreadByManager: 3}
			repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
			tracker.EXPECT().MarkRead(gomock.Any(), testConversationID, common.RoleManager).Return(tt.changed, nil)
			if tt.expectReset {
				repo.EXPECT().ResetUnread(gomock.Any(), testConversationID, common.RoleManager).Return(nil)
				fresh := &dbmysql.Conversation{ID: testConversationID, UnreadByManager: 0}
				repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(fresh, nil)
			}

			out, err := svc.MarkRead(context.Background(), testConversationID, common.RoleManager)
			assert.NoError(t, err)
			if tt.expectReset {
				assert.Equal(t, 0, out.UnreadByManager)
			} else {
				assert.Equal(t, 3, out.UnreadByManager)
			}
		})
	}
}

func TestService_MarkDelivered(t *testing.T) {
	repo, tracker, _, svc := newServiceMocks(t)

	conv := &dbmysql.Conversation{ID: testConversationID}
	repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
	tracker.EXPECT().MarkDelivered(gomock.Any(), testConversationID, common.RoleCustomer).Return(int64(2), nil)

	out, err := svc.MarkDelivered(context.Background(), testConversationID, common.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, testConversationID, out.ID)
}

func TestService_SetMute(t *testing.T) {
	repo, _, _, svc := newServiceMocks(t)

	conv := &dbmysql.Conversation{ID: testConversationID}
	muted := &dbmysql.Conversation{ID: testConversationID, MutedForManager: true}
	repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(conv, nil)
	repo.EXPECT().SetMute(gomock.Any(), testConversationID, common.RoleManager, true).Return(nil)
	repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(muted, nil)

	out, err := svc.SetMute(context.Background(), testConversationID, common.RoleManager, true)
	assert.NoError(t, err)
	assert.True(t, out.MutedForManager)
}

func TestService_SetMute_RejectsSystemRole(t *testing.T) {
	_, _, _, svc := newServiceMocks(t)

	_, err := svc.SetMute(context.Background(), testConversationID, common.RoleSystem, true)
	assert.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestService_Get_PropagatesRepoError(t *testing.T) {
	repo, _, _, svc := newServiceMocks(t)

	repo.EXPECT().FindByID(gomock.Any(), testConversationID).Return(nil, errors.New("database connection failed"))

	_, err := svc.Get(context.Background(), testConversationID)
	assert.EqualError(t, err, "database connection failed")
}

func TestBookingState_Merge(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	base := dbmysql.BookingState{Service: "Head Massage", ServiceDescription: "60 min | ₹1,999"}

	merged := base.Merge(dbmysql.BookingState{TimeSlot: "Morning (9 AM - 12 PM)", Date: &date, Confirmed: true})
	assert.Equal(t, "Head Massage", merged.Service)
	assert.Equal(t, "Morning (9 AM - 12 PM)", merged.TimeSlot)
	assert.True(t, merged.Confirmed)

	// A zero-value delta leaves everything in place.
	again := merged.Merge(dbmysql.BookingState{})
	assert.Equal(t, merged, again)
}
