package conversation

import (
	"context"
	"fmt"
	"time"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/delivery"
)

// Service owns the conversation lifecycle: the idempotent ensure
// operation, mute state and delivery acknowledgements.
type Service interface {
	// Ensure returns the single conversation for the pair, creating it
	// (with its system message) on first contact. The created flag
	// distinguishes 201 from 200 semantics at the API.
	Ensure(ctx context.Context, managerID, customerID string, hints dbmysql.ConversationMetadata) (*dbmysql.Conversation, bool, error)

	Get(ctx context.Context, conversationID string) (*dbmysql.Conversation, error)
	ListForManager(ctx context.Context, managerID string, limit, skip int) ([]*dbmysql.Conversation, error)
	ForCustomer(ctx context.Context, customerID string) (*dbmysql.Conversation, error)

	SetMute(ctx context.Context, conversationID string, actor common.Role, muted bool) (*dbmysql.Conversation, error)
	MarkDelivered(ctx context.Context, conversationID string, viewer common.Role) (*dbmysql.Conversation, error)
	MarkRead(ctx context.Context, conversationID string, viewer common.Role) (*dbmysql.Conversation, error)
}

type service struct {
	repo      Repository
	tracker   delivery.Tracker
	directory common.ParticipantDirectory
}

func NewService(repo Repository, tracker delivery.Tracker, directory common.ParticipantDirectory) Service {
	return &service{repo: repo, tracker: tracker, directory: directory}
}

func (s *service) Ensure(ctx context.Context, managerID, customerID string, hints dbmysql.ConversationMetadata) (*dbmysql.Conversation, bool, error) {
	if err := common.ValidateID(managerID, "manager"); err != nil {
		return nil, false, err
	}
	if err := common.ValidateID(customerID, "customer"); err != nil {
		return nil, false, err
	}

	manager, err := s.directory.Manager(ctx, managerID)
	if err != nil {
		return nil, false, err
	}
	customer, err := s.directory.Customer(ctx, customerID)
	if err != nil {
		return nil, false, err
	}

	derived := deriveMetadata(hints, manager, customer)

	existing, err := s.repo.FindByPair(ctx, managerID, customerID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return s.refreshMetadata(ctx, existing, derived)
	}

	now := time.Now().UTC()
	systemNotice := fmt.Sprintf("Conversation created between %s and %s.", derived.CustomerName, derived.ManagerName)
	conv := &dbmysql.Conversation{
		ID:                 common.NewID(),
		ManagerID:          managerID,
		CustomerID:         customerID,
		Status:             string(common.ConversationOpen),
		Metadata:           dbmysql.MetadataJSON(derived),
		LastMessageSnippet: systemNotice,
		LastMessageAt:      &now,
		AutoChatEnabled:    true,
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		if err == ErrDuplicatePair {
			// Lost the race: another creator inserted the pair first.
			// Resolve to that row instead of surfacing a conflict.
			winner, ferr := s.repo.FindByPair(ctx, managerID, customerID)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner == nil {
				return nil, false, common.Conflict("conversation creation raced and lost")
			}
			return s.refreshMetadata(ctx, winner, derived)
		}
		return nil, false, err
	}

	if err := s.repo.InsertSystemMessage(ctx, conv.ID, systemNotice); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// refreshMetadata merges hint-derived fields into an existing record,
// writing only when something actually changed.
func (s *service) refreshMetadata(ctx context.Context, conv *dbmysql.Conversation, derived dbmysql.ConversationMetadata) (*dbmysql.Conversation, bool, error) {
	current := conv.Metadata.Data()
	merged := current
	merged.ManagerName = derived.ManagerName
	merged.CustomerName = derived.CustomerName
	merged.CustomerPhone = derived.CustomerPhone
	if derived.Notes != "" {
		merged.Notes = derived.Notes
	}
	if merged == current {
		return conv, false, nil
	}
	if err := s.repo.UpdateMetadata(ctx, conv.ID, merged); err != nil {
		return nil, false, err
	}
	conv.Metadata = dbmysql.MetadataJSON(merged)
	return conv, false, nil
}

func deriveMetadata(hints dbmysql.ConversationMetadata, manager, customer *common.Participant) dbmysql.ConversationMetadata {
	out := hints
	if out.ManagerName == "" {
		out.ManagerName = manager.Name
	}
	if out.ManagerName == "" {
		out.ManagerName = manager.BusinessName
	}
	if out.ManagerName == "" {
		out.ManagerName = "Manager"
	}
	if out.CustomerName == "" {
		out.CustomerName = customer.Name
	}
	if out.CustomerName == "" {
		out.CustomerName = "Customer"
	}
	if out.CustomerPhone == "" {
		out.CustomerPhone = customer.Phone
	}
	return out
}

func (s *service) Get(ctx context.Context, conversationID string) (*dbmysql.Conversation, error) {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, conversationID)
}

func (s *service) ListForManager(ctx context.Context, managerID string, limit, skip int) ([]*dbmysql.Conversation, error) {
	if err := common.ValidateID(managerID, "manager"); err != nil {
		return nil, err
	}
	return s.repo.ListByManager(ctx, managerID, limit, skip)
}

func (s *service) ForCustomer(ctx context.Context, customerID string) (*dbmysql.Conversation, error) {
	if err := common.ValidateID(customerID, "customer"); err != nil {
		return nil, err
	}
	return s.repo.FindByCustomer(ctx, customerID)
}

func (s *service) SetMute(ctx context.Context, conversationID string, actor common.Role, muted bool) (*dbmysql.Conversation, error) {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	if err := common.ValidateParticipantRole(actor); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, conversationID); err != nil {
		return nil, err
	}
	if err := s.repo.SetMute(ctx, conversationID, actor, muted); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, conversationID)
}

func (s *service) MarkDelivered(ctx context.Context, conversationID string, viewer common.Role) (*dbmysql.Conversation, error) {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	conv, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tracker.MarkDelivered(ctx, conversationID, viewer); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *service) MarkRead(ctx context.Context, conversationID string, viewer common.Role) (*dbmysql.Conversation, error) {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	conv, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	changed, err := s.tracker.MarkRead(ctx, conversationID, viewer)
	if err != nil {
		return nil, err
	}
	// Reset the unread counter only when a message actually moved, so
	// redundant read calls stay write-free.
	if changed > 0 {
		if err := s.repo.ResetUnread(ctx, conversationID, viewer); err != nil {
			return nil, err
		}
		return s.repo.FindByID(ctx, conversationID)
	}
	return conv, nil
}
