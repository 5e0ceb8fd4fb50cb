package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

// ErrDuplicatePair surfaces the unique (manager, customer) constraint
// so the service can resolve concurrent creates by re-fetching.
var ErrDuplicatePair = errors.New("conversation already exists for pair")

type Repository interface {
	Create(ctx context.Context, conv *dbmysql.Conversation) error
	FindByID(ctx context.Context, id string) (*dbmysql.Conversation, error)
	FindByPair(ctx context.Context, managerID, customerID string) (*dbmysql.Conversation, error)
	FindByCustomer(ctx context.Context, customerID string) (*dbmysql.Conversation, error)
	ListByManager(ctx context.Context, managerID string, limit, skip int) ([]*dbmysql.Conversation, error)

	UpdateMetadata(ctx context.Context, id string, metadata dbmysql.ConversationMetadata) error
	SetMute(ctx context.Context, id string, actor common.Role, muted bool) error

	// IncrementUnread and ResetUnread use atomic field updates; no
	// read-modify-write in application code.
	IncrementUnread(ctx context.Context, id string, viewer common.Role) error
	ResetUnread(ctx context.Context, id string, viewer common.Role) error
	UpdateLastMessage(ctx context.Context, id, snippet string, at time.Time) error

	MergeBookingState(ctx context.Context, id string, delta dbmysql.BookingState) error

	// ConsumeAutoChatBudget atomically claims one bot reply slot. It
	// only succeeds while auto-chat is enabled and the counter is
	// below max; the returned count is the post-increment value.
	ConsumeAutoChatBudget(ctx context.Context, id string, max int) (count int, ok bool, err error)
	DisableAutoChat(ctx context.Context, id string) error

	// ClaimHandoff flips handoff_sent exactly once; the first caller
	// gets true, concurrent or repeated callers get false.
	ClaimHandoff(ctx context.Context, id string) (bool, error)

	// InsertSystemMessage writes the structural message that
	// accompanies conversation creation.
	InsertSystemMessage(ctx context.Context, conversationID, content string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, conv *dbmysql.Conversation) error {
	err := r.db.WithContext(ctx).Create(conv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePair
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("conversation not found")
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repository) FindByPair(ctx context.Context, managerID, customerID string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := r.db.WithContext(ctx).
		First(&conv, "manager_id = ? AND customer_id = ?", managerID, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repository) FindByCustomer(ctx context.Context, customerID string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := r.db.WithContext(ctx).First(&conv, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("conversation not found")
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repository) ListByManager(ctx context.Context, managerID string, limit, skip int) ([]*dbmysql.Conversation, error) {
	var convs []*dbmysql.Conversation
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&convs).Error
	return convs, err
}

func (r *repository) UpdateMetadata(ctx context.Context, id string, metadata dbmysql.ConversationMetadata) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update("metadata", dbmysql.MetadataJSON(metadata)).Error
}

func (r *repository) SetMute(ctx context.Context, id string, actor common.Role, muted bool) error {
	column := "muted_for_customer"
	if actor == common.RoleManager {
		column = "muted_for_manager"
	}
	result := r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update(column, muted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either missing or already in the requested state; the caller
		// re-fetches and distinguishes.
		return nil
	}
	return nil
}

func unreadColumn(viewer common.Role) string {
	if viewer == common.RoleManager {
		return "unread_by_manager"
	}
	return "unread_by_customer"
}

func (r *repository) IncrementUnread(ctx context.Context, id string, viewer common.Role) error {
	column := unreadColumn(viewer)
	return r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + 1")).Error
}

func (r *repository) ResetUnread(ctx context.Context, id string, viewer common.Role) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update(unreadColumn(viewer), 0).Error
}

func (r *repository) UpdateLastMessage(ctx context.Context, id, snippet string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_snippet": snippet,
			"last_message_at":      at,
			"updated_at":           at,
		}).Error
}

func (r *repository) MergeBookingState(ctx context.Context, id string, delta dbmysql.BookingState) error {
	// Booking state is only written from bot turns, which are already
	// serialized per conversation by the budget claim, so a re-read
	// merge inside a transaction is enough here.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv dbmysql.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conv, "id = ?", id).Error; err != nil {
			return err
		}
		merged := conv.Booking.Data().Merge(delta)
		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", id).
			Update("booking", dbmysql.BookingJSON(merged)).Error
	})
}

func (r *repository) ConsumeAutoChatBudget(ctx context.Context, id string, max int) (int, bool, error) {
	var count int
	var claimed bool
	// The locking read pins the post-increment value to this claim, so
	// of two concurrent turns exactly one observes the final slot.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv dbmysql.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("auto_chat_enabled", "auto_chat_message_count").
			First(&conv, "id = ?", id).Error; err != nil {
			return err
		}
		if !conv.AutoChatEnabled || conv.AutoChatMessageCount >= max {
			return nil
		}
		count = conv.AutoChatMessageCount + 1
		claimed = true
		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", id).
			Update("auto_chat_message_count", count).Error
	})
	if err != nil {
		return 0, false, err
	}
	return count, claimed, nil
}

func (r *repository) DisableAutoChat(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update("auto_chat_enabled", false).Error
}

func (r *repository) ClaimHandoff(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Where("handoff_sent = ?", false).
		Updates(map[string]interface{}{
			"handoff_sent":      true,
			"auto_chat_enabled": false,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) InsertSystemMessage(ctx context.Context, conversationID, content string) error {
	now := time.Now().UTC()
	msg := &dbmysql.Message{
		ID:             common.NewID(),
		ConversationID: conversationID,
		AuthorType:     common.RoleSystem,
		Content:        content,
		// Structural notices are born read on both sides.
		ManagerStatus:    common.StatusRead,
		ManagerStatusAt:  &now,
		CustomerStatus:   common.StatusRead,
		CustomerStatusAt: &now,
	}
	return r.db.WithContext(ctx).Create(msg).Error
}
