package message

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

type Repository interface {
	Save(ctx context.Context, msg *dbmysql.Message) error
	FindByID(ctx context.Context, id string) (*dbmysql.Message, error)
	Update(ctx context.Context, msg *dbmysql.Message) error
	Delete(ctx context.Context, id string) error
	// ListByConversation returns the most recent page, newest first.
	// Callers reverse for chronological display.
	ListByConversation(ctx context.Context, conversationID string, limit, skip int) ([]*dbmysql.Message, error)
	CountNonSystem(ctx context.Context, conversationID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("message not found")
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *repository) Update(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.Message{}, "id = ?", id).Error
}

func (r *repository) ListByConversation(ctx context.Context, conversationID string, limit, skip int) ([]*dbmysql.Message, error) {
	var msgs []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) CountNonSystem(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("author_type <> ?", common.RoleSystem).
		Count(&count).Error
	return count, err
}
