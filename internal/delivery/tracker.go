// Package delivery owns the per-participant delivery state machine:
// sent -> delivered -> read, monotonic per side. Bulk read marking may
// skip delivered; nothing ever regresses.
package delivery

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

type Tracker interface {
	// MarkDelivered transitions every message authored by the other
	// role from sent to delivered on the viewer's side.
	MarkDelivered(ctx context.Context, conversationID string, viewer common.Role) (int64, error)

	// MarkRead transitions every sent or delivered message authored by
	// the other role to read on the viewer's side. The changed count
	// drives the unread-counter reset.
	MarkRead(ctx context.Context, conversationID string, viewer common.Role) (int64, error)
}

type tracker struct {
	db *gorm.DB
}

func NewTracker(db *gorm.DB) Tracker {
	return &tracker{db: db}
}

func statusColumns(viewer common.Role) (statusCol, stampCol string) {
	if viewer == common.RoleManager {
		return "manager_status", "manager_status_at"
	}
	return "customer_status", "customer_status_at"
}

func (t *tracker) MarkDelivered(ctx context.Context, conversationID string, viewer common.Role) (int64, error) {
	if err := common.ValidateParticipantRole(viewer); err != nil {
		return 0, err
	}
	statusCol, stampCol := statusColumns(viewer)

	// Single conditional UPDATE keeps the transition atomic under
	// concurrent mark calls for the same conversation.
	result := t.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("author_type <> ?", viewer).
		Where(statusCol+" = ?", common.StatusSent).
		Updates(map[string]interface{}{
			statusCol: common.StatusDelivered,
			stampCol:  time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (t *tracker) MarkRead(ctx context.Context, conversationID string, viewer common.Role) (int64, error) {
	if err := common.ValidateParticipantRole(viewer); err != nil {
		return 0, err
	}
	statusCol, stampCol := statusColumns(viewer)

	result := t.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("author_type <> ?", viewer).
		Where(statusCol+" IN ?", []common.DeliveryStatus{common.StatusSent, common.StatusDelivered}).
		Updates(map[string]interface{}{
			statusCol: common.StatusRead,
			stampCol:  time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
