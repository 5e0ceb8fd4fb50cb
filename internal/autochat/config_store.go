package autochat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"chatdesk/internal/cache"
	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

// ConfigStore reads and writes per-manager bot configuration. Reads go
// through the cache; the bot consults the config on every customer
// turn, so a short TTL keeps edits visible without hammering the
// database.
type ConfigStore struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewConfigStore(db *gorm.DB, c cache.Cache, ttl time.Duration) *ConfigStore {
	return &ConfigStore{db: db, cache: c, ttl: ttl}
}

// Active returns the manager's active configuration, or nil when the
// manager has none (the bot then runs on defaults). Cache entries hold
// the config JSON; absence is not cached.
func (s *ConfigStore) Active(ctx context.Context, managerID string) (*dbmysql.AutoReplyConfig, error) {
	if err := common.ValidateID(managerID, "manager"); err != nil {
		return nil, err
	}

	key := cache.AutoReplyConfigKey(managerID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var config dbmysql.AutoReplyConfig
		if err := json.Unmarshal(raw, &config); err == nil {
			return &config, nil
		}
	}

	var config dbmysql.AutoReplyConfig
	err := s.db.WithContext(ctx).
		First(&config, "manager_id = ? AND is_active = ?", managerID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(&config); err == nil {
		s.cache.SetWithTTL(ctx, key, raw, s.ttl)
	}
	return &config, nil
}

// Find returns the manager's configuration regardless of active state,
// bypassing the cache. Used by the management API.
func (s *ConfigStore) Find(ctx context.Context, managerID string) (*dbmysql.AutoReplyConfig, error) {
	if err := common.ValidateID(managerID, "manager"); err != nil {
		return nil, err
	}
	var config dbmysql.AutoReplyConfig
	err := s.db.WithContext(ctx).First(&config, "manager_id = ?", managerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("auto-reply configuration not found")
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// UpsertInput carries the updatable parts of a configuration. Nil
// fields are left untouched on update.
type UpsertInput struct {
	Welcome   *dbmysql.ResponseTemplate
	Services  []dbmysql.ServiceItem
	TimeSlots []dbmysql.TimeSlot
	Responses map[string]dbmysql.ResponseTemplate
	IsActive  *bool
}

// Upsert creates or updates the manager's configuration and drops the
// cached copy so the next bot turn sees the new version.
func (s *ConfigStore) Upsert(ctx context.Context, managerID string, input UpsertInput) (*dbmysql.AutoReplyConfig, error) {
	if err := common.ValidateID(managerID, "manager"); err != nil {
		return nil, err
	}

	var config dbmysql.AutoReplyConfig
	err := s.db.WithContext(ctx).First(&config, "manager_id = ?", managerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		config = dbmysql.AutoReplyConfig{
			ID:        common.NewID(),
			ManagerID: managerID,
			IsActive:  true,
		}
	} else if err != nil {
		return nil, err
	}

	if input.Welcome != nil {
		config.Welcome = dbmysql.TemplateJSON(*input.Welcome)
	}
	if input.Services != nil {
		config.Services = input.Services
	}
	if input.TimeSlots != nil {
		config.TimeSlots = input.TimeSlots
	}
	if input.Responses != nil {
		config.Responses = dbmysql.ResponsesJSON(input.Responses)
	}
	if input.IsActive != nil {
		config.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&config).Error; err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.AutoReplyConfigKey(managerID))
	return &config, nil
}
