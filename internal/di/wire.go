//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"chatdesk/internal/autochat"
	"chatdesk/internal/cache"
	"chatdesk/internal/conversation"
	"chatdesk/internal/dbmongo"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/delivery"
	"chatdesk/internal/directory"
	"chatdesk/internal/httpapi"
	"chatdesk/internal/message"
	"chatdesk/internal/realtime"
)

// InitializeApplication builds the full object graph.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		dbmysql.NewMySQL,
		dbmongo.NewMongoConnection,
		dbmongo.NewAttachmentStorage,
		ProvideCache,
		ProvideAttachmentStorageIface,
		ProvideMessageLimits,
		ProvideAutoChatSettings,
		ProvideConfigStore,
		cache.NewInvalidator,
		realtime.NewHub,
		directory.NewRepository,
		delivery.NewTracker,
		conversation.NewRepository,
		conversation.NewService,
		message.NewRepository,
		message.NewService,
		autochat.NewEngine,
		httpapi.NewServer,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
