package autochat

import (
	"context"
	"log"
	"time"

	"chatdesk/internal/common"
	"chatdesk/internal/config"
	"chatdesk/internal/conversation"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/message"
)

const handoffContent = "I've answered your initial questions! Would you like to speak directly with our manager? They can provide more personalized assistance. 😊"

var handoffQuickReply = common.QuickReply{Text: "Talk with my manager", Action: ActionTalkWithManager}

// Engine drives the scripted bot. Replies are authored as the manager;
// every reply consumes one slot of the conversation's hard quota, and
// quota exhaustion hands the conversation off to the human exactly
// once.
type Engine struct {
	messages  message.Service
	msgRepo   message.Repository
	convRepo  conversation.Repository
	directory common.ParticipantDirectory
	configs   *ConfigStore
	settings  config.AutoChatConfig
}

func NewEngine(
	messages message.Service,
	msgRepo message.Repository,
	convRepo conversation.Repository,
	directory common.ParticipantDirectory,
	configs *ConfigStore,
	settings config.AutoChatConfig,
) *Engine {
	return &Engine{
		messages:  messages,
		msgRepo:   msgRepo,
		convRepo:  convRepo,
		directory: directory,
		configs:   configs,
		settings:  settings,
	}
}

// SendWelcome greets a brand-new conversation. It is a no-op unless
// auto-chat is on, no participant has spoken yet, and the conversation
// is younger than the grace window; the age check keeps a stale
// conversation that somehow never got messages from greeting a
// returning customer months later.
func (e *Engine) SendWelcome(ctx context.Context, conversationID string) (*dbmysql.Message, error) {
	conv, err := e.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.AutoChatEnabled {
		return nil, nil
	}

	count, err := e.msgRepo.CountNonSystem(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	if time.Since(conv.CreatedAt) > e.settings.WelcomeGrace {
		return nil, nil
	}

	r, err := e.responderFor(ctx, conv)
	if err != nil {
		return nil, err
	}
	return e.sendReply(ctx, conv, r.welcome())
}

// Process answers one customer turn. Returned messages are in send
// order; nil means the bot stayed silent. Errors inside the bot never
// propagate to the customer's own send path, so callers log and move
// on.
func (e *Engine) Process(ctx context.Context, conversationID, content, action string) ([]*dbmysql.Message, error) {
	conv, err := e.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.AutoChatEnabled {
		return nil, nil
	}

	r, err := e.responderFor(ctx, conv)
	if err != nil {
		return nil, err
	}

	classification := Classify(content, action, r.services, r.timeSlots)

	// A handoff request short-circuits the quota: it must work even on
	// the very last exchange.
	if classification.Intent == IntentTalkToHuman {
		if err := e.convRepo.DisableAutoChat(ctx, conv.ID); err != nil {
			return nil, err
		}
		msg, err := e.sendReply(ctx, conv, r.respond(classification, content))
		if err != nil {
			return nil, err
		}
		return []*dbmysql.Message{msg}, nil
	}

	count, ok, err := e.convRepo.ConsumeAutoChatBudget(ctx, conv.ID, e.settings.MaxMessages)
	if err != nil {
		return nil, err
	}
	if !ok {
		return e.handoff(ctx, conv)
	}

	out := r.respond(classification, content)
	if out.Booking != nil {
		if err := e.convRepo.MergeBookingState(ctx, conv.ID, *out.Booking); err != nil {
			log.Printf("failed to persist booking state for conversation %s: %v", conv.ID, err)
		}
	}
	if out.DisableAutoChat {
		if err := e.convRepo.DisableAutoChat(ctx, conv.ID); err != nil {
			return nil, err
		}
	}

	// The final budgeted reply carries the handoff option so the
	// customer is never left without a path to a human.
	if count >= e.settings.MaxMessages {
		out.QuickReplies = append(out.QuickReplies, handoffQuickReply)
	}

	msg, err := e.sendReply(ctx, conv, out)
	if err != nil {
		return nil, err
	}
	return []*dbmysql.Message{msg}, nil
}

// Disable turns the bot off for a conversation, typically when the
// manager takes over by hand.
func (e *Engine) Disable(ctx context.Context, conversationID string) error {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return err
	}
	return e.convRepo.DisableAutoChat(ctx, conversationID)
}

// handoff posts the one-time "talk with our manager" message. The
// claim is an atomic flag flip, so concurrent exhausted turns produce
// at most one handoff message ever.
func (e *Engine) handoff(ctx context.Context, conv *dbmysql.Conversation) ([]*dbmysql.Message, error) {
	claimed, err := e.convRepo.ClaimHandoff(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	msg, err := e.messages.Create(ctx, message.CreatePayload{
		ConversationID: conv.ID,
		AuthorType:     common.RoleManager,
		AuthorID:       conv.ManagerID,
		Content:        handoffContent,
		QuickReplies:   []common.QuickReply{handoffQuickReply},
	})
	if err != nil {
		return nil, err
	}
	return []*dbmysql.Message{msg}, nil
}

func (e *Engine) responderFor(ctx context.Context, conv *dbmysql.Conversation) (*responder, error) {
	manager, err := e.directory.Manager(ctx, conv.ManagerID)
	if err != nil {
		// Missing directory entries degrade to defaults instead of
		// silencing the bot.
		log.Printf("failed to resolve manager %s: %v", conv.ManagerID, err)
		manager = nil
	}

	cfg, err := e.configs.Active(ctx, conv.ManagerID)
	if err != nil {
		log.Printf("failed to load auto-reply config for manager %s: %v", conv.ManagerID, err)
		cfg = nil
	}

	return newResponder(cfg, managerInfoFrom(manager), conv.Metadata.Data().CustomerName, conv.Booking.Data()), nil
}

func (e *Engine) sendReply(ctx context.Context, conv *dbmysql.Conversation, out reply) (*dbmysql.Message, error) {
	return e.messages.Create(ctx, message.CreatePayload{
		ConversationID: conv.ID,
		AuthorType:     common.RoleManager,
		AuthorID:       conv.ManagerID,
		Content:        out.Content,
		QuickReplies:   out.QuickReplies,
	})
}
