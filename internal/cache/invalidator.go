package cache

import "context"

// Invalidator removes every cached view affected by a conversation
// mutation: the conversation's own key family (all pagination
// variants), the manager's list family and the customer's detail
// family.
type Invalidator struct {
	cache Cache
}

func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

func (i *Invalidator) InvalidateConversation(ctx context.Context, conversationID, managerID, customerID string) {
	if conversationID != "" {
		i.cache.DeleteByPrefix(ctx, ConversationKey(conversationID)+":")
		i.cache.Delete(ctx, ConversationKey(conversationID))
	}
	if managerID != "" {
		i.cache.DeleteByPrefix(ctx, ManagerListKey(managerID)+":")
		i.cache.Delete(ctx, ManagerListKey(managerID))
	}
	if customerID != "" {
		i.cache.DeleteByPrefix(ctx, CustomerKey(customerID)+":")
		i.cache.Delete(ctx, CustomerKey(customerID))
	}
}

func (i *Invalidator) InvalidateAutoReplyConfig(ctx context.Context, managerID string) {
	i.cache.Delete(ctx, AutoReplyConfigKey(managerID))
}
