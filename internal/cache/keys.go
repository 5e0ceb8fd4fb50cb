package cache

import "fmt"

// Key families. Paginated variants append ":limit:skip" to the base
// key, so invalidation always runs a prefix delete over "base:".

func ConversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

func ConversationPageKey(conversationID string, limit, skip int) string {
	return fmt.Sprintf("%s:%d:%d", ConversationKey(conversationID), limit, skip)
}

func ManagerListKey(managerID string) string {
	return fmt.Sprintf("manager:%s:conversations", managerID)
}

func CustomerKey(customerID string) string {
	return fmt.Sprintf("customer:%s:conversation", customerID)
}

func CustomerPageKey(customerID string, limit, skip int) string {
	return fmt.Sprintf("%s:%d:%d", CustomerKey(customerID), limit, skip)
}

func AutoReplyConfigKey(managerID string) string {
	return fmt.Sprintf("auto-reply:%s", managerID)
}
