package redis

import "fmt"

// 缓存键命名约定，统一前缀便于按模式清理
const (
	// KeyOnlineUsers 在线用户集合
	KeyOnlineUsers = "stogram:online_users"
)

// KeyUserToken 用户 Refresh Token ID 缓存键，单点互踢用
func KeyUserToken(userId string) string {
	return fmt.Sprintf("stogram:user_token:%s", userId)
}

// KeyLastMessage 会话最后消息缓存键
func KeyLastMessage(chatId string) string {
	return fmt.Sprintf("stogram:chat:%s:last_message", chatId)
}

// KeyChatMessagesPattern 会话消息相关缓存的清理模式
func KeyChatMessagesPattern(chatId string) string {
	return fmt.Sprintf("stogram:chat:%s:*", chatId)
}
