// Package router 提供 HTTP 路由注册
// 本文件定义消息与会话解析相关的路由
package router

import "github.com/gin-gonic/gin"

// RegisterMessageRoutes 注册消息相关路由
func (rt *Router) RegisterMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/api/messages")
	{
		// POST /api/messages/send - 发送消息
		messageGroup.POST("/send", rt.handlers.Message.SendMessage)
		// GET /api/messages/list/:chatId?userId= - 会话消息列表
		messageGroup.GET("/list/:chatId", rt.handlers.Message.GetMessages)
		// GET /api/messages/chat-id/private/:user1/:user2 - 解析私聊会话
		messageGroup.GET("/chat-id/private/:user1/:user2", rt.handlers.Message.GetPrivateChatId)
		// GET /api/messages/chat-id/group/:groupId - 解析群会话
		messageGroup.GET("/chat-id/group/:groupId", rt.handlers.Message.GetGroupChatId)
		// GET /api/messages/last/:chatId - 最后一条消息摘要
		messageGroup.GET("/last/:chatId", rt.handlers.Message.GetLastMessage)
	}
}
