// Package handler 提供 HTTP 请求处理器
// 本文件处理消息与会话解析相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	svc   service.MessageService
	chats service.ChatService
}

// NewMessageHandler 构造函数
func NewMessageHandler(svc service.MessageService, chats service.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc, chats: chats}
}

// SendMessage 发送消息
// POST /api/messages/send
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.SendMessage(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetMessages 获取会话消息列表
// GET /api/messages/:chatId?userId=
func (h *MessageHandler) GetMessages(c *gin.Context) {
	rsp, err := h.svc.GetMessages(c.Param("chatId"), c.Query("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetPrivateChatId 解析两用户的私聊会话
// GET /api/messages/chat-id/private/:user1/:user2
// 会话不存在时 chatId 为空串而非错误
func (h *MessageHandler) GetPrivateChatId(c *gin.Context) {
	chatId, err := h.chats.ResolvePrivateChatId(c.Param("user1"), c.Param("user2"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ChatIdRespond{ChatId: chatId})
}

// GetGroupChatId 解析群组对应的会话
// GET /api/messages/chat-id/group/:groupId
func (h *MessageHandler) GetGroupChatId(c *gin.Context) {
	chatId, err := h.chats.ResolveGroupChatId(c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ChatIdRespond{ChatId: chatId})
}

// GetLastMessage 获取会话最后一条消息摘要
// GET /api/messages/last/:chatId
// 没有消息时 data 为 null
func (h *MessageHandler) GetLastMessage(c *gin.Context) {
	rsp, err := h.svc.GetLastMessage(c.Param("chatId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
