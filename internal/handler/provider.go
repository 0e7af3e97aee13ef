// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	ws "stogram_server/internal/gateway/websocket"
	"stogram_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	Contact *ContactHandler
	Message *MessageHandler
	Group   *GroupHandler
	Folder  *FolderHandler
	Call    *CallHandler
	File    *FileHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合实例
// hub: WebSocket 网关中枢
func NewHandlers(svc *service.Services, hub *ws.Hub) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		Contact: NewContactHandler(svc.Contact),
		Message: NewMessageHandler(svc.Message, svc.Chat),
		Group:   NewGroupHandler(svc.Group),
		Folder:  NewFolderHandler(svc.Folder),
		Call:    NewCallHandler(svc.Call),
		File:    NewFileHandler(svc.File),
		Ws:      NewWsHandler(hub),
	}
}
