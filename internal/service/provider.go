// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"stogram_server/internal/dao/mysql/repository"
	myredis "stogram_server/internal/dao/redis"
	"stogram_server/internal/feed"
	"stogram_server/internal/relay"
	"stogram_server/internal/service/auth"
	"stogram_server/internal/service/call"
	"stogram_server/internal/service/chat"
	"stogram_server/internal/service/contact"
	"stogram_server/internal/service/file"
	"stogram_server/internal/service/folder"
	"stogram_server/internal/service/group"
	"stogram_server/internal/service/message"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Auth    AuthService
	Contact ContactService
	Chat    ChatService
	Message MessageService
	Group   GroupService
	Call    CallService
	Folder  FolderService
	File    FileService
}

// NewServices 创建并注入所有 Service 实例
// repos: 数据访问层聚合
// cache: 异步缓存服务
// broker: 消息中继
// bus: 事件总线，会话创建通知经此下发
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, broker relay.Broker, bus *feed.Bus) *Services {
	chatSvc := chat.NewChatService(repos, bus)
	return &Services{
		Auth:    auth.NewAuthService(repos, cache),
		Contact: contact.NewContactService(repos, chatSvc),
		Chat:    chatSvc,
		Message: message.NewMessageService(repos, cache, broker),
		Group:   group.NewGroupService(repos, bus),
		Call:    call.NewCallService(repos),
		Folder:  folder.NewFolderService(repos),
		File:    file.NewFileService(),
	}
}
