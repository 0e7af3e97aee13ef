// Package chat 提供会话解析业务逻辑
// 私聊会话的并发创建依赖 pair_key 唯一索引：先查后建，
// 撞唯一键时复用已存在的会话，保证同一对用户只有一个会话
package chat

import (
	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/feed"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/random"
)

// Service 会话业务逻辑实现
type Service struct {
	repos *repository.Repositories
	bus   *feed.Bus
}

// NewChatService 构造函数
func NewChatService(repos *repository.Repositories, bus *feed.Bus) *Service {
	return &Service{repos: repos, bus: bus}
}

// ResolvePrivateChatId 查找两用户的私聊会话
// 不存在返回空串而非错误，调用方据此决定是否创建
func (s *Service) ResolvePrivateChatId(user1, user2 string) (string, error) {
	chat, err := s.repos.Chat.FindByPairKey(model.PrivatePairKey(user1, user2))
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return "", nil
		}
		zap.L().Error(err.Error())
		return "", errorx.ErrServerBusy
	}
	return chat.Uuid, nil
}

// GetOrCreatePrivateChat 获取或创建私聊会话
// 两个客户端同时首次互发消息时只会产生一个会话
func (s *Service) GetOrCreatePrivateChat(user1, user2 string) (string, error) {
	pairKey := model.PrivatePairKey(user1, user2)

	existing, err := s.repos.Chat.FindByPairKey(pairKey)
	if err == nil {
		return existing.Uuid, nil
	}
	if errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error(err.Error())
		return "", errorx.ErrServerBusy
	}

	newChat := &model.Chat{
		Uuid:    "C" + random.GetNowAndLenRandomString(11),
		Type:    model.ChatTypePrivate,
		PairKey: &pairKey,
	}
	if err := s.repos.Chat.Create(newChat); err != nil {
		// 唯一键冲突说明对方刚创建完，直接复用
		chat, findErr := s.repos.Chat.FindByPairKey(pairKey)
		if findErr != nil {
			zap.L().Error(err.Error())
			return "", errorx.ErrServerBusy
		}
		return chat.Uuid, nil
	}

	for _, uid := range []string{user1, user2} {
		if err := s.repos.Chat.AddParticipant(newChat.Uuid, uid); err != nil {
			zap.L().Error(err.Error())
			return "", errorx.ErrServerBusy
		}
	}

	// 只有真正新建时才通知双方，复用已有会话不重复推送
	if s.bus != nil {
		s.bus.PublishAll([]string{user1, user2}, feed.Event{
			Kind:   feed.EventChatCreated,
			ChatId: newChat.Uuid,
		})
	}
	return newChat.Uuid, nil
}

// ResolveGroupChatId 查找群组对应的会话
func (s *Service) ResolveGroupChatId(groupId string) (string, error) {
	chat, err := s.repos.Chat.FindByGroupId(groupId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return "", errorx.New(errorx.CodeNotFound, "群会话不存在")
		}
		zap.L().Error(err.Error())
		return "", errorx.ErrServerBusy
	}
	return chat.Uuid, nil
}
