// Package message 提供消息业务逻辑
// 发送路径：落库 -> 发布到中继 -> 网关推送在线成员；
// 会话最后消息摘要走 Redis 缓存，落库后异步刷新
package message

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	myredis "stogram_server/internal/dao/redis"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/gateway/websocket"
	"stogram_server/internal/model"
	"stogram_server/internal/relay"
	"stogram_server/pkg/constants"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/snowflake"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	broker relay.Broker
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, cache myredis.AsyncCacheService, broker relay.Broker) *messageService {
	return &messageService{repos: repos, cache: cache, broker: broker}
}

func toMessageRespond(msg *model.Message, requesterId string) respond.MessageRespond {
	return respond.MessageRespond{
		Uuid:      msg.Uuid,
		ChatId:    msg.ChatId,
		SenderId:  msg.SendId,
		Type:      msg.Type,
		Content:   msg.Content,
		FileUrl:   msg.FileUrl,
		FileName:  msg.FileName,
		FileSize:  msg.FileSize,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		IsOwn:     requesterId != "" && msg.SendId == requesterId,
	}
}

// SendMessage 落库并经中继广播一条消息
func (s *messageService) SendMessage(req request.SendMessageRequest) (*respond.MessageRespond, error) {
	if req.Type == model.MessageTypeText && req.Content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "文本消息内容不能为空")
	}

	// 发送者必须是会话成员
	isMember, err := s.repos.Chat.IsParticipant(req.ChatId, req.SenderId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	if !isMember {
		return nil, errorx.New(errorx.CodeInvalidParam, "发送者不是会话成员")
	}

	msg := &model.Message{
		Uuid:     snowflake.GenerateID(),
		ChatId:   req.ChatId,
		SendId:   req.SenderId,
		Type:     req.Type,
		Content:  req.Content,
		FileUrl:  req.FileUrl,
		FileName: req.FileName,
		FileSize: req.FileSize,
	}
	if err := s.repos.Message.Create(msg); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	rsp := toMessageRespond(msg, req.SenderId)
	rsp.IsOwn = false // 广播载荷不带请求方视角，各端自行判断

	// 成员列表在发布时算好，网关消费时无须回查
	participants, err := s.repos.Chat.FindParticipantIds(req.ChatId)
	if err != nil {
		zap.L().Error(err.Error())
		participants = nil
	}
	if payload, err := json.Marshal(rsp); err == nil {
		envelope, _ := json.Marshal(websocket.Envelope{
			ChatId:       req.ChatId,
			Participants: participants,
			Message:      payload,
		})
		if err := s.broker.Publish(context.Background(), []byte(req.ChatId), envelope); err != nil {
			zap.L().Error("中继发布失败", zap.Error(err))
		}
	}

	// 异步刷新最后消息缓存
	s.cacheLastMessage(msg)

	rsp.IsOwn = true
	return &rsp, nil
}

// cacheLastMessage 异步写入会话最后消息摘要
func (s *messageService) cacheLastMessage(msg *model.Message) {
	summary := respond.LastMessageRespond{
		Type:      msg.Type,
		Content:   msg.Content,
		SenderId:  msg.SendId,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	key := myredis.KeyLastMessage(msg.ChatId)
	s.cache.SubmitTask(func() {
		if err := s.cache.Set(context.Background(), key, string(payload), constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("缓存最后消息失败", zap.Error(err))
		}
	})
}

// GetMessages 按时间升序获取会话消息
func (s *messageService) GetMessages(chatId, userId string) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindByChatId(chatId, constants.MESSAGE_PAGE_LIMIT)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	result := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		result = append(result, toMessageRespond(&messages[i], userId))
	}
	return result, nil
}

// GetLastMessage 获取会话最后一条消息摘要
// 先读缓存，未命中回源数据库并回填；没有任何消息时返回 nil
func (s *messageService) GetLastMessage(chatId string) (*respond.LastMessageRespond, error) {
	cached, err := s.cache.Get(context.Background(), myredis.KeyLastMessage(chatId))
	if err == nil && cached != "" {
		var summary respond.LastMessageRespond
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	msg, err := s.repos.Message.FindLastByChatId(chatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, nil
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	s.cacheLastMessage(msg)
	return &respond.LastMessageRespond{
		Type:      msg.Type,
		Content:   msg.Content,
		SenderId:  msg.SendId,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}, nil
}
