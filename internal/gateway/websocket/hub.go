// Package websocket 提供实时网关
// 每个登录用户持有一条 WebSocket 连接，通过 join_chat/leave_chat
// 控制房间归属：进入房间的连接收到 new_message，所有会话成员
// 无论是否进入房间都会收到 message_inserted 全局通知
package websocket

import (
	"context"
	"encoding/json"

	"stogram_server/internal/feed"
	"stogram_server/internal/relay"

	"go.uber.org/zap"
)

// Envelope 中继层承载的事件载荷
// 消息服务发布时就把成员列表算好，网关消费时无须回查数据库
type Envelope struct {
	ChatId       string          `json:"chatId"`
	Participants []string        `json:"participants"`
	Message      json.RawMessage `json:"message"`
}

// StatusStore 在线状态存储接口
// 网关据此更新用户在线标记，避免直接依赖 dao 层
type StatusStore interface {
	SetOnline(userId string) error
	SetOffline(userId string) error
}

type roomRequest struct {
	client *Client
	chatId string
}

// Hub 连接与房间管理中枢
// 所有 map 只在 Run 协程内读写，外部通过通道交互
type Hub struct {
	bus    *feed.Bus
	broker relay.Broker
	status StatusStore

	clients map[string]*Client           // userId -> 连接（同一用户重复登录时新连接顶替旧连接）
	rooms   map[string]map[*Client]bool  // chatId -> 房间内连接

	register   chan *Client
	unregister chan *Client
	join       chan roomRequest
	leave      chan roomRequest
	disconnect chan string
	deliver    chan Envelope
}

// NewHub 创建网关中枢
func NewHub(bus *feed.Bus, broker relay.Broker, status StatusStore) *Hub {
	return &Hub{
		bus:        bus,
		broker:     broker,
		status:     status,
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan roomRequest),
		leave:      make(chan roomRequest),
		disconnect: make(chan string, 16),
		deliver:    make(chan Envelope, 64),
	}
}

// Run 启动中枢主循环和中继消费协程
// ctx 取消后停止消费并退出
func (h *Hub) Run(ctx context.Context) {
	go h.broker.Consume(ctx, func(value []byte) {
		var env Envelope
		if err := json.Unmarshal(value, &env); err != nil {
			zap.L().Error("relay envelope unmarshal", zap.Error(err))
			return
		}
		select {
		case h.deliver <- env:
		case <-ctx.Done():
		}
	})

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case req := <-h.join:
			h.handleJoin(req)
		case req := <-h.leave:
			h.handleLeave(req)
		case userId := <-h.disconnect:
			h.handleDisconnect(userId)
		case env := <-h.deliver:
			h.handleDeliver(env)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	// 同一用户重复登录，旧连接先下线
	if old, ok := h.clients[client.userId]; ok && old != client {
		h.detach(old)
		old.closeConn()
	}
	h.clients[client.userId] = client
	if err := h.status.SetOnline(client.userId); err != nil {
		zap.L().Warn("set user online", zap.String("user", client.userId), zap.Error(err))
	}
	zap.L().Info("ws client registered", zap.String("user", client.userId))
}

func (h *Hub) handleUnregister(client *Client) {
	// 只有当前生效的连接才触发下线，被顶替的旧连接跳过
	if h.clients[client.userId] != client {
		return
	}
	h.detach(client)
	delete(h.clients, client.userId)
	if err := h.status.SetOffline(client.userId); err != nil {
		zap.L().Warn("set user offline", zap.String("user", client.userId), zap.Error(err))
	}
	zap.L().Info("ws client unregistered", zap.String("user", client.userId))
}

// detach 把连接从所有房间移除
func (h *Hub) detach(client *Client) {
	for chatId, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, chatId)
			}
		}
	}
}

func (h *Hub) handleJoin(req roomRequest) {
	if h.rooms[req.chatId] == nil {
		h.rooms[req.chatId] = make(map[*Client]bool)
	}
	h.rooms[req.chatId][req.client] = true
}

func (h *Hub) handleLeave(req roomRequest) {
	if members, ok := h.rooms[req.chatId]; ok {
		delete(members, req.client)
		if len(members) == 0 {
			delete(h.rooms, req.chatId)
		}
	}
}

// handleDeliver 分发一条中继事件
// 房间内连接收 new_message，全部成员走 feed 总线收 message_inserted
func (h *Hub) handleDeliver(env Envelope) {
	roomEvent := feed.Event{Kind: feed.EventNewMessage, ChatId: env.ChatId, Payload: env.Message}
	for client := range h.rooms[env.ChatId] {
		client.enqueue(roomEvent)
	}
	h.bus.PublishAll(env.Participants, feed.Event{
		Kind:    feed.EventMessageInserted,
		ChatId:  env.ChatId,
		Payload: env.Message,
	})
}

// IsOnline 判断用户是否持有活跃连接，结果仅用于展示
func (h *Hub) IsOnline(userId string) bool {
	return h.bus.SubscriberCount(userId) > 0
}

// Disconnect 主动断开指定用户的连接（登出时调用）
// 经由主循环处理，避免并发访问 clients
func (h *Hub) Disconnect(userId string) {
	select {
	case h.disconnect <- userId:
	default:
		zap.L().Warn("hub disconnect channel full", zap.String("user", userId))
	}
}

func (h *Hub) handleDisconnect(userId string) {
	client, ok := h.clients[userId]
	if !ok {
		return
	}
	h.detach(client)
	delete(h.clients, userId)
	client.closeConn()
	if err := h.status.SetOffline(userId); err != nil {
		zap.L().Warn("set user offline", zap.String("user", userId), zap.Error(err))
	}
}
