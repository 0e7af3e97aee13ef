// Package feed 提供进程内按用户分发的事件总线
// 网关为每个在线连接订阅其用户的事件流，业务层只管发布，
// 不需要感知连接是否存在
package feed

import (
	"sync"

	"go.uber.org/zap"
)

// 事件类型
const (
	EventNewMessage      = "new_message"      // 房间内新消息
	EventMessageInserted = "message_inserted" // 全局消息落库通知
	EventChatCreated     = "chat_created"     // 会话创建通知
)

// Event 推送给客户端的事件
// Kind 决定 Payload 的结构，客户端按类型穷举处理
type Event struct {
	Kind    string `json:"type"`
	ChatId  string `json:"chatId,omitempty"`
	Payload any    `json:"data,omitempty"`
}

// Bus 按用户分发的事件总线
// 同一用户允许多个订阅（多端登录场景）
type Bus struct {
	mu     sync.RWMutex
	nextId uint64
	subs   map[string]map[uint64]chan Event // userId -> 订阅集合
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[uint64]chan Event),
	}
}

// Subscribe 订阅指定用户的事件流
// 返回接收通道和取消订阅函数，取消后通道会被关闭
// 调用方必须在连接断开时调用取消函数，否则订阅泄漏
func (b *Bus) Subscribe(userId string, buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)

	b.mu.Lock()
	b.nextId++
	id := b.nextId
	if b.subs[userId] == nil {
		b.subs[userId] = make(map[uint64]chan Event)
	}
	b.subs[userId][id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[userId]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(b.subs, userId)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish 向指定用户的所有订阅投递事件
// 订阅通道已满时丢弃该条并记录日志，慢消费者不能阻塞发布方
func (b *Bus) Publish(userId string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[userId] {
		select {
		case ch <- event:
		default:
			zap.L().Warn("feed subscriber channel full, event dropped",
				zap.String("user", userId), zap.String("kind", event.Kind))
		}
	}
}

// PublishAll 向多个用户广播同一事件
func (b *Bus) PublishAll(userIds []string, event Event) {
	for _, id := range userIds {
		b.Publish(id, event)
	}
}

// SubscriberCount 返回指定用户当前的订阅数，用于在线判断和测试
func (b *Bus) SubscriberCount(userId string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userId])
}
