// Package notify 提供客户端本地通知中心
// 显式订阅并返回取消函数，订阅生命周期由调用方持有
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Notification 一条本地通知
type Notification struct {
	// Title 通知标题（发送者昵称）
	Title string
	// Body 截断后的消息摘要
	Body string
	// Icon 发送者头像 URL
	Icon string
	// ChatKey 来源会话键，点击通知时用于跳转
	ChatKey string
}

// Center 通知分发中心
type Center struct {
	mu     sync.RWMutex
	nextId uint64
	subs   map[uint64]chan Notification
}

// NewCenter 创建通知中心
func NewCenter() *Center {
	return &Center{subs: make(map[uint64]chan Notification)}
}

// Subscribe 订阅通知流
// 返回接收通道和取消函数，取消后通道会被关闭
func (c *Center) Subscribe(buf int) (<-chan Notification, func()) {
	ch := make(chan Notification, buf)

	c.mu.Lock()
	c.nextId++
	id := c.nextId
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish 向所有订阅者投递通知，通道满时丢弃
func (c *Center) Publish(n Notification) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
			zap.L().Warn("notify subscriber channel full, notification dropped",
				zap.String("title", n.Title))
		}
	}
}

// SubscriberCount 当前订阅数，测试用
func (c *Center) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
