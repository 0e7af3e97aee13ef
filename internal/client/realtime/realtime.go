// Package realtime 提供客户端 WebSocket 连接
// 负责房间进出帧的发送与服务端事件流的接收
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"stogram_server/pkg/constants"
	"stogram_server/pkg/errorx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event 服务端下发的事件
// Payload 保留原始 JSON，由消费方按 Kind 解码
type Event struct {
	Kind    string          `json:"type"`
	ChatId  string          `json:"chatId,omitempty"`
	Payload json.RawMessage `json:"data,omitempty"`
}

// outboundFrame 上行控制帧
type outboundFrame struct {
	Type   string `json:"type"`
	ChatId string `json:"chatId"`
}

// Conn 一条已建立的实时连接
type Conn struct {
	ws     *websocket.Conn
	events chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial 建立连接，wsURL 形如 ws://localhost:8000/ws
// clientId 为当前用户 uuid；服务端对同一用户只保留最新一条连接
func Dial(ctx context.Context, wsURL, clientId string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"?client_id="+clientId, nil)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "建立实时连接失败")
	}

	c := &Conn{
		ws:     ws,
		events: make(chan Event, constants.CHANNEL_SIZE),
	}
	go c.readLoop()
	return c, nil
}

// Events 返回事件流
// 连接断开后通道关闭
func (c *Conn) Events() <-chan Event {
	return c.events
}

// JoinChat 进入会话房间，开始接收该会话的 new_message 事件
func (c *Conn) JoinChat(chatId string) error {
	return c.writeFrame(outboundFrame{Type: "join_chat", ChatId: chatId})
}

// LeaveChat 退出会话房间
func (c *Conn) LeaveChat(chatId string) error {
	return c.writeFrame(outboundFrame{Type: "leave_chat", ChatId: chatId})
}

// Close 关闭连接
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) writeFrame(frame outboundFrame) error {
	raw, err := json.Marshal(frame)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "上行帧序列化失败")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "上行帧发送失败")
	}
	return nil
}

// readLoop 持续读取事件并投递；解析失败的帧丢弃
func (c *Conn) readLoop() {
	defer func() {
		close(c.events)
		_ = c.Close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Error("realtime read", zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			zap.L().Warn("realtime event unmarshal", zap.Error(err))
			continue
		}

		select {
		case c.events <- event:
		default:
			zap.L().Warn("realtime event buffer full, event dropped", zap.String("kind", event.Kind))
		}
	}
}
