package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"stogram_server/internal/feed"
	"stogram_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// Origin 校验交给 CORS 中间件统一处理
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundFrame 客户端上行帧
// join_chat/leave_chat 控制房间归属
type inboundFrame struct {
	Type   string `json:"type"`
	ChatId string `json:"chatId"`
}

// Client 一条用户连接
// 读协程解析上行帧，写协程合并房间消息和 feed 事件后下发
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userId string

	send        chan feed.Event // 房间内直投消息
	feedCh      <-chan feed.Event
	unsubscribe func()
	closeOnce   sync.Once
}

// NewClientInit 升级 HTTP 连接并接入中枢
// clientId 为已通过认证的用户 uuid
func NewClientInit(c *gin.Context, hub *Hub, clientId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade", zap.Error(err))
		return
	}

	feedCh, unsubscribe := hub.bus.Subscribe(clientId, constants.CHANNEL_SIZE)
	client := &Client{
		hub:         hub,
		conn:        conn,
		userId:      clientId,
		send:        make(chan feed.Event, constants.CHANNEL_SIZE),
		feedCh:      feedCh,
		unsubscribe: unsubscribe,
	}
	hub.register <- client

	go client.readPump()
	go client.writePump()
	zap.L().Info("ws连接成功", zap.String("user", clientId))
}

// enqueue 投递房间内事件，队列满时丢弃
func (c *Client) enqueue(event feed.Event) {
	select {
	case c.send <- event:
	default:
		zap.L().Warn("ws client send channel full, event dropped", zap.String("user", c.userId))
	}
}

// readPump 读取并处理上行帧
// 连接出错即注销，房间归属随连接一起清理
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.unsubscribe()
		c.closeConn()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Error("ws read", zap.String("user", c.userId), zap.Error(err))
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			zap.L().Warn("ws inbound frame unmarshal", zap.String("user", c.userId), zap.Error(err))
			continue
		}

		switch frame.Type {
		case "join_chat":
			if frame.ChatId != "" {
				c.hub.join <- roomRequest{client: c, chatId: frame.ChatId}
			}
		case "leave_chat":
			if frame.ChatId != "" {
				c.hub.leave <- roomRequest{client: c, chatId: frame.ChatId}
			}
		default:
			zap.L().Warn("ws unknown inbound frame", zap.String("type", frame.Type))
		}
	}
}

// writePump 把房间消息和 feed 事件写回连接
// feed 订阅被取消（通道关闭）后退出
func (c *Client) writePump() {
	for {
		var event feed.Event
		var ok bool
		select {
		case event, ok = <-c.send:
		case event, ok = <-c.feedCh:
		}
		if !ok {
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			zap.L().Error("ws outbound marshal", zap.Error(err))
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			zap.L().Error("ws write", zap.String("user", c.userId), zap.Error(err))
			return
		}
	}
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		if err := c.conn.Close(); err != nil {
			zap.L().Debug("ws close", zap.Error(err))
		}
	})
}
