// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	ws "stogram_server/internal/gateway/websocket"
	"stogram_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 接入处理器
type WsHandler struct {
	hub *ws.Hub
}

// NewWsHandler 构造函数
func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 升级 HTTP 连接为 WebSocket 并接入中枢
// GET /ws?client_id=xxx
func (h *WsHandler) Connect(c *gin.Context) {
	clientId := c.Query("client_id")
	if clientId == "" {
		zap.L().Error("clientId获取失败")
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeInvalidParam,
			"msg":  "clientId获取失败",
		})
		return
	}
	ws.NewClientInit(c, h.hub, clientId)
}
