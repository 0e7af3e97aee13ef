// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 接入路由
package router

import "github.com/gin-gonic/gin"

// RegisterWebSocketRoutes 注册 WebSocket 路由
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	// GET /ws?client_id=xxx - 升级为 WebSocket 连接
	r.GET("/ws", rt.handlers.Ws.Connect)
}
