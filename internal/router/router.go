// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"stogram_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 构造函数
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 http_server.Init() 中调用，按模块分别注册各个路由组
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r)      // 认证路由
	rt.RegisterContactRoutes(r)   // 联系人路由
	rt.RegisterMessageRoutes(r)   // 消息路由
	rt.RegisterGroupRoutes(r)     // 群组路由
	rt.RegisterFolderRoutes(r)    // 聊天文件夹路由
	rt.RegisterCallRoutes(r)      // 通话路由
	rt.RegisterFileRoutes(r)      // 文件上传路由
	rt.RegisterWebSocketRoutes(r) // WebSocket 路由

	// GET /health - 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
