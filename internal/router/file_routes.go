// Package router 提供 HTTP 路由注册
// 本文件定义文件上传相关的路由
package router

import (
	"stogram_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterFileRoutes 注册文件上传相关路由
// 上传只在登录会话内发生，挂 JWT 鉴权
func (rt *Router) RegisterFileRoutes(r *gin.Engine) {
	fileGroup := r.Group("/api/files", middleware.JWTAuth())
	{
		// POST /api/files/upload - 上传 base64 文件
		fileGroup.POST("/upload", rt.handlers.File.Upload)
	}
}
