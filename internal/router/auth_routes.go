// Package router 提供 HTTP 路由注册
// 本文件定义认证与用户资料相关的路由
package router

import (
	"stogram_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
// 获取用户资料保持公开（会话恢复在拿到令牌之前调用）
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/api/auth")
	{
		// POST /api/auth/register - 用户注册
		authGroup.POST("/register", rt.handlers.Auth.Register)
		// POST /api/auth/login - 密码登录
		authGroup.POST("/login", rt.handlers.Auth.Login)
		// POST /api/auth/logout - 登出
		authGroup.POST("/logout", rt.handlers.Auth.Logout)
		// GET /api/auth/user/:userId - 获取用户资料
		authGroup.GET("/user/:userId", rt.handlers.Auth.GetUser)
		// PUT /api/auth/user/:userId - 更新用户资料
		authGroup.PUT("/user/:userId", middleware.JWTAuth(), rt.handlers.Auth.UpdateUser)
	}
}
