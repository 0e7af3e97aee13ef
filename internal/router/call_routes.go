// Package router 提供 HTTP 路由注册
// 本文件定义通话记录相关的路由
package router

import "github.com/gin-gonic/gin"

// RegisterCallRoutes 注册通话相关路由
func (rt *Router) RegisterCallRoutes(r *gin.Engine) {
	callGroup := r.Group("/api/calls")
	{
		// POST /api/calls/initiate - 发起通话
		callGroup.POST("/initiate", rt.handlers.Call.Initiate)
		// PUT /api/calls/accept/:callId - 接听
		callGroup.PUT("/accept/:callId", rt.handlers.Call.Accept)
		// PUT /api/calls/decline/:callId - 拒接
		callGroup.PUT("/decline/:callId", rt.handlers.Call.Decline)
		// PUT /api/calls/end/:callId - 挂断
		callGroup.PUT("/end/:callId", rt.handlers.Call.End)
		// GET /api/calls/active/:userId - 进行中的通话
		callGroup.GET("/active/:userId", rt.handlers.Call.GetActive)
	}
}
