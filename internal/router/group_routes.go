// Package router 提供 HTTP 路由注册
// 本文件定义群组相关的路由
package router

import "github.com/gin-gonic/gin"

// RegisterGroupRoutes 注册群组相关路由
func (rt *Router) RegisterGroupRoutes(r *gin.Engine) {
	groupGroup := r.Group("/api/groups")
	{
		// POST /api/groups/create - 创建群组
		groupGroup.POST("/create", rt.handlers.Group.CreateGroup)
		// GET /api/groups/list/:userId - 用户加入的群组
		groupGroup.GET("/list/:userId", rt.handlers.Group.GetGroups)
		// GET /api/groups/members/:groupId - 群成员列表
		groupGroup.GET("/members/:groupId", rt.handlers.Group.GetMembers)
		// PUT /api/groups/:groupId - 更新群组信息
		groupGroup.PUT("/:groupId", rt.handlers.Group.UpdateGroup)
		// DELETE /api/groups/:groupId/:userId - 退出/解散群组
		groupGroup.DELETE("/:groupId/:userId", rt.handlers.Group.LeaveGroup)
	}
}
