// Package router 提供 HTTP 路由注册
// 本文件定义联系人相关的路由
package router

import "github.com/gin-gonic/gin"

// RegisterContactRoutes 注册联系人相关路由
// 列表查询走 /list/:userId 前缀，避免与 /search 的路由树冲突
func (rt *Router) RegisterContactRoutes(r *gin.Engine) {
	contactGroup := r.Group("/api/contacts")
	{
		// GET /api/contacts/search?query=&userId= - 搜索用户
		contactGroup.GET("/search", rt.handlers.Contact.Search)
		// GET /api/contacts/list/:userId - 联系人列表（显式+私聊推导）
		contactGroup.GET("/list/:userId", rt.handlers.Contact.GetContacts)
		// POST /api/contacts/add - 添加联系人
		contactGroup.POST("/add", rt.handlers.Contact.AddContact)
		// DELETE /api/contacts/:userId/:contactUserId - 删除联系人
		contactGroup.DELETE("/:userId/:contactUserId", rt.handlers.Contact.DeleteContact)
	}
}
