// Package router 提供 HTTP 路由注册
// 本文件定义聊天文件夹相关的路由
package router

import "github.com/gin-gonic/gin"

// RegisterFolderRoutes 注册聊天文件夹相关路由
func (rt *Router) RegisterFolderRoutes(r *gin.Engine) {
	folderGroup := r.Group("/api/folders")
	{
		// GET /api/folders/:userId - 用户所有文件夹
		folderGroup.GET("/:userId", rt.handlers.Folder.GetFolders)
		// POST /api/folders - 创建文件夹
		folderGroup.POST("", rt.handlers.Folder.CreateFolder)
		// PUT /api/folders/:folderId - 更新文件夹
		folderGroup.PUT("/:folderId", rt.handlers.Folder.UpdateFolder)
		// DELETE /api/folders/:folderId - 删除文件夹
		folderGroup.DELETE("/:folderId", rt.handlers.Folder.DeleteFolder)
		// POST /api/folders/:folderId/add-chat - 追加会话
		folderGroup.POST("/:folderId/add-chat", rt.handlers.Folder.AddChat)
		// POST /api/folders/:folderId/remove-chat - 移除会话
		folderGroup.POST("/:folderId/remove-chat", rt.handlers.Folder.RemoveChat)
	}
}
