// Package handler 提供 HTTP 请求处理器
// 本文件处理聊天文件夹相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// FolderHandler 聊天文件夹请求处理器
type FolderHandler struct {
	svc service.FolderService
}

// NewFolderHandler 构造函数
func NewFolderHandler(svc service.FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

// GetFolders 获取用户所有文件夹
// GET /api/folders/:userId
func (h *FolderHandler) GetFolders(c *gin.Context) {
	rsp, err := h.svc.GetFolders(c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// CreateFolder 创建文件夹
// POST /api/folders
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var req request.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.CreateFolder(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// UpdateFolder 更新文件夹
// PUT /api/folders/:folderId
func (h *FolderHandler) UpdateFolder(c *gin.Context) {
	var req request.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.UpdateFolder(c.Param("folderId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// DeleteFolder 删除文件夹
// DELETE /api/folders/:folderId
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	if err := h.svc.DeleteFolder(c.Param("folderId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddChat 向文件夹追加会话
// POST /api/folders/:folderId/add-chat
func (h *FolderHandler) AddChat(c *gin.Context) {
	var req request.FolderChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.AddChat(c.Param("folderId"), req.ChatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// RemoveChat 从文件夹移除会话
// POST /api/folders/:folderId/remove-chat
func (h *FolderHandler) RemoveChat(c *gin.Context) {
	var req request.FolderChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.RemoveChat(c.Param("folderId"), req.ChatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
