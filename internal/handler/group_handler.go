// Package handler 提供 HTTP 请求处理器
// 本文件处理群组相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
type GroupHandler struct {
	svc service.GroupService
}

// NewGroupHandler 构造函数
func NewGroupHandler(svc service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// CreateGroup 创建群组
// POST /api/groups/create
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.CreateGroup(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetGroups 获取用户加入的群组
// GET /api/groups/:userId
func (h *GroupHandler) GetGroups(c *gin.Context) {
	rsp, err := h.svc.GetGroups(c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// UpdateGroup 更新群组信息
// PUT /api/groups/:groupId
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req request.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.UpdateGroup(c.Param("groupId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// LeaveGroup 退出群组（群主退出即解散）
// DELETE /api/groups/:groupId/:userId
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	if err := h.svc.LeaveGroup(c.Param("groupId"), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetMembers 获取群成员列表
// GET /api/groups/:groupId/members
func (h *GroupHandler) GetMembers(c *gin.Context) {
	rsp, err := h.svc.GetMembers(c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
