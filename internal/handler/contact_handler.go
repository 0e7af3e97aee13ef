// Package handler 提供 HTTP 请求处理器
// 本文件处理联系人相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler 联系人请求处理器
type ContactHandler struct {
	svc service.ContactService
}

// NewContactHandler 构造函数
func NewContactHandler(svc service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// GetContacts 获取联系人列表（显式+私聊推导，去重合并）
// GET /api/contacts/:userId
func (h *ContactHandler) GetContacts(c *gin.Context) {
	rsp, err := h.svc.GetContacts(c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// AddContact 添加联系人
// POST /api/contacts/add
func (h *ContactHandler) AddContact(c *gin.Context) {
	var req request.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.AddContact(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// DeleteContact 删除联系人
// DELETE /api/contacts/:userId/:contactUserId
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	if err := h.svc.DeleteContact(c.Param("userId"), c.Param("contactUserId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Search 搜索用户
// GET /api/contacts/search?query=&userId=
func (h *ContactHandler) Search(c *gin.Context) {
	rsp, err := h.svc.Search(c.Query("query"), c.Query("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
