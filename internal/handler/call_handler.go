// Package handler 提供 HTTP 请求处理器
// 本文件处理通话记录相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// CallHandler 通话记录请求处理器
type CallHandler struct {
	svc service.CallService
}

// NewCallHandler 构造函数
func NewCallHandler(svc service.CallService) *CallHandler {
	return &CallHandler{svc: svc}
}

// Initiate 发起通话
// POST /api/calls/initiate
func (h *CallHandler) Initiate(c *gin.Context) {
	var req request.InitiateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.Initiate(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Accept 接听
// PUT /api/calls/accept/:callId
func (h *CallHandler) Accept(c *gin.Context) {
	rsp, err := h.svc.Accept(c.Param("callId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Decline 拒接
// PUT /api/calls/decline/:callId
func (h *CallHandler) Decline(c *gin.Context) {
	rsp, err := h.svc.Decline(c.Param("callId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// End 挂断
// PUT /api/calls/end/:callId
func (h *CallHandler) End(c *gin.Context) {
	rsp, err := h.svc.End(c.Param("callId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetActive 查询用户进行中的通话
// GET /api/calls/active/:userId
// 没有进行中的通话时 data 为 null
func (h *CallHandler) GetActive(c *gin.Context) {
	rsp, err := h.svc.GetActive(c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
