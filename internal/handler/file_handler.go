// Package handler 提供 HTTP 请求处理器
// 本文件处理文件上传相关的 API 请求
package handler

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/service"

	"github.com/gin-gonic/gin"
)

// FileHandler 文件上传请求处理器
type FileHandler struct {
	svc service.FileService
}

// NewFileHandler 构造函数
func NewFileHandler(svc service.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload 上传 base64 文件
// POST /api/files/upload
func (h *FileHandler) Upload(c *gin.Context) {
	var req request.UploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.Upload(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
