package request

// UploadFileRequest 文件上传请求
// File 为 base64 编码的 data URL 或原始 base64 内容
// 使用位置:
//   - handler/file_handler.go: Upload
type UploadFileRequest struct {
	UserId   string `json:"userId" binding:"required"`
	FileName string `json:"fileName" binding:"required,max=100"`
	File     string `json:"file" binding:"required"`
}
