package respond

// UploadRespond 文件上传响应
// 存储失败时 Url 回退为原始 data URL，Fallback 置真
type UploadRespond struct {
	Url      string `json:"url"`
	FileName string `json:"fileName"`
	Fallback bool   `json:"fallback"`
}
