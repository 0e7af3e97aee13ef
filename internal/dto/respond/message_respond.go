package respond

// MessageRespond 消息响应
type MessageRespond struct {
	Uuid      int64  `json:"id,string"` // 雪花 ID 以字符串下发，避免 JS 精度丢失
	ChatId    string `json:"chatId"`
	SenderId  string `json:"senderId"`
	Type      int8   `json:"type"`
	Content   string `json:"content"`
	FileUrl   string `json:"fileUrl,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	CreatedAt string `json:"createdAt"`
	// IsOwn 列表查询时按请求方标注
	IsOwn bool `json:"isOwn"`
}

// LastMessageRespond 会话最后一条消息摘要
type LastMessageRespond struct {
	Type      int8   `json:"type"`
	Content   string `json:"content"`
	SenderId  string `json:"senderId"`
	CreatedAt string `json:"createdAt"`
}
