package request

// SendMessageRequest 发送消息请求
// Type 为带标签的消息类型，见 model.MessageType* 常量
// 使用位置:
//   - handler/message_handler.go: SendMessage
type SendMessageRequest struct {
	// ChatId 目标会话 uuid
	ChatId string `json:"chatId" binding:"required"`
	// SenderId 发送者 uuid
	SenderId string `json:"senderId" binding:"required"`
	// Type 消息类型，0.文本，1.图片，2.语音，3.视频，4.文件
	Type int8 `json:"type" binding:"gte=0,lte=4"`
	// Content 文本内容
	Content string `json:"content"`
	// FileUrl 媒体 URL
	FileUrl string `json:"fileUrl"`
	// FileName 文件名
	FileName string `json:"fileName"`
	// FileSize 文件大小（字节）
	FileSize int64 `json:"fileSize"`
}
