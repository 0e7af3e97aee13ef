package respond

// ChatIdRespond 会话解析响应
// 私聊会话不存在时 ChatId 为空
type ChatIdRespond struct {
	ChatId string `json:"chatId"`
}
