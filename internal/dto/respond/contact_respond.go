package respond

// ContactRespond 联系人响应
// 显式联系人和从私聊会话推导出的联系人统一返回该结构
type ContactRespond struct {
	UserInfoRespond
	// ChatId 与该联系人的私聊会话 uuid，尚未建立会话时为空
	ChatId string `json:"chatId,omitempty"`
}
