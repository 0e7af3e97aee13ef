package respond

// GroupInfoRespond 群组信息响应
type GroupInfoRespond struct {
	Uuid      string `json:"id"`
	Name      string `json:"name"`
	Notice    string `json:"notice"`
	Avatar    string `json:"avatar"`
	OwnerId   string `json:"ownerId"`
	MemberCnt int    `json:"memberCount"`
	ChatId    string `json:"chatId"`
	CreatedAt string `json:"createdAt"`
}

// GroupMemberRespond 群成员响应
type GroupMemberRespond struct {
	UserId   string `json:"userId"`
	Nickname string `json:"name"`
	Avatar   string `json:"avatar"`
	Role     int8   `json:"role"`
}
