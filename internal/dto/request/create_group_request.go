package request

// CreateGroupRequest 创建群组请求
// 使用位置:
//   - handler/group_handler.go: CreateGroup
type CreateGroupRequest struct {
	// OwnerId 群主用户 uuid
	OwnerId string `json:"ownerId" binding:"required"`
	// Name 群名称
	Name string `json:"name" binding:"required,max=50"`
	// Notice 群公告
	Notice string `json:"notice" binding:"omitempty,max=500"`
	// Avatar 群头像 URL
	Avatar string `json:"avatar"`
	// MemberIds 初始成员 uuid 列表（不含群主）
	MemberIds []string `json:"memberIds"`
}
