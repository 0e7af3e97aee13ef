package request

// UpdateGroupRequest 更新群组信息请求
// 使用位置:
//   - handler/group_handler.go: UpdateGroup
type UpdateGroupRequest struct {
	Name   string `json:"name" binding:"omitempty,max=50"`
	Notice string `json:"notice" binding:"omitempty,max=500"`
	Avatar string `json:"avatar"`
}
