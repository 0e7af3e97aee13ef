package request

// UpdateUserRequest 更新用户资料请求
// 使用位置:
//   - handler/auth_handler.go: UpdateUser
type UpdateUserRequest struct {
	// Nickname 显示昵称
	Nickname string `json:"name" binding:"omitempty,max=50"`
	// Avatar 头像 URL
	Avatar string `json:"avatar"`
	// Signature 个性签名
	Signature string `json:"bio" binding:"omitempty,max=200"`
}
