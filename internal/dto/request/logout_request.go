package request

// LogoutRequest 登出请求
// 使用位置:
//   - handler/auth_handler.go: Logout
type LogoutRequest struct {
	UserId string `json:"userId" binding:"required"`
}
