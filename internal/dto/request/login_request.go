package request

// LoginRequest 登录请求
// 使用位置:
//   - handler/auth_handler.go: Login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}
