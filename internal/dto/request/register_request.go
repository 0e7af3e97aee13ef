package request

// RegisterRequest 注册请求
// 使用位置:
//   - handler/auth_handler.go: Register
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Name     string `json:"name" binding:"required,max=50"`
}
