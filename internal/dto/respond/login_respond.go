package respond

// LoginRespond 登录/注册响应
// 同时下发访问令牌和刷新令牌
type LoginRespond struct {
	User         UserInfoRespond `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}
