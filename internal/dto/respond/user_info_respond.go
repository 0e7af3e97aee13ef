package respond

// UserInfoRespond 用户信息响应（不含密码散列）
type UserInfoRespond struct {
	Uuid       string `json:"id"`
	Login      string `json:"login"`
	Nickname   string `json:"name"`
	Avatar     string `json:"avatar"`
	Signature  string `json:"bio"`
	IsOnline   bool   `json:"isOnline"`
	LastSeenAt string `json:"lastSeenAt,omitempty"`
}
