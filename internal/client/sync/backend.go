package sync

import (
	"context"

	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
)

// Backend 同步引擎依赖的服务端操作集合
// 生产实现为 client/api 的 HTTP 客户端，测试中用桩实现替代
type Backend interface {
	// Register 注册并登录
	Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error)
	// Login 密码登录
	Login(ctx context.Context, login, password string) (*respond.LoginRespond, error)
	// Logout 登出并标记离线
	Logout(ctx context.Context, userId string) error
	// GetUser 拉取单个用户信息，会话恢复时使用
	GetUser(ctx context.Context, userId string) (*respond.UserInfoRespond, error)

	// GetContacts 拉取联系人（显式联系人与私聊会话推导的并集）
	GetContacts(ctx context.Context, userId string) ([]respond.ContactRespond, error)
	// AddContact 添加联系人并懒创建私聊会话
	AddContact(ctx context.Context, userId, contactUserId string) (*respond.ContactRespond, error)

	// SendMessage 发送消息
	SendMessage(ctx context.Context, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessages 拉取会话历史（升序，至多一页）
	GetMessages(ctx context.Context, chatId, userId string) ([]respond.MessageRespond, error)
	// GetPrivateChatId 解析两用户的私聊会话 uuid，不存在时返回空串
	GetPrivateChatId(ctx context.Context, user1, user2 string) (string, error)
	// GetLastMessage 拉取会话最后一条消息摘要，无消息时返回 nil
	GetLastMessage(ctx context.Context, chatId string) (*respond.LastMessageRespond, error)

	// GetGroups 拉取用户所在群组
	GetGroups(ctx context.Context, userId string) ([]respond.GroupInfoRespond, error)
	// GetFolders 拉取用户的聊天文件夹
	GetFolders(ctx context.Context, userId string) ([]respond.FolderRespond, error)

	// UploadFile 上传 base64 文件，失败时由调用方回退为直接内嵌 data URL
	UploadFile(ctx context.Context, req request.UploadFileRequest) (*respond.UploadRespond, error)
}
