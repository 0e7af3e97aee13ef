// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
)

// AuthService 认证与用户资料业务接口
type AuthService interface {
	// Register 用户注册，登录名唯一
	Register(req request.RegisterRequest) (*respond.LoginRespond, error)
	// Login 密码登录，成功后标记在线
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// Logout 登出，标记离线
	Logout(userId string) error
	// UpdateUser 更新用户资料
	UpdateUser(userId string, req request.UpdateUserRequest) (*respond.UserInfoRespond, error)
	// GetUser 获取单个用户信息
	GetUser(userId string) (*respond.UserInfoRespond, error)
}

// ContactService 联系人业务接口
// 联系人 = 显式添加的联系人 ∪ 从私聊会话推导出的对端
type ContactService interface {
	// GetContacts 获取合并去重后的联系人列表
	GetContacts(userId string) ([]respond.ContactRespond, error)
	// AddContact 添加联系人并懒创建私聊会话
	AddContact(req request.AddContactRequest) (*respond.ContactRespond, error)
	// DeleteContact 删除显式联系人关系
	DeleteContact(userId, contactUserId string) error
	// Search 按登录名或昵称搜索用户
	Search(query, userId string) ([]respond.UserInfoRespond, error)
}

// ChatService 会话解析业务接口
type ChatService interface {
	// ResolvePrivateChatId 查找两用户的私聊会话，不存在返回空串
	ResolvePrivateChatId(user1, user2 string) (string, error)
	// GetOrCreatePrivateChat 获取或创建私聊会话（并发安全，幂等）
	GetOrCreatePrivateChat(user1, user2 string) (string, error)
	// ResolveGroupChatId 查找群组对应的会话
	ResolveGroupChatId(groupId string) (string, error)
}

// MessageService 消息业务接口
type MessageService interface {
	// SendMessage 落库并经中继广播一条消息
	SendMessage(req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessages 按时间升序获取会话消息，按请求方标注 isOwn
	GetMessages(chatId, userId string) ([]respond.MessageRespond, error)
	// GetLastMessage 获取会话最后一条消息摘要，无消息返回 nil
	GetLastMessage(chatId string) (*respond.LastMessageRespond, error)
}

// GroupService 群组业务接口
type GroupService interface {
	// CreateGroup 创建群组及其会话，群主自动入群
	CreateGroup(req request.CreateGroupRequest) (*respond.GroupInfoRespond, error)
	// GetGroups 获取用户加入的所有群组
	GetGroups(userId string) ([]respond.GroupInfoRespond, error)
	// UpdateGroup 更新群组信息
	UpdateGroup(groupId string, req request.UpdateGroupRequest) (*respond.GroupInfoRespond, error)
	// LeaveGroup 退出群组，群主退出即解散
	LeaveGroup(groupId, userId string) error
	// GetMembers 获取群成员列表
	GetMembers(groupId string) ([]respond.GroupMemberRespond, error)
}

// CallService 通话记录业务接口
// 信令由客户端本地模拟，服务端只做尽力而为的状态记录
type CallService interface {
	// Initiate 创建通话记录（呼叫中）
	Initiate(req request.InitiateCallRequest) (*respond.CallRespond, error)
	// Accept 接听，呼叫中 -> 通话中
	Accept(callId string) (*respond.CallRespond, error)
	// Decline 拒接，呼叫中 -> 已拒绝
	Decline(callId string) (*respond.CallRespond, error)
	// End 挂断，任意状态 -> 已结束
	End(callId string) (*respond.CallRespond, error)
	// GetActive 获取用户当前未结束的通话，没有返回 nil
	GetActive(userId string) (*respond.CallRespond, error)
}

// FolderService 聊天文件夹业务接口
type FolderService interface {
	// GetFolders 获取用户所有文件夹
	GetFolders(userId string) ([]respond.FolderRespond, error)
	// CreateFolder 创建文件夹
	CreateFolder(req request.CreateFolderRequest) (*respond.FolderRespond, error)
	// UpdateFolder 更新文件夹
	UpdateFolder(folderId string, req request.UpdateFolderRequest) (*respond.FolderRespond, error)
	// DeleteFolder 删除文件夹
	DeleteFolder(folderId string) error
	// AddChat 向文件夹追加会话（幂等）
	AddChat(folderId, chatId string) (*respond.FolderRespond, error)
	// RemoveChat 从文件夹移除会话
	RemoveChat(folderId, chatId string) (*respond.FolderRespond, error)
}

// FileService 文件存储业务接口
type FileService interface {
	// Upload 保存 base64 内容为静态文件并返回公网 URL
	// 存储失败时回退为原样返回 data URL
	Upload(req request.UploadFileRequest) (*respond.UploadRespond, error)
}
