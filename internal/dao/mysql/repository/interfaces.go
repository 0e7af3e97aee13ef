// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"time"

	"stogram_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByLogin 根据登录名查找用户
	FindByLogin(login string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	// Search 按登录名或昵称模糊搜索用户（排除自己）
	Search(term string, excludeUuid string) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// Update 更新用户信息
	Update(user *model.UserInfo) error
	// UpdateOnlineStatus 更新用户在线状态和最后在线时间
	UpdateOnlineStatus(uuid string, isOnline int8, lastSeenAt time.Time) error
}

// ContactRepository 联系人数据访问接口
// 管理用户显式添加的联系人关系（单向）
type ContactRepository interface {
	// FindByUserIdAndContactId 查找一条联系人关系
	FindByUserIdAndContactId(userId, contactUserId string) (*model.Contact, error)
	// FindByUserId 查找用户的所有显式联系人
	FindByUserId(userId string) ([]model.Contact, error)
	// Create 创建联系人关系，重复添加返回唯一键冲突
	Create(contact *model.Contact) error
	// Delete 删除联系人关系
	Delete(userId, contactUserId string) error
}

// ChatRepository 会话数据访问接口
// 私聊会话通过 pair_key 唯一索引保证同一对用户只有一个会话
type ChatRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.Chat, error)
	// FindByPairKey 根据私聊对键查找会话
	FindByPairKey(pairKey string) (*model.Chat, error)
	// FindByGroupId 根据群组 UUID 查找会话
	FindByGroupId(groupId string) (*model.Chat, error)
	// FindByUserId 查找用户参与的所有会话
	FindByUserId(userId string) ([]model.Chat, error)
	// Create 创建会话
	Create(chat *model.Chat) error
	// AddParticipant 添加会话成员
	AddParticipant(chatId, userId string) error
	// RemoveParticipant 移除会话成员
	RemoveParticipant(chatId, userId string) error
	// FindParticipantIds 查找会话所有成员 UUID
	FindParticipantIds(chatId string) ([]string, error)
	// IsParticipant 判断用户是否为会话成员
	IsParticipant(chatId, userId string) (bool, error)
	// Delete 删除会话及其成员关系
	Delete(chatId string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 落库一条消息
	Create(message *model.Message) error
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindByChatId 按时间升序查找会话消息，最多 limit 条
	FindByChatId(chatId string, limit int) ([]model.Message, error)
	// FindLastByChatId 查找会话最后一条消息
	FindLastByChatId(chatId string) (*model.Message, error)
	// DeleteByChatId 删除会话全部消息
	DeleteByChatId(chatId string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组
	FindByUuid(uuid string) (*model.GroupInfo, error)
	// FindByUuids 批量根据 UUID 查找群组
	FindByUuids(uuids []string) ([]model.GroupInfo, error)
	// Create 创建新群组
	Create(group *model.GroupInfo) error
	// Update 更新群组信息
	Update(group *model.GroupInfo) error
	// IncrementMemberCount 成员数量 +1
	IncrementMemberCount(uuid string) error
	// DecrementMemberCount 成员数量 -1
	DecrementMemberCount(uuid string) error
	// Delete 软删除群组
	Delete(uuid string) error
}

// GroupMemberWithUserInfo 群成员详细信息（含用户资料）
type GroupMemberWithUserInfo struct {
	UserId   string `json:"userId"`   // 用户 UUID
	Nickname string `json:"nickname"` // 用户昵称
	Avatar   string `json:"avatar"`   // 用户头像
	Role     int8   `json:"role"`     // 角色
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// FindMembersWithUserInfo 查找群成员（含用户详细信息）
	FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error)
	// FindGroupIdsByUserId 查找用户加入的所有群组 UUID
	FindGroupIdsByUserId(userId string) ([]string, error)
	// Exists 判断用户是否在群内
	Exists(groupUuid, userId string) (bool, error)
	// Create 添加群成员
	Create(member *model.GroupMember) error
	// Delete 移除群成员
	Delete(groupUuid, userId string) error
	// DeleteByGroupUuid 删除群组所有成员
	DeleteByGroupUuid(groupUuid string) error
}

// CallRepository 通话记录数据访问接口
type CallRepository interface {
	// Create 创建通话记录
	Create(call *model.Call) error
	// FindByUuid 根据 UUID 查找通话记录
	FindByUuid(uuid string) (*model.Call, error)
	// FindActiveByUserId 查找用户未结束的通话（呼叫中或通话中）
	FindActiveByUserId(userId string) (*model.Call, error)
	// UpdateStatus 更新通话状态
	UpdateStatus(uuid string, status int8, endedAt *time.Time) error
}

// FolderRepository 聊天文件夹数据访问接口
type FolderRepository interface {
	// FindByUuid 根据 UUID 查找文件夹
	FindByUuid(uuid string) (*model.ChatFolder, error)
	// FindByUserId 查找用户的所有文件夹
	FindByUserId(userId string) ([]model.ChatFolder, error)
	// Create 创建文件夹
	Create(folder *model.ChatFolder) error
	// Update 更新文件夹
	Update(folder *model.ChatFolder) error
	// Delete 删除文件夹
	Delete(uuid string) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db          *gorm.DB
	User        UserRepository
	Contact     ContactRepository
	Chat        ChatRepository
	Message     MessageRepository
	Group       GroupRepository
	GroupMember GroupMemberRepository
	Call        CallRepository
	Folder      FolderRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Contact:     NewContactRepository(db),
		Chat:        NewChatRepository(db),
		Message:     NewMessageRepository(db),
		Group:       NewGroupRepository(db),
		GroupMember: NewGroupMemberRepository(db),
		Call:        NewCallRepository(db),
		Folder:      NewFolderRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
