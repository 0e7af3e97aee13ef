// Package model 定义数据库实体模型
// 本文件定义聊天会话及其参与者模型
package model

import (
	"gorm.io/gorm"
)

// 聊天类型
const (
	ChatTypePrivate int8 = 0 // 私聊，恰好两个参与者
	ChatTypeGroup   int8 = 1 // 群聊，关联一个群组
)

// Chat 聊天会话模型
// 对应数据库 chat 表
type Chat struct {
	gorm.Model

	// Uuid 会话唯一标识，格式：C + 时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:会话uuid"`

	// Type 会话类型，0.私聊 1.群聊
	Type int8 `gorm:"column:type;not null;comment:会话类型，0.私聊，1.群聊"`

	// GroupId 群聊会话关联的群组 uuid，私聊为空
	GroupId string `gorm:"column:group_id;index;type:char(20);comment:群组uuid"`

	// PairKey 私聊参与者对的规范化键，min(u1) + ":" + max(u2)
	// 唯一索引保证同一对用户并发创建私聊时只会有一条记录落库，
	// 竞争失败的一方按唯一键冲突重新查询已有会话。
	// 群聊会话不参与该约束，留 NULL（唯一索引允许多个 NULL）
	PairKey *string `gorm:"column:pair_key;uniqueIndex;type:varchar(45);comment:私聊参与者对键"`
}

func (Chat) TableName() string {
	return "chat"
}

// PrivatePairKey 计算私聊参与者对的规范化键
func PrivatePairKey(user1, user2 string) string {
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	return user1 + ":" + user2
}

// ChatParticipant 会话参与者模型
// 私聊恰好两行，群聊每个成员一行
type ChatParticipant struct {
	gorm.Model
	ChatId string `gorm:"column:chat_id;index:idx_chat_user,unique;type:char(20);not null;comment:会话uuid"`
	UserId string `gorm:"column:user_id;index:idx_chat_user,unique;index;type:char(20);not null;comment:用户uuid"`
}

func (ChatParticipant) TableName() string {
	return "chat_participant"
}
