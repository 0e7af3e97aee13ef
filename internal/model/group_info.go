package model

import (
	"gorm.io/gorm"
)

// GroupInfo 群组信息模型
// 对应数据库 group_info 表
type GroupInfo struct {
	gorm.Model

	// Uuid 群组唯一标识，格式：G + 时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:群组uuid"`

	// Name 群名称
	Name string `gorm:"column:name;type:varchar(50);not null;comment:群名称"`

	// Notice 群描述/公告
	Notice string `gorm:"column:notice;type:varchar(500);comment:群公告"`

	// Avatar 群头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:群头像"`

	// OwnerId 群主用户 uuid
	OwnerId string `gorm:"column:owner_id;index;type:char(20);not null;comment:群主uuid"`

	// MemberCnt 成员数量，冗余存储避免每次 count
	MemberCnt int `gorm:"column:member_cnt;not null;comment:成员数量"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}
