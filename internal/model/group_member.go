package model

import (
	"gorm.io/gorm"
)

// 群成员角色
const (
	GroupRoleMember int8 = 0 // 普通成员
	GroupRoleAdmin  int8 = 1 // 群主/管理员
)

// GroupMember 群成员模型
type GroupMember struct {
	gorm.Model
	GroupId string `gorm:"column:group_id;index:idx_group_user,unique;type:char(20);not null;comment:群组uuid"`
	UserId  string `gorm:"column:user_id;index:idx_group_user,unique;index;type:char(20);not null;comment:用户uuid"`
	Role    int8   `gorm:"column:role;not null;comment:角色，0.成员，1.管理员"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
