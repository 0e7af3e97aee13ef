package model

import (
	"gorm.io/gorm"
)

// Contact 联系人关系模型，单向关系
// 一个用户的联系人列表 = 显式添加的联系人 + 由私聊会话派生的联系人
type Contact struct {
	gorm.Model
	UserId        string `gorm:"column:user_id;index:idx_contact_pair,unique;type:char(20);not null;comment:用户uuid"`
	ContactUserId string `gorm:"column:contact_user_id;index:idx_contact_pair,unique;type:char(20);not null;comment:联系人uuid"`
}

func (Contact) TableName() string {
	return "contact"
}
