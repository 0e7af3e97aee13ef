package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// ChatFolder 聊天文件夹模型
// ChatIds 以 JSON 数组形式存储会话 uuid 的有序列表
type ChatFolder struct {
	gorm.Model

	// Uuid 文件夹唯一标识，格式：F + 时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:文件夹uuid"`

	// UserId 所属用户 uuid
	UserId string `gorm:"column:user_id;index;type:char(20);not null;comment:用户uuid"`

	// Name 文件夹名称
	Name string `gorm:"column:name;type:varchar(50);not null;comment:文件夹名称"`

	// ChatIds JSON 编码的会话 uuid 有序列表
	ChatIds string `gorm:"column:chat_ids;type:TEXT;comment:会话uuid列表"`
}

func (ChatFolder) TableName() string {
	return "chat_folder"
}

// GetChatIds 解析 ChatIds 列
func (f *ChatFolder) GetChatIds() []string {
	if f.ChatIds == "" {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(f.ChatIds), &ids); err != nil {
		return []string{}
	}
	return ids
}

// SetChatIds 序列化并写入 ChatIds 列
func (f *ChatFolder) SetChatIds(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return
	}
	f.ChatIds = string(b)
}
