// Package model 定义数据库实体模型
// 本文件定义消息模型，消息一经落库不再修改
package model

import (
	"gorm.io/gorm"
)

// 消息类型，带标签的变体而非动态字段探测
// 客户端按类型做穷举处理，见 internal/client/sync
const (
	MessageTypeText  int8 = 0 // 文本
	MessageTypeImage int8 = 1 // 图片
	MessageTypeAudio int8 = 2 // 语音
	MessageTypeVideo int8 = 3 // 视频
	MessageTypeFile  int8 = 4 // 文件
)

// Message 消息模型
// 对应数据库 message 表
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64，bigint 类型避免 ID 溢出
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatId 消息所属会话 uuid
	ChatId string `gorm:"column:chat_id;index;type:char(20);not null;comment:会话uuid"`

	// SendId 发送者 uuid
	SendId string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`

	// Type 消息类型，见 MessageType* 常量
	Type int8 `gorm:"column:type;not null;comment:消息类型，0.文本，1.图片，2.语音，3.视频，4.文件"`

	// Content 消息文本内容，非文本类型可能为空
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// FileUrl 媒体资源 URL
	// 多媒体文件先上传到静态存储，这里只保存访问链接
	FileUrl string `gorm:"column:file_url;type:varchar(500);comment:媒体url"`

	// FileName 文件名，仅文件消息使用
	FileName string `gorm:"column:file_name;type:varchar(100);comment:文件名"`

	// FileSize 文件大小（字节）
	FileSize int64 `gorm:"column:file_size;comment:文件大小"`
}

func (Message) TableName() string {
	return "message"
}
