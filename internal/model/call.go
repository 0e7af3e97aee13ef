// Package model 定义数据库实体模型
// 本文件定义通话记录模型
// 注意：通话信令是客户端本地模拟的（见 internal/client/sync），
// 这里只以尽力而为的方式记录状态流转
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 通话类型
const (
	CallTypeVoice int8 = 0 // 语音通话
	CallTypeVideo int8 = 1 // 视频通话
)

// 通话状态
const (
	CallStatusRinging  int8 = 0 // 呼叫中
	CallStatusActive   int8 = 1 // 通话中
	CallStatusDeclined int8 = 2 // 已拒绝
	CallStatusEnded    int8 = 3 // 已结束
)

// Call 通话记录模型
type Call struct {
	gorm.Model

	// Uuid 通话唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(40);comment:通话uuid"`

	// CallerId 主叫用户 uuid
	CallerId string `gorm:"column:caller_id;index;type:char(20);not null;comment:主叫uuid"`

	// ReceiverId 被叫用户 uuid
	ReceiverId string `gorm:"column:receiver_id;index;type:char(20);not null;comment:被叫uuid"`

	// Type 通话类型，0.语音 1.视频
	Type int8 `gorm:"column:type;not null;comment:通话类型，0.语音，1.视频"`

	// Status 通话状态，见 CallStatus* 常量
	Status int8 `gorm:"column:status;not null;comment:状态，0.呼叫中，1.通话中，2.已拒绝，3.已结束"`

	// EndedAt 通话结束时间
	EndedAt sql.NullTime `gorm:"column:ended_at;type:datetime;comment:结束时间"`
}

func (Call) TableName() string {
	return "call"
}
