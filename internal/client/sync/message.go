package sync

import (
	"fmt"

	"stogram_server/internal/dto/respond"
	"stogram_server/internal/model"
)

// Kind 消息变体标签
// 接收侧按标签穷举处理，不做字段存在性探测
type Kind int8

const (
	KindText  Kind = Kind(model.MessageTypeText)
	KindImage Kind = Kind(model.MessageTypeImage)
	KindAudio Kind = Kind(model.MessageTypeAudio)
	KindVideo Kind = Kind(model.MessageTypeVideo)
	KindFile  Kind = Kind(model.MessageTypeFile)
)

// TempIdPrefix 乐观消息的临时 id 前缀
// 服务端确认事件到达时按该前缀清理乐观条目
const TempIdPrefix = "temp_"

// Message 客户端侧消息
// Id 在发送确认前为 temp_ 前缀的临时值，确认后替换为服务端雪花 id
type Message struct {
	Id        string
	ChatId    string
	SenderId  string
	Kind      Kind
	Text      string // 仅 KindText
	FileUrl   string // 媒体类变体的资源地址
	FileName  string
	FileSize  int64
	CreatedAt string
	IsOwn     bool
}

// NewTextMessage 构造文本消息
func NewTextMessage(id, chatId, senderId, text string) Message {
	return Message{Id: id, ChatId: chatId, SenderId: senderId, Kind: KindText, Text: text}
}

// NewMediaMessage 构造媒体类消息（图片/语音/视频/文件）
func NewMediaMessage(id, chatId, senderId string, kind Kind, fileUrl, fileName string, fileSize int64) Message {
	return Message{
		Id: id, ChatId: chatId, SenderId: senderId, Kind: kind,
		FileUrl: fileUrl, FileName: fileName, FileSize: fileSize,
	}
}

// IsTemp 是否为尚未确认的乐观条目
func (m Message) IsTemp() bool {
	return len(m.Id) > len(TempIdPrefix) && m.Id[:len(TempIdPrefix)] == TempIdPrefix
}

// Preview 会话列表摘要文本
// 非文本变体返回类型占位符
func (m Message) Preview() string {
	switch m.Kind {
	case KindText:
		return m.Text
	case KindImage:
		return "[图片]"
	case KindAudio:
		return "[语音]"
	case KindVideo:
		return "[视频]"
	case KindFile:
		if m.FileName != "" {
			return "[文件] " + m.FileName
		}
		return "[文件]"
	default:
		return fmt.Sprintf("[未知类型 %d]", m.Kind)
	}
}

// fromRespond 把服务端响应转换为客户端消息
func fromRespond(rsp respond.MessageRespond, currentUserId string) Message {
	return Message{
		Id:        fmt.Sprintf("%d", rsp.Uuid),
		ChatId:    rsp.ChatId,
		SenderId:  rsp.SenderId,
		Kind:      Kind(rsp.Type),
		Text:      rsp.Content,
		FileUrl:   rsp.FileUrl,
		FileName:  rsp.FileName,
		FileSize:  rsp.FileSize,
		CreatedAt: rsp.CreatedAt,
		IsOwn:     rsp.SenderId == currentUserId,
	}
}

// previewOf 与 Preview 一致的摘要逻辑，直接作用于服务端摘要响应
func previewOf(kind int8, content string) string {
	if Kind(kind) == KindText {
		return content
	}
	return Message{Kind: Kind(kind)}.Preview()
}
