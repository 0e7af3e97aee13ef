package repository

import (
	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 落库一条消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindByUuid 按雪花 ID 查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var msg model.Message
	if err := r.db.First(&msg, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &msg, nil
}

// FindByChatId 按时间升序查找会话消息
// 超过 limit 时取最新 limit 条后反转为升序
func (r *messageRepository) FindByChatId(chatId string, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("chat_id = ?", chatId).
		Order("created_at DESC, uuid DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBError(err, "查询会话消息")
	}
	// 反转为时间升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// FindLastByChatId 查找会话最后一条消息
func (r *messageRepository) FindLastByChatId(chatId string) (*model.Message, error) {
	var msg model.Message
	err := r.db.Where("chat_id = ?", chatId).
		Order("created_at DESC, uuid DESC").
		First(&msg).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话最后消息 chat=%s", chatId)
	}
	return &msg, nil
}

// DeleteByChatId 删除会话全部消息
func (r *messageRepository) DeleteByChatId(chatId string) error {
	if err := r.db.Where("chat_id = ?", chatId).Delete(&model.Message{}).Error; err != nil {
		return wrapDBError(err, "删除会话消息")
	}
	return nil
}
