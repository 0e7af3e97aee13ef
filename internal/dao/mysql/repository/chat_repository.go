package repository

import (
	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建会话 Repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindByUuid 按 UUID 查找会话
func (r *chatRepository) FindByUuid(uuid string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &chat, nil
}

// FindByPairKey 按私聊对键查找会话
func (r *chatRepository) FindByPairKey(pairKey string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, "pair_key = ?", pairKey).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询私聊会话 pair_key=%s", pairKey)
	}
	return &chat, nil
}

// FindByGroupId 按群组 UUID 查找会话
func (r *chatRepository) FindByGroupId(groupId string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, "group_id = ?", groupId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群会话 group_id=%s", groupId)
	}
	return &chat, nil
}

// FindByUserId 查找用户参与的所有会话
func (r *chatRepository) FindByUserId(userId string) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.Joins("JOIN chat_participant ON chat_participant.chat_id = chat.uuid").
		Where("chat_participant.user_id = ? AND chat_participant.deleted_at IS NULL", userId).
		Find(&chats).Error
	if err != nil {
		return nil, wrapDBError(err, "查询用户会话列表")
	}
	return chats, nil
}

// Create 创建会话
// 私聊会话并发创建时 pair_key 唯一索引冲突，调用方按 FindByPairKey 复用
func (r *chatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		if isDuplicateKey(err) {
			return err
		}
		return wrapDBError(err, "创建会话")
	}
	return nil
}

// AddParticipant 添加会话成员，重复添加静默成功
func (r *chatRepository) AddParticipant(chatId, userId string) error {
	member := model.ChatParticipant{ChatId: chatId, UserId: userId}
	if err := r.db.Create(&member).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return wrapDBError(err, "添加会话成员")
	}
	return nil
}

// RemoveParticipant 移除会话成员
func (r *chatRepository) RemoveParticipant(chatId, userId string) error {
	err := r.db.Where("chat_id = ? AND user_id = ?", chatId, userId).
		Delete(&model.ChatParticipant{}).Error
	if err != nil {
		return wrapDBError(err, "移除会话成员")
	}
	return nil
}

// FindParticipantIds 查找会话所有成员 UUID
func (r *chatRepository) FindParticipantIds(chatId string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.ChatParticipant{}).
		Where("chat_id = ?", chatId).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapDBError(err, "查询会话成员")
	}
	return ids, nil
}

// IsParticipant 判断用户是否为会话成员
func (r *chatRepository) IsParticipant(chatId, userId string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatId, userId).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "查询会话成员关系")
	}
	return count > 0, nil
}

// Delete 删除会话及其成员关系
func (r *chatRepository) Delete(chatId string) error {
	if err := r.db.Where("uuid = ?", chatId).Delete(&model.Chat{}).Error; err != nil {
		return wrapDBError(err, "删除会话")
	}
	if err := r.db.Where("chat_id = ?", chatId).Delete(&model.ChatParticipant{}).Error; err != nil {
		return wrapDBError(err, "删除会话成员")
	}
	return nil
}
