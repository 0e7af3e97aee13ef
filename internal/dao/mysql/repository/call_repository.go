package repository

import (
	"time"

	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type callRepository struct {
	db *gorm.DB
}

// NewCallRepository 创建通话记录 Repository
func NewCallRepository(db *gorm.DB) CallRepository {
	return &callRepository{db: db}
}

// Create 创建通话记录
func (r *callRepository) Create(call *model.Call) error {
	if err := r.db.Create(call).Error; err != nil {
		return wrapDBError(err, "创建通话记录")
	}
	return nil
}

// FindByUuid 按 UUID 查找通话记录
func (r *callRepository) FindByUuid(uuid string) (*model.Call, error) {
	var call model.Call
	if err := r.db.First(&call, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询通话记录 uuid=%s", uuid)
	}
	return &call, nil
}

// FindActiveByUserId 查找用户未结束的通话
func (r *callRepository) FindActiveByUserId(userId string) (*model.Call, error) {
	var call model.Call
	err := r.db.Where("(caller_id = ? OR receiver_id = ?) AND status IN ?",
		userId, userId, []int8{model.CallStatusRinging, model.CallStatusActive}).
		Order("created_at DESC").
		First(&call).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询进行中通话 user=%s", userId)
	}
	return &call, nil
}

// UpdateStatus 更新通话状态
func (r *callRepository) UpdateStatus(uuid string, status int8, endedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if endedAt != nil {
		updates["ended_at"] = *endedAt
	}
	err := r.db.Model(&model.Call{}).Where("uuid = ?", uuid).Updates(updates).Error
	if err != nil {
		return wrapDBError(err, "更新通话状态")
	}
	return nil
}
