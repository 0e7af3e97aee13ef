package repository

import (
	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组 Repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 按 UUID 查找群组
func (r *groupRepository) FindByUuid(uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByUuids 按 UUID 列表批量查找群组
func (r *groupRepository) FindByUuids(uuids []string) ([]model.GroupInfo, error) {
	if len(uuids) == 0 {
		return []model.GroupInfo{}, nil
	}
	var groups []model.GroupInfo
	if err := r.db.Where("uuid IN ?", uuids).Find(&groups).Error; err != nil {
		return nil, wrapDBError(err, "批量查询群组")
	}
	return groups, nil
}

// Create 创建群组
func (r *groupRepository) Create(group *model.GroupInfo) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// Update 更新群组信息
func (r *groupRepository) Update(group *model.GroupInfo) error {
	if err := r.db.Save(group).Error; err != nil {
		return wrapDBError(err, "更新群组")
	}
	return nil
}

// IncrementMemberCount 成员数量 +1
func (r *groupRepository) IncrementMemberCount(uuid string) error {
	err := r.db.Model(&model.GroupInfo{}).Where("uuid = ?", uuid).
		Update("member_cnt", gorm.Expr("member_cnt + 1")).Error
	if err != nil {
		return wrapDBError(err, "更新群成员数量")
	}
	return nil
}

// DecrementMemberCount 成员数量 -1
func (r *groupRepository) DecrementMemberCount(uuid string) error {
	err := r.db.Model(&model.GroupInfo{}).Where("uuid = ? AND member_cnt > 0", uuid).
		Update("member_cnt", gorm.Expr("member_cnt - 1")).Error
	if err != nil {
		return wrapDBError(err, "更新群成员数量")
	}
	return nil
}

// Delete 软删除群组
func (r *groupRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.GroupInfo{}).Error; err != nil {
		return wrapDBError(err, "删除群组")
	}
	return nil
}
