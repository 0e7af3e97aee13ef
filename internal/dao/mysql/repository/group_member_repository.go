package repository

import (
	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type groupMemberRepository struct {
	db *gorm.DB
}

// NewGroupMemberRepository 创建群成员 Repository
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindMembersWithUserInfo 查找群成员及其用户资料
func (r *groupMemberRepository) FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error) {
	var members []GroupMemberWithUserInfo
	err := r.db.Model(&model.GroupMember{}).
		Select("group_member.user_id, user_info.nickname, user_info.avatar, group_member.role").
		Joins("JOIN user_info ON user_info.uuid = group_member.user_id").
		Where("group_member.group_id = ? AND group_member.deleted_at IS NULL", groupUuid).
		Scan(&members).Error
	if err != nil {
		return nil, wrapDBError(err, "查询群成员列表")
	}
	return members, nil
}

// FindGroupIdsByUserId 查找用户加入的所有群组 UUID
func (r *groupMemberRepository) FindGroupIdsByUserId(userId string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.GroupMember{}).
		Where("user_id = ?", userId).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, wrapDBError(err, "查询用户群组")
	}
	return ids, nil
}

// Exists 判断用户是否在群内
func (r *groupMemberRepository) Exists(groupUuid, userId string) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupUuid, userId).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "查询群成员关系")
	}
	return count > 0, nil
}

// Create 添加群成员，重复添加静默成功
func (r *groupMemberRepository) Create(member *model.GroupMember) error {
	if err := r.db.Create(member).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return wrapDBError(err, "添加群成员")
	}
	return nil
}

// Delete 移除群成员
func (r *groupMemberRepository) Delete(groupUuid, userId string) error {
	err := r.db.Where("group_id = ? AND user_id = ?", groupUuid, userId).
		Delete(&model.GroupMember{}).Error
	if err != nil {
		return wrapDBError(err, "移除群成员")
	}
	return nil
}

// DeleteByGroupUuid 删除群组所有成员
func (r *groupMemberRepository) DeleteByGroupUuid(groupUuid string) error {
	err := r.db.Where("group_id = ?", groupUuid).Delete(&model.GroupMember{}).Error
	if err != nil {
		return wrapDBError(err, "删除群组成员")
	}
	return nil
}
