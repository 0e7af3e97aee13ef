package repository

import (
	"time"

	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByLogin 按登录名查找用户
func (r *userRepository) FindByLogin(login string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "login = ?", login).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 login=%s", login)
	}
	return &user, nil
}

// FindByUuids 按 UUID 列表批量查找用户
func (r *userRepository) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return []model.UserInfo{}, nil
	}
	var users []model.UserInfo
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// Search 按登录名或昵称模糊搜索用户，排除自己
func (r *userRepository) Search(term string, excludeUuid string) ([]model.UserInfo, error) {
	var users []model.UserInfo
	pattern := "%" + term + "%"
	err := r.db.Where("uuid != ?", excludeUuid).
		Where("login LIKE ? OR nickname LIKE ?", pattern, pattern).
		Limit(50).
		Find(&users).Error
	if err != nil {
		return nil, wrapDBError(err, "搜索用户")
	}
	return users, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return err
		}
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.UserInfo) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapDBError(err, "更新用户信息")
	}
	return nil
}

// UpdateOnlineStatus 更新在线状态和最后在线时间
func (r *userRepository) UpdateOnlineStatus(uuid string, isOnline int8, lastSeenAt time.Time) error {
	err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).Updates(map[string]any{
		"is_online":    isOnline,
		"last_seen_at": lastSeenAt,
	}).Error
	if err != nil {
		return wrapDBError(err, "更新在线状态")
	}
	return nil
}
