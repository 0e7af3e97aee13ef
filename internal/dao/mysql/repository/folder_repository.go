package repository

import (
	"stogram_server/internal/model"

	"gorm.io/gorm"
)

type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository 创建聊天文件夹 Repository
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

// FindByUuid 按 UUID 查找文件夹
func (r *folderRepository) FindByUuid(uuid string) (*model.ChatFolder, error) {
	var folder model.ChatFolder
	if err := r.db.First(&folder, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询文件夹 uuid=%s", uuid)
	}
	return &folder, nil
}

// FindByUserId 查找用户所有文件夹（按创建时间升序）
func (r *folderRepository) FindByUserId(userId string) ([]model.ChatFolder, error) {
	var folders []model.ChatFolder
	err := r.db.Where("user_id = ?", userId).Order("created_at ASC").Find(&folders).Error
	if err != nil {
		return nil, wrapDBError(err, "查询文件夹列表")
	}
	return folders, nil
}

// Create 创建文件夹
func (r *folderRepository) Create(folder *model.ChatFolder) error {
	if err := r.db.Create(folder).Error; err != nil {
		return wrapDBError(err, "创建文件夹")
	}
	return nil
}

// Update 更新文件夹
func (r *folderRepository) Update(folder *model.ChatFolder) error {
	if err := r.db.Save(folder).Error; err != nil {
		return wrapDBError(err, "更新文件夹")
	}
	return nil
}

// Delete 删除文件夹
func (r *folderRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.ChatFolder{}).Error; err != nil {
		return wrapDBError(err, "删除文件夹")
	}
	return nil
}
