package repository

import (
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"

	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系人 Repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// FindByUserIdAndContactId 查找一条联系人关系
func (r *contactRepository) FindByUserIdAndContactId(userId, contactUserId string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.First(&contact, "user_id = ? AND contact_user_id = ?", userId, contactUserId).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询联系人 user=%s contact=%s", userId, contactUserId)
	}
	return &contact, nil
}

// FindByUserId 查找用户所有显式联系人
func (r *contactRepository) FindByUserId(userId string) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := r.db.Where("user_id = ?", userId).Find(&contacts).Error; err != nil {
		return nil, wrapDBError(err, "查询联系人列表")
	}
	return contacts, nil
}

// Create 创建联系人关系
// 唯一索引冲突说明已是联系人
func (r *contactRepository) Create(contact *model.Contact) error {
	if err := r.db.Create(contact).Error; err != nil {
		if isDuplicateKey(err) {
			return errorx.Wrap(err, errorx.CodeContactExist, "联系人已存在")
		}
		return wrapDBError(err, "创建联系人")
	}
	return nil
}

// Delete 删除联系人关系
func (r *contactRepository) Delete(userId, contactUserId string) error {
	err := r.db.Where("user_id = ? AND contact_user_id = ?", userId, contactUserId).
		Delete(&model.Contact{}).Error
	if err != nil {
		return wrapDBError(err, "删除联系人")
	}
	return nil
}
