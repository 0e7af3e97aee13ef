// Package folder 提供聊天文件夹业务逻辑
// 文件夹只是会话 uuid 的有序集合，不校验会话归属
package folder

import (
	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/random"
)

// folderService 文件夹业务逻辑实现
type folderService struct {
	repos *repository.Repositories
}

// NewFolderService 构造函数
func NewFolderService(repos *repository.Repositories) *folderService {
	return &folderService{repos: repos}
}

func toFolderRespond(f *model.ChatFolder) respond.FolderRespond {
	return respond.FolderRespond{
		Uuid:    f.Uuid,
		UserId:  f.UserId,
		Name:    f.Name,
		ChatIds: f.GetChatIds(),
	}
}

// findFolder 查找文件夹并统一错误转换
func (s *folderService) findFolder(folderId string) (*model.ChatFolder, error) {
	folder, err := s.repos.Folder.FindByUuid(folderId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "文件夹不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	return folder, nil
}

// GetFolders 获取用户所有文件夹
func (s *folderService) GetFolders(userId string) ([]respond.FolderRespond, error) {
	folders, err := s.repos.Folder.FindByUserId(userId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	result := make([]respond.FolderRespond, 0, len(folders))
	for i := range folders {
		result = append(result, toFolderRespond(&folders[i]))
	}
	return result, nil
}

// CreateFolder 创建文件夹
func (s *folderService) CreateFolder(req request.CreateFolderRequest) (*respond.FolderRespond, error) {
	folder := &model.ChatFolder{
		Uuid:   "F" + random.GetNowAndLenRandomString(11),
		UserId: req.UserId,
		Name:   req.Name,
	}
	folder.SetChatIds(req.ChatIds)
	if err := s.repos.Folder.Create(folder); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toFolderRespond(folder)
	return &rsp, nil
}

// UpdateFolder 更新文件夹
// ChatIds 为 nil 表示不修改，空数组表示清空
func (s *folderService) UpdateFolder(folderId string, req request.UpdateFolderRequest) (*respond.FolderRespond, error) {
	folder, err := s.findFolder(folderId)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		folder.Name = req.Name
	}
	if req.ChatIds != nil {
		folder.SetChatIds(req.ChatIds)
	}
	if err := s.repos.Folder.Update(folder); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toFolderRespond(folder)
	return &rsp, nil
}

// DeleteFolder 删除文件夹
func (s *folderService) DeleteFolder(folderId string) error {
	if _, err := s.findFolder(folderId); err != nil {
		return err
	}
	if err := s.repos.Folder.Delete(folderId); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// AddChat 向文件夹追加会话，已存在则不重复
func (s *folderService) AddChat(folderId, chatId string) (*respond.FolderRespond, error) {
	folder, err := s.findFolder(folderId)
	if err != nil {
		return nil, err
	}
	ids := folder.GetChatIds()
	for _, id := range ids {
		if id == chatId {
			rsp := toFolderRespond(folder)
			return &rsp, nil
		}
	}
	folder.SetChatIds(append(ids, chatId))
	if err := s.repos.Folder.Update(folder); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toFolderRespond(folder)
	return &rsp, nil
}

// RemoveChat 从文件夹移除会话
func (s *folderService) RemoveChat(folderId, chatId string) (*respond.FolderRespond, error) {
	folder, err := s.findFolder(folderId)
	if err != nil {
		return nil, err
	}
	ids := folder.GetChatIds()
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != chatId {
			kept = append(kept, id)
		}
	}
	folder.SetChatIds(kept)
	if err := s.repos.Folder.Update(folder); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toFolderRespond(folder)
	return &rsp, nil
}
