// Package contact 提供联系人业务逻辑
// 联系人列表 = 显式添加的联系人 ∪ 从私聊会话推导出的对端，去重合并
package contact

import (
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"
)

// chatResolver 会话解析依赖，由 chat.Service 满足
type chatResolver interface {
	GetOrCreatePrivateChat(user1, user2 string) (string, error)
}

// contactService 联系人业务逻辑实现
type contactService struct {
	repos *repository.Repositories
	chats chatResolver
}

// NewContactService 构造函数
func NewContactService(repos *repository.Repositories, chats chatResolver) *contactService {
	return &contactService{repos: repos, chats: chats}
}

func toUserRespond(user *model.UserInfo) respond.UserInfoRespond {
	rsp := respond.UserInfoRespond{
		Uuid:      user.Uuid,
		Login:     user.Login,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Signature: user.Signature,
		IsOnline:  user.IsOnline == 1,
	}
	if user.LastSeenAt.Valid {
		rsp.LastSeenAt = user.LastSeenAt.Time.Format(time.RFC3339)
	}
	return rsp
}

// GetContacts 获取合并去重后的联系人列表
// 推导逻辑：用户参与的每个私聊会话的另一个成员也算联系人，
// 即使从未显式添加过
func (s *contactService) GetContacts(userId string) ([]respond.ContactRespond, error) {
	// 1. 显式联系人
	explicit, err := s.repos.Contact.FindByUserId(userId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	// contactId -> 私聊会话 uuid（可能为空）
	merged := make(map[string]string, len(explicit))
	order := make([]string, 0, len(explicit))
	for _, c := range explicit {
		if _, ok := merged[c.ContactUserId]; !ok {
			merged[c.ContactUserId] = ""
			order = append(order, c.ContactUserId)
		}
	}

	// 2. 从私聊会话推导对端
	chats, err := s.repos.Chat.FindByUserId(userId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	for _, chat := range chats {
		if chat.Type != model.ChatTypePrivate {
			continue
		}
		participants, err := s.repos.Chat.FindParticipantIds(chat.Uuid)
		if err != nil {
			zap.L().Error(err.Error())
			continue
		}
		for _, pid := range participants {
			if pid == userId {
				continue
			}
			if _, ok := merged[pid]; !ok {
				order = append(order, pid)
			}
			merged[pid] = chat.Uuid
		}
	}

	// 3. 批量取用户资料并组装
	users, err := s.repos.User.FindByUuids(order)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	userById := make(map[string]*model.UserInfo, len(users))
	for i := range users {
		userById[users[i].Uuid] = &users[i]
	}

	result := make([]respond.ContactRespond, 0, len(order))
	for _, id := range order {
		user, ok := userById[id]
		if !ok {
			// 已注销的用户不再出现在列表中
			continue
		}
		result = append(result, respond.ContactRespond{
			UserInfoRespond: toUserRespond(user),
			ChatId:          merged[id],
		})
	}
	return result, nil
}

// AddContact 添加联系人并懒创建私聊会话
func (s *contactService) AddContact(req request.AddContactRequest) (*respond.ContactRespond, error) {
	if req.UserId == req.ContactUserId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能添加自己为联系人")
	}

	target, err := s.repos.User.FindByUuid(req.ContactUserId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	err = s.repos.Contact.Create(&model.Contact{
		UserId:        req.UserId,
		ContactUserId: req.ContactUserId,
	})
	if err != nil && errorx.GetCode(err) != errorx.CodeContactExist {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	// 懒创建私聊会话，重复添加时直接复用
	chatId, err := s.chats.GetOrCreatePrivateChat(req.UserId, req.ContactUserId)
	if err != nil {
		return nil, err
	}

	return &respond.ContactRespond{
		UserInfoRespond: toUserRespond(target),
		ChatId:          chatId,
	}, nil
}

// DeleteContact 删除显式联系人关系
// 私聊会话保留，消息历史不受影响
func (s *contactService) DeleteContact(userId, contactUserId string) error {
	if err := s.repos.Contact.Delete(userId, contactUserId); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// Search 按登录名或昵称搜索用户
func (s *contactService) Search(query, userId string) ([]respond.UserInfoRespond, error) {
	if query == "" {
		return []respond.UserInfoRespond{}, nil
	}
	users, err := s.repos.User.Search(query, userId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	result := make([]respond.UserInfoRespond, 0, len(users))
	for i := range users {
		result = append(result, toUserRespond(&users[i]))
	}
	return result, nil
}
