// Package group 提供群组业务逻辑
// 创建群组同时建立对应的群会话，成员变动同步会话成员
package group

import (
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/feed"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/random"
)

// groupService 群组业务逻辑实现
type groupService struct {
	repos *repository.Repositories
	bus   *feed.Bus
}

// NewGroupService 构造函数
func NewGroupService(repos *repository.Repositories, bus *feed.Bus) *groupService {
	return &groupService{repos: repos, bus: bus}
}

func (s *groupService) toGroupRespond(g *model.GroupInfo) respond.GroupInfoRespond {
	rsp := respond.GroupInfoRespond{
		Uuid:      g.Uuid,
		Name:      g.Name,
		Notice:    g.Notice,
		Avatar:    g.Avatar,
		OwnerId:   g.OwnerId,
		MemberCnt: g.MemberCnt,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
	if chat, err := s.repos.Chat.FindByGroupId(g.Uuid); err == nil {
		rsp.ChatId = chat.Uuid
	}
	return rsp
}

// CreateGroup 创建群组及其会话
// 群组、会话、成员关系在同一事务内建立
func (s *groupService) CreateGroup(req request.CreateGroupRequest) (*respond.GroupInfoRespond, error) {
	groupUuid := "G" + random.GetNowAndLenRandomString(11)
	chatUuid := "C" + random.GetNowAndLenRandomString(11)

	// 成员去重，群主始终在内
	memberSet := map[string]bool{req.OwnerId: true}
	members := []string{req.OwnerId}
	for _, id := range req.MemberIds {
		if !memberSet[id] {
			memberSet[id] = true
			members = append(members, id)
		}
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		group := &model.GroupInfo{
			Uuid:      groupUuid,
			Name:      req.Name,
			Notice:    req.Notice,
			Avatar:    req.Avatar,
			OwnerId:   req.OwnerId,
			MemberCnt: len(members),
		}
		if err := tx.Group.Create(group); err != nil {
			return err
		}
		if err := tx.Chat.Create(&model.Chat{
			Uuid:    chatUuid,
			Type:    model.ChatTypeGroup,
			GroupId: groupUuid,
		}); err != nil {
			return err
		}
		for _, uid := range members {
			role := model.GroupRoleMember
			if uid == req.OwnerId {
				role = model.GroupRoleAdmin
			}
			if err := tx.GroupMember.Create(&model.GroupMember{
				GroupId: groupUuid,
				UserId:  uid,
				Role:    role,
			}); err != nil {
				return err
			}
			if err := tx.Chat.AddParticipant(chatUuid, uid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	// 通知全部初始成员新会话已建立，在线端据此刷新键映射
	if s.bus != nil {
		s.bus.PublishAll(members, feed.Event{
			Kind:   feed.EventChatCreated,
			ChatId: chatUuid,
		})
	}

	group, err := s.repos.Group.FindByUuid(groupUuid)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := s.toGroupRespond(group)
	return &rsp, nil
}

// GetGroups 获取用户加入的所有群组
func (s *groupService) GetGroups(userId string) ([]respond.GroupInfoRespond, error) {
	groupIds, err := s.repos.GroupMember.FindGroupIdsByUserId(userId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	groups, err := s.repos.Group.FindByUuids(groupIds)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	result := make([]respond.GroupInfoRespond, 0, len(groups))
	for i := range groups {
		result = append(result, s.toGroupRespond(&groups[i]))
	}
	return result, nil
}

// UpdateGroup 更新群组信息
func (s *groupService) UpdateGroup(groupId string, req request.UpdateGroupRequest) (*respond.GroupInfoRespond, error) {
	group, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Notice != "" {
		group.Notice = req.Notice
	}
	if req.Avatar != "" {
		group.Avatar = req.Avatar
	}
	if err := s.repos.Group.Update(group); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := s.toGroupRespond(group)
	return &rsp, nil
}

// LeaveGroup 退出群组
// 群主退出等同解散：删除群组、会话、全部成员关系和消息
func (s *groupService) LeaveGroup(groupId, userId string) error {
	group, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}

	chat, err := s.repos.Chat.FindByGroupId(groupId)
	if err != nil && errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}

	if group.OwnerId == userId {
		// 解散
		err = s.repos.Transaction(func(tx *repository.Repositories) error {
			if err := tx.GroupMember.DeleteByGroupUuid(groupId); err != nil {
				return err
			}
			if err := tx.Group.Delete(groupId); err != nil {
				return err
			}
			if chat != nil {
				if err := tx.Message.DeleteByChatId(chat.Uuid); err != nil {
					return err
				}
				if err := tx.Chat.Delete(chat.Uuid); err != nil {
					return err
				}
			}
			return nil
		})
	} else {
		err = s.repos.Transaction(func(tx *repository.Repositories) error {
			if err := tx.GroupMember.Delete(groupId, userId); err != nil {
				return err
			}
			if err := tx.Group.DecrementMemberCount(groupId); err != nil {
				return err
			}
			if chat != nil {
				if err := tx.Chat.RemoveParticipant(chat.Uuid, userId); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// GetMembers 获取群成员列表
func (s *groupService) GetMembers(groupId string) ([]respond.GroupMemberRespond, error) {
	members, err := s.repos.GroupMember.FindMembersWithUserInfo(groupId)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	result := make([]respond.GroupMemberRespond, 0, len(members))
	for _, m := range members {
		result = append(result, respond.GroupMemberRespond{
			UserId:   m.UserId,
			Nickname: m.Nickname,
			Avatar:   m.Avatar,
			Role:     m.Role,
		})
	}
	return result, nil
}
