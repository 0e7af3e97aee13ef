// Package call 提供通话记录业务逻辑
// 振铃、接通等信令在客户端本地模拟，服务端只记录状态流转，
// 记录失败不阻塞客户端的通话流程
package call

import (
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"

	"github.com/google/uuid"
)

// callService 通话记录业务逻辑实现
type callService struct {
	repos *repository.Repositories
}

// NewCallService 构造函数
func NewCallService(repos *repository.Repositories) *callService {
	return &callService{repos: repos}
}

func toCallRespond(call *model.Call) respond.CallRespond {
	rsp := respond.CallRespond{
		Uuid:       call.Uuid,
		CallerId:   call.CallerId,
		ReceiverId: call.ReceiverId,
		Type:       call.Type,
		Status:     call.Status,
		CreatedAt:  call.CreatedAt.Format(time.RFC3339),
	}
	if call.EndedAt.Valid {
		rsp.EndedAt = call.EndedAt.Time.Format(time.RFC3339)
	}
	return rsp
}

// Initiate 创建通话记录
func (s *callService) Initiate(req request.InitiateCallRequest) (*respond.CallRespond, error) {
	if req.CallerId == req.ReceiverId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能呼叫自己")
	}
	call := &model.Call{
		Uuid:       uuid.NewString(),
		CallerId:   req.CallerId,
		ReceiverId: req.ReceiverId,
		Type:       req.Type,
		Status:     model.CallStatusRinging,
	}
	if err := s.repos.Call.Create(call); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toCallRespond(call)
	return &rsp, nil
}

// transition 通用状态流转
func (s *callService) transition(callId string, status int8, ended bool) (*respond.CallRespond, error) {
	call, err := s.repos.Call.FindByUuid(callId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "通话记录不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	var endedAt *time.Time
	if ended {
		now := time.Now()
		endedAt = &now
	}
	if err := s.repos.Call.UpdateStatus(callId, status, endedAt); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	call.Status = status
	if endedAt != nil {
		call.EndedAt.Time = *endedAt
		call.EndedAt.Valid = true
	}
	rsp := toCallRespond(call)
	return &rsp, nil
}

// Accept 接听
func (s *callService) Accept(callId string) (*respond.CallRespond, error) {
	return s.transition(callId, model.CallStatusActive, false)
}

// Decline 拒接
func (s *callService) Decline(callId string) (*respond.CallRespond, error) {
	return s.transition(callId, model.CallStatusDeclined, true)
}

// End 挂断
func (s *callService) End(callId string) (*respond.CallRespond, error) {
	return s.transition(callId, model.CallStatusEnded, true)
}

// GetActive 获取用户当前未结束的通话
func (s *callService) GetActive(userId string) (*respond.CallRespond, error) {
	call, err := s.repos.Call.FindActiveByUserId(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, nil
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toCallRespond(call)
	return &rsp, nil
}
