// Package auth 提供认证与用户资料业务逻辑
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	myredis "stogram_server/internal/dao/redis"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/jwt"
	"stogram_server/pkg/util/random"
)

// authService 认证业务逻辑实现
type authService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewAuthService 构造函数，注入依赖
func NewAuthService(repos *repository.Repositories, cache myredis.AsyncCacheService) *authService {
	return &authService{repos: repos, cache: cache}
}

// toUserRespond 转换为用户响应结构（不含密码散列）
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

// issueTokens 签发双 Token 并组装登录响应
func (s *authService) issueTokens(user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// Refresh Token ID 存入 Redis 实现单点互踢，失败不阻塞登录
	redisKey := myredis.KeyUserToken(user.Uuid)
	if err := s.cache.Set(context.Background(), redisKey, tokenID, 7*24*time.Hour); err != nil {
		zap.L().Warn("存储 Token ID 到 Redis 失败", zap.Error(err))
	}

	return &respond.LoginRespond{
		User:         toUserRespond(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Register 用户注册
func (s *authService) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	if _, err := s.repos.User.FindByLogin(req.Login); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该登录名已被注册")
	} else if errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	user := &model.UserInfo{
		Uuid:        "U" + random.GetNowAndLenRandomString(11),
		Login:       req.Login,
		Nickname:    req.Name,
		RawPassword: req.Password, // BeforeSave 钩子负责加密
		IsOnline:    1,
	}
	if err := s.repos.User.Create(user); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.New(errorx.CodeUserExist, "该登录名已被注册")
	}
	return s.issueTokens(user)
}

// Login 密码登录
func (s *authService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByLogin(req.Login)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在，请注册")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}

	now := time.Now()
	if err := s.repos.User.UpdateOnlineStatus(user.Uuid, 1, now); err != nil {
		zap.L().Warn("更新在线状态失败", zap.Error(err))
	}
	user.IsOnline = 1

	return s.issueTokens(user)
}

// Logout 登出
func (s *authService) Logout(userId string) error {
	if err := s.repos.User.UpdateOnlineStatus(userId, 0, time.Now()); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	// 异步清理 Token，登出路径不等待 Redis
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), myredis.KeyUserToken(userId)); err != nil {
			zap.L().Warn("清理 Token 失败", zap.Error(err))
		}
	})
	return nil
}

// UpdateUser 更新用户资料
func (s *authService) UpdateUser(userId string, req request.UpdateUserRequest) (*respond.UserInfoRespond, error) {
	user, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Signature != "" {
		user.Signature = req.Signature
	}
	if err := s.repos.User.Update(user); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	rsp := toUserRespond(user)
	return &rsp, nil
}

// GetUser 获取单个用户信息
func (s *authService) GetUser(userId string) (*respond.UserInfoRespond, error) {
	user, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := toUserRespond(user)
	return &rsp, nil
}
