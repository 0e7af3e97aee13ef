// Package presence 提供在线状态存储
// 实现网关的 StatusStore 接口：Redis 在线集合即时更新，
// 数据库落库走异步队列
package presence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stogram_server/internal/dao/mysql/repository"
	myredis "stogram_server/internal/dao/redis"
)

// Store 在线状态存储实现
type Store struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewStore 构造函数
func NewStore(repos *repository.Repositories, cache myredis.AsyncCacheService) *Store {
	return &Store{repos: repos, cache: cache}
}

// SetOnline 标记用户在线
func (s *Store) SetOnline(userId string) error {
	if err := s.cache.AddToSet(context.Background(), myredis.KeyOnlineUsers, userId); err != nil {
		zap.L().Warn("在线集合更新失败", zap.Error(err))
	}
	s.cache.SubmitTask(func() {
		if err := s.repos.User.UpdateOnlineStatus(userId, 1, time.Now()); err != nil {
			zap.L().Warn("在线状态落库失败", zap.Error(err))
		}
	})
	return nil
}

// SetOffline 标记用户离线并记录最后在线时间
func (s *Store) SetOffline(userId string) error {
	if err := s.cache.RemoveFromSet(context.Background(), myredis.KeyOnlineUsers, userId); err != nil {
		zap.L().Warn("在线集合更新失败", zap.Error(err))
	}
	s.cache.SubmitTask(func() {
		if err := s.repos.User.UpdateOnlineStatus(userId, 0, time.Now()); err != nil {
			zap.L().Warn("离线状态落库失败", zap.Error(err))
		}
	})
	return nil
}
