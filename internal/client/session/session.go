// Package session 提供客户端本地状态的文件持久化
// 对应浏览器 localStorage 的角色：用户 id、选中会话和各会话偏好
// 跨进程重启保留，不回传服务端
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"stogram_server/pkg/errorx"
)

// ChatPrefs 单个会话的本地偏好
type ChatPrefs struct {
	Pinned   bool `json:"pinned,omitempty"`
	Starred  bool `json:"starred,omitempty"`
	Muted    bool `json:"muted,omitempty"`
	Archived bool `json:"archived,omitempty"`
	Blocked  bool `json:"blocked,omitempty"`
}

// State 持久化的全部本地状态
type State struct {
	// UserId 当前登录用户 uuid，未登录为空
	UserId string `json:"userId,omitempty"`
	// SelectedChatKey 当前选中的会话键（联系人 uuid 或群组 uuid）
	SelectedChatKey string `json:"selectedChatKey,omitempty"`
	// ChatPrefs 按会话键记录的偏好
	ChatPrefs map[string]ChatPrefs `json:"chatPrefs,omitempty"`
	// BlockedUsers 被屏蔽的用户 uuid 列表
	BlockedUsers []string `json:"blockedUsers,omitempty"`
}

// Store 文件存储
// 所有写操作立即落盘，读写由互斥锁保护
type Store struct {
	mu    sync.Mutex
	path  string
	state State
}

// NewStore 打开或创建状态文件
// dir 不存在时自动创建
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "创建状态目录失败")
	}
	s := &Store{path: filepath.Join(dir, "session.json")}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "读取状态文件失败")
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		// 状态文件损坏按空状态处理，不阻塞启动
		s.state = State{}
	}
	return s, nil
}

// flush 落盘，先写临时文件再原子替换
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "状态序列化失败")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "写入状态文件失败")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "替换状态文件失败")
	}
	return nil
}

// UserId 返回持久化的用户 uuid
func (s *Store) UserId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserId
}

// SetUserId 记录登录用户
func (s *Store) SetUserId(userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserId = userId
	return s.flush()
}

// SelectedChatKey 返回持久化的选中会话键
func (s *Store) SelectedChatKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedChatKey
}

// SetSelectedChatKey 记录或清除选中会话（空串为清除）
func (s *Store) SetSelectedChatKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedChatKey = key
	return s.flush()
}

// Prefs 返回某会话的偏好
func (s *Store) Prefs(chatKey string) ChatPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ChatPrefs[chatKey]
}

// SetPrefs 覆盖某会话的偏好
func (s *Store) SetPrefs(chatKey string, prefs ChatPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ChatPrefs == nil {
		s.state.ChatPrefs = make(map[string]ChatPrefs)
	}
	if prefs == (ChatPrefs{}) {
		delete(s.state.ChatPrefs, chatKey)
	} else {
		s.state.ChatPrefs[chatKey] = prefs
	}
	return s.flush()
}

// ChatKeysWhere 返回满足谓词的会话键集合（置顶/收藏/归档列表）
func (s *Store) ChatKeysWhere(match func(ChatPrefs) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key, prefs := range s.state.ChatPrefs {
		if match(prefs) {
			keys = append(keys, key)
		}
	}
	return keys
}

// BlockUser 屏蔽用户
func (s *Store) BlockUser(userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.state.BlockedUsers {
		if id == userId {
			return nil
		}
	}
	s.state.BlockedUsers = append(s.state.BlockedUsers, userId)
	return s.flush()
}

// UnblockUser 取消屏蔽
func (s *Store) UnblockUser(userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.BlockedUsers[:0]
	for _, id := range s.state.BlockedUsers {
		if id != userId {
			kept = append(kept, id)
		}
	}
	s.state.BlockedUsers = kept
	return s.flush()
}

// IsBlocked 是否已屏蔽
func (s *Store) IsBlocked(userId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.state.BlockedUsers {
		if id == userId {
			return true
		}
	}
	return false
}

// Reset 清空全部持久化状态（登出）
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	return s.flush()
}
