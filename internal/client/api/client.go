// Package api 提供访问 stogram 服务端 REST 接口的 HTTP 客户端
// 统一解包 {code,msg,data} 响应格式，业务错误映射回 errorx.CodeError
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/pkg/errorx"
)

// Client stogram 服务端 HTTP 客户端
// 实现 client/sync 的 Backend 接口
// 登录后持有访问令牌，带鉴权的接口自动附加 Bearer 头
type Client struct {
	baseURL string
	httpCli *http.Client

	tokenMu sync.RWMutex
	token   string
}

// NewClient 创建客户端，baseURL 形如 http://localhost:8000
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpCli: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope 服务端统一响应结构
type envelope struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do 发起请求并解包响应
// body 为 nil 时不携带请求体；out 为 nil 时丢弃 data
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeInvalidParam, "请求序列化失败")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "构造请求失败")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.tokenMu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.tokenMu.RUnlock()

	rsp, err := c.httpCli.Do(req)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "请求服务端失败")
	}
	defer rsp.Body.Close()

	var env envelope
	if err := json.NewDecoder(rsp.Body).Decode(&env); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "响应解析失败")
	}
	if env.Code != errorx.CodeSuccess {
		var msg string
		if err := json.Unmarshal(env.Msg, &msg); err != nil {
			msg = string(env.Msg)
		}
		return errorx.New(env.Code, msg)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errorx.Wrap(err, errorx.CodeServerBusy, "响应数据解析失败")
		}
	}
	return nil
}

// SetToken 设置后续请求使用的访问令牌
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// Register 注册并登录
func (c *Client) Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error) {
	var rsp respond.LoginRespond
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &rsp); err != nil {
		return nil, err
	}
	c.SetToken(rsp.AccessToken)
	return &rsp, nil
}

// Login 密码登录
func (c *Client) Login(ctx context.Context, login, password string) (*respond.LoginRespond, error) {
	var rsp respond.LoginRespond
	req := request.LoginRequest{Login: login, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &rsp); err != nil {
		return nil, err
	}
	c.SetToken(rsp.AccessToken)
	return &rsp, nil
}

// Logout 登出并丢弃本地令牌
func (c *Client) Logout(ctx context.Context, userId string) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", request.LogoutRequest{UserId: userId}, nil)
	c.SetToken("")
	return err
}

// GetUser 拉取用户信息
func (c *Client) GetUser(ctx context.Context, userId string) (*respond.UserInfoRespond, error) {
	var rsp respond.UserInfoRespond
	if err := c.do(ctx, http.MethodGet, "/api/auth/user/"+url.PathEscape(userId), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// UpdateUser 更新用户资料
func (c *Client) UpdateUser(ctx context.Context, userId string, req request.UpdateUserRequest) (*respond.UserInfoRespond, error) {
	var rsp respond.UserInfoRespond
	if err := c.do(ctx, http.MethodPut, "/api/auth/user/"+url.PathEscape(userId), req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetContacts 拉取联系人列表
func (c *Client) GetContacts(ctx context.Context, userId string) ([]respond.ContactRespond, error) {
	var rsp []respond.ContactRespond
	if err := c.do(ctx, http.MethodGet, "/api/contacts/list/"+url.PathEscape(userId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// SearchUsers 按昵称或登录名搜索用户
func (c *Client) SearchUsers(ctx context.Context, userId, query string) ([]respond.UserInfoRespond, error) {
	var rsp []respond.UserInfoRespond
	path := fmt.Sprintf("/api/contacts/search?userId=%s&query=%s",
		url.QueryEscape(userId), url.QueryEscape(query))
	if err := c.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// AddContact 添加联系人并懒创建私聊会话
func (c *Client) AddContact(ctx context.Context, userId, contactUserId string) (*respond.ContactRespond, error) {
	var rsp respond.ContactRespond
	req := request.AddContactRequest{UserId: userId, ContactUserId: contactUserId}
	if err := c.do(ctx, http.MethodPost, "/api/contacts/add", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// DeleteContact 删除联系人（保留会话与历史）
func (c *Client) DeleteContact(ctx context.Context, userId, contactUserId string) error {
	path := "/api/contacts/" + url.PathEscape(userId) + "/" + url.PathEscape(contactUserId)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SendMessage 发送消息
func (c *Client) SendMessage(ctx context.Context, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	var rsp respond.MessageRespond
	if err := c.do(ctx, http.MethodPost, "/api/messages/send", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetMessages 拉取会话历史
func (c *Client) GetMessages(ctx context.Context, chatId, userId string) ([]respond.MessageRespond, error) {
	var rsp []respond.MessageRespond
	path := "/api/messages/list/" + url.PathEscape(chatId) + "?userId=" + url.QueryEscape(userId)
	if err := c.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// GetPrivateChatId 解析两用户的私聊会话 uuid，不存在时返回空串
func (c *Client) GetPrivateChatId(ctx context.Context, user1, user2 string) (string, error) {
	var rsp respond.ChatIdRespond
	path := "/api/messages/chat-id/private/" + url.PathEscape(user1) + "/" + url.PathEscape(user2)
	if err := c.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return "", err
	}
	return rsp.ChatId, nil
}

// GetGroupChatId 解析群组对应的会话 uuid
func (c *Client) GetGroupChatId(ctx context.Context, groupId string) (string, error) {
	var rsp respond.ChatIdRespond
	if err := c.do(ctx, http.MethodGet, "/api/messages/chat-id/group/"+url.PathEscape(groupId), nil, &rsp); err != nil {
		return "", err
	}
	return rsp.ChatId, nil
}

// GetLastMessage 拉取会话最后一条消息摘要，无消息时返回 nil
func (c *Client) GetLastMessage(ctx context.Context, chatId string) (*respond.LastMessageRespond, error) {
	var rsp *respond.LastMessageRespond
	if err := c.do(ctx, http.MethodGet, "/api/messages/last/"+url.PathEscape(chatId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// CreateGroup 创建群组
func (c *Client) CreateGroup(ctx context.Context, req request.CreateGroupRequest) (*respond.GroupInfoRespond, error) {
	var rsp respond.GroupInfoRespond
	if err := c.do(ctx, http.MethodPost, "/api/groups/create", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetGroups 拉取用户所在群组
func (c *Client) GetGroups(ctx context.Context, userId string) ([]respond.GroupInfoRespond, error) {
	var rsp []respond.GroupInfoRespond
	if err := c.do(ctx, http.MethodGet, "/api/groups/list/"+url.PathEscape(userId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// GetGroupMembers 拉取群成员
func (c *Client) GetGroupMembers(ctx context.Context, groupId string) ([]respond.GroupMemberRespond, error) {
	var rsp []respond.GroupMemberRespond
	if err := c.do(ctx, http.MethodGet, "/api/groups/members/"+url.PathEscape(groupId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// GetFolders 拉取聊天文件夹
func (c *Client) GetFolders(ctx context.Context, userId string) ([]respond.FolderRespond, error) {
	var rsp []respond.FolderRespond
	if err := c.do(ctx, http.MethodGet, "/api/folders/"+url.PathEscape(userId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// CreateFolder 创建聊天文件夹
func (c *Client) CreateFolder(ctx context.Context, req request.CreateFolderRequest) (*respond.FolderRespond, error) {
	var rsp respond.FolderRespond
	if err := c.do(ctx, http.MethodPost, "/api/folders", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// UpdateFolder 更新聊天文件夹
func (c *Client) UpdateFolder(ctx context.Context, folderId string, req request.UpdateFolderRequest) (*respond.FolderRespond, error) {
	var rsp respond.FolderRespond
	if err := c.do(ctx, http.MethodPut, "/api/folders/"+url.PathEscape(folderId), req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// DeleteFolder 删除聊天文件夹
func (c *Client) DeleteFolder(ctx context.Context, folderId string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(folderId), nil, nil)
}

// AddChatToFolder 向文件夹追加会话
func (c *Client) AddChatToFolder(ctx context.Context, folderId, chatId string) (*respond.FolderRespond, error) {
	var rsp respond.FolderRespond
	req := request.FolderChatRequest{ChatId: chatId}
	if err := c.do(ctx, http.MethodPost, "/api/folders/"+url.PathEscape(folderId)+"/add-chat", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// RemoveChatFromFolder 从文件夹移除会话
func (c *Client) RemoveChatFromFolder(ctx context.Context, folderId, chatId string) (*respond.FolderRespond, error) {
	var rsp respond.FolderRespond
	req := request.FolderChatRequest{ChatId: chatId}
	if err := c.do(ctx, http.MethodPost, "/api/folders/"+url.PathEscape(folderId)+"/remove-chat", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// InitiateCall 发起通话
func (c *Client) InitiateCall(ctx context.Context, req request.InitiateCallRequest) (*respond.CallRespond, error) {
	var rsp respond.CallRespond
	if err := c.do(ctx, http.MethodPost, "/api/calls/initiate", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// AcceptCall 接听通话
func (c *Client) AcceptCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	var rsp respond.CallRespond
	if err := c.do(ctx, http.MethodPut, "/api/calls/accept/"+url.PathEscape(callId), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// DeclineCall 拒绝通话
func (c *Client) DeclineCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	var rsp respond.CallRespond
	if err := c.do(ctx, http.MethodPut, "/api/calls/decline/"+url.PathEscape(callId), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// EndCall 结束通话
func (c *Client) EndCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	var rsp respond.CallRespond
	if err := c.do(ctx, http.MethodPut, "/api/calls/end/"+url.PathEscape(callId), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetActiveCall 查询进行中的通话，无则返回 nil
func (c *Client) GetActiveCall(ctx context.Context, userId string) (*respond.CallRespond, error) {
	var rsp *respond.CallRespond
	if err := c.do(ctx, http.MethodGet, "/api/calls/active/"+url.PathEscape(userId), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

// UploadFile 上传 base64 文件
func (c *Client) UploadFile(ctx context.Context, req request.UploadFileRequest) (*respond.UploadRespond, error) {
	var rsp respond.UploadRespond
	if err := c.do(ctx, http.MethodPost, "/api/files/upload", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}
