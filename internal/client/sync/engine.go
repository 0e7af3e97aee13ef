// Package sync 实现客户端数据同步引擎
// 负责乐观发送、全局入站消息的对账、未读计数、最后消息摘要
// 以及会话/选中状态的本地持久化
package sync

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"time"

	"stogram_server/internal/client/notify"
	"stogram_server/internal/client/session"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/internal/feed"
	"stogram_server/pkg/constants"
	"stogram_server/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary 会话列表里展示的最后一条消息摘要
type Summary struct {
	Text      string
	Kind      Kind
	SenderId  string
	CreatedAt string
}

// Engine 同步引擎
// 内部状态由单个互斥锁保护，对应 UI 单线程模型；
// 对 Backend 的调用不持锁，慢请求不阻塞事件处理
type Engine struct {
	mu      stdsync.Mutex
	backend Backend
	store   *session.Store
	center  *notify.Center

	user     *respond.UserInfoRespond
	contacts []respond.ContactRespond
	groups   []respond.GroupInfoRespond
	folders  []respond.FolderRespond

	// cache 按会话键缓存的消息列表，首次成功加载后创建
	cache map[string][]Message
	// chatIdByKey/keyByChatId 会话键（联系人或群组 uuid）与会话 uuid 的双向映射
	chatIdByKey map[string]string
	keyByChatId map[string]string

	lastMessages map[string]Summary
	unread       map[string]int
	selected     string

	// resolving 按联系人持有的解析锁，避免并发首次发送重复建会话
	resolving map[string]*stdsync.Mutex
}

// NewEngine 创建同步引擎
func NewEngine(backend Backend, store *session.Store, center *notify.Center) *Engine {
	return &Engine{
		backend:      backend,
		store:        store,
		center:       center,
		cache:        make(map[string][]Message),
		chatIdByKey:  make(map[string]string),
		keyByChatId:  make(map[string]string),
		lastMessages: make(map[string]Summary),
		unread:       make(map[string]int),
		resolving:    make(map[string]*stdsync.Mutex),
	}
}

// Login 密码登录并加载初始状态
func (e *Engine) Login(ctx context.Context, login, password string) error {
	rsp, err := e.backend.Login(ctx, login, password)
	if err != nil {
		return err
	}
	return e.start(ctx, rsp.User)
}

// Register 注册并加载初始状态
func (e *Engine) Register(ctx context.Context, req request.RegisterRequest) error {
	rsp, err := e.backend.Register(ctx, req)
	if err != nil {
		return err
	}
	return e.start(ctx, rsp.User)
}

// Restore 按持久化的用户 id 恢复会话
// 无持久化用户时返回 false，不视为错误
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	userId := e.store.UserId()
	if userId == "" {
		return false, nil
	}
	user, err := e.backend.GetUser(ctx, userId)
	if err != nil {
		return false, err
	}
	if err := e.start(ctx, *user); err != nil {
		return false, err
	}

	// 恢复上次选中的会话并清零其未读
	if key := e.store.SelectedChatKey(); key != "" {
		if err := e.Select(key); err != nil {
			zap.L().Warn("restore selected chat", zap.String("key", key), zap.Error(err))
		}
	}
	return true, nil
}

// start 记录当前用户并拉取联系人、群组、文件夹和摘要
func (e *Engine) start(ctx context.Context, user respond.UserInfoRespond) error {
	if err := e.store.SetUserId(user.Uuid); err != nil {
		return err
	}

	e.mu.Lock()
	e.user = &user
	e.mu.Unlock()

	if err := e.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// Refresh 重新拉取联系人、群组和文件夹，并重建会话键映射与摘要
func (e *Engine) Refresh(ctx context.Context) error {
	userId := e.currentUserId()
	if userId == "" {
		return errorx.New(errorx.CodeUnauthorized, "未登录")
	}

	contacts, err := e.backend.GetContacts(ctx, userId)
	if err != nil {
		return err
	}
	groups, err := e.backend.GetGroups(ctx, userId)
	if err != nil {
		return err
	}
	folders, err := e.backend.GetFolders(ctx, userId)
	if err != nil {
		return err
	}

	// 每个已有会话拉一条摘要，避免打开会话前的整页历史加载
	summaries := make(map[string]Summary)
	collect := func(key, chatId string) {
		if chatId == "" {
			return
		}
		last, err := e.backend.GetLastMessage(ctx, chatId)
		if err != nil || last == nil {
			return
		}
		summaries[key] = Summary{
			Text:      previewOf(last.Type, last.Content),
			Kind:      Kind(last.Type),
			SenderId:  last.SenderId,
			CreatedAt: last.CreatedAt,
		}
	}
	for _, contact := range contacts {
		collect(contact.Uuid, contact.ChatId)
	}
	for _, group := range groups {
		collect(group.Uuid, group.ChatId)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.contacts = contacts
	e.groups = groups
	e.folders = folders
	for _, contact := range contacts {
		if contact.ChatId != "" {
			e.chatIdByKey[contact.Uuid] = contact.ChatId
			e.keyByChatId[contact.ChatId] = contact.Uuid
		}
	}
	for _, group := range groups {
		if group.ChatId != "" {
			e.chatIdByKey[group.Uuid] = group.ChatId
			e.keyByChatId[group.ChatId] = group.Uuid
		}
	}
	for key, summary := range summaries {
		e.lastMessages[key] = summary
	}
	return nil
}

// Logout 登出并重置全部状态
// 服务端调用失败只记日志，本地状态仍然清空
func (e *Engine) Logout(ctx context.Context) error {
	userId := e.currentUserId()
	if userId != "" {
		if err := e.backend.Logout(ctx, userId); err != nil {
			zap.L().Warn("logout request", zap.String("user", userId), zap.Error(err))
		}
	}

	e.mu.Lock()
	e.user = nil
	e.contacts = nil
	e.groups = nil
	e.folders = nil
	e.cache = make(map[string][]Message)
	e.chatIdByKey = make(map[string]string)
	e.keyByChatId = make(map[string]string)
	e.lastMessages = make(map[string]Summary)
	e.unread = make(map[string]int)
	e.selected = ""
	e.resolving = make(map[string]*stdsync.Mutex)
	e.mu.Unlock()

	return e.store.Reset()
}

// Select 切换选中会话并清零其未读
// key 为空表示取消选中
func (e *Engine) Select(key string) error {
	e.mu.Lock()
	e.selected = key
	if key != "" {
		e.unread[key] = 0
	}
	e.mu.Unlock()
	return e.store.SetSelectedChatKey(key)
}

// Messages 返回会话的消息列表
// 已缓存的会话不再发起网络请求；未缓存时拉取历史并建立缓存
func (e *Engine) Messages(ctx context.Context, key string) ([]Message, error) {
	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		out := make([]Message, len(cached))
		copy(out, cached)
		e.mu.Unlock()
		return out, nil
	}
	chatId := e.chatIdByKey[key]
	userId := ""
	if e.user != nil {
		userId = e.user.Uuid
	}
	e.mu.Unlock()

	if userId == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "未登录")
	}
	// 尚无会话（从未互发消息的联系人）按空历史处理
	if chatId == "" {
		return nil, nil
	}

	rsps, err := e.backend.GetMessages(ctx, chatId, userId)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(rsps))
	for _, rsp := range rsps {
		messages = append(messages, fromRespond(rsp, userId))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = boundCache(messages)
	out := make([]Message, len(e.cache[key]))
	copy(out, e.cache[key])
	return out, nil
}

// SendText 发送文本消息
func (e *Engine) SendText(ctx context.Context, key, text string) (Message, error) {
	if text == "" {
		return Message{}, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	return e.send(ctx, key, Message{Kind: KindText, Text: text})
}

// SendMedia 发送媒体消息
func (e *Engine) SendMedia(ctx context.Context, key string, kind Kind, fileUrl, fileName string, fileSize int64) (Message, error) {
	if kind == KindText {
		return Message{}, errorx.New(errorx.CodeInvalidParam, "媒体消息类型错误")
	}
	return e.send(ctx, key, Message{Kind: kind, FileUrl: fileUrl, FileName: fileName, FileSize: fileSize})
}

// send 乐观发送
// 先本地追加 temp_ 条目再解析会话并提交；失败时按前缀剔除乐观条目
func (e *Engine) send(ctx context.Context, key string, draft Message) (Message, error) {
	userId := e.currentUserId()
	if userId == "" {
		return Message{}, errorx.New(errorx.CodeUnauthorized, "未登录")
	}

	draft.Id = TempIdPrefix + uuid.NewString()
	draft.SenderId = userId
	draft.IsOwn = true
	draft.CreatedAt = time.Now().Format(time.RFC3339)

	// 缓存尚未建立时先加载历史，乐观条目不能把已有记录挡在缓存外
	e.mu.Lock()
	_, loaded := e.cache[key]
	e.mu.Unlock()
	if !loaded {
		if _, err := e.Messages(ctx, key); err != nil {
			return Message{}, err
		}
	}

	e.mu.Lock()
	e.cache[key] = boundCache(append(e.cache[key], draft))
	e.mu.Unlock()

	chatId, err := e.ResolveChat(ctx, key)
	if err != nil {
		e.dropTempMessages(key)
		return Message{}, err
	}
	draft.ChatId = chatId

	_, err = e.backend.SendMessage(ctx, request.SendMessageRequest{
		ChatId:   chatId,
		SenderId: userId,
		Type:     int8(draft.Kind),
		Content:  draft.Text,
		FileUrl:  draft.FileUrl,
		FileName: draft.FileName,
		FileSize: draft.FileSize,
	})
	if err != nil {
		e.dropTempMessages(key)
		return Message{}, err
	}

	// 乐观条目保留，确认事件到达时由对账逻辑替换
	return draft, nil
}

// dropTempMessages 剔除某会话全部乐观条目
func (e *Engine) dropTempMessages(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = stripTemps(e.cache[key])
}

// ResolveChat 解析会话键对应的会话 uuid，私聊不存在时创建
// 同一联系人并发解析由按键互斥锁串行化，保证幂等
func (e *Engine) ResolveChat(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errorx.New(errorx.CodeInvalidParam, "会话键不能为空")
	}
	userId := e.currentUserId()
	if userId == "" {
		return "", errorx.New(errorx.CodeUnauthorized, "未登录")
	}

	e.mu.Lock()
	if chatId, ok := e.chatIdByKey[key]; ok {
		e.mu.Unlock()
		return chatId, nil
	}
	lock := e.resolving[key]
	if lock == nil {
		lock = &stdsync.Mutex{}
		e.resolving[key] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// 竞争方可能已完成解析
	e.mu.Lock()
	if chatId, ok := e.chatIdByKey[key]; ok {
		e.mu.Unlock()
		return chatId, nil
	}
	e.mu.Unlock()

	chatId, err := e.backend.GetPrivateChatId(ctx, userId, key)
	if err != nil {
		return "", err
	}
	if chatId == "" {
		contact, err := e.backend.AddContact(ctx, userId, key)
		if err != nil {
			return "", err
		}
		chatId = contact.ChatId
	}
	if chatId == "" {
		return "", errorx.New(errorx.CodeNotFound, "无法解析会话")
	}

	e.mu.Lock()
	e.registerChatLocked(key, chatId)
	e.mu.Unlock()
	return chatId, nil
}

// HandleEvent 处理实时层下发的事件
// new_message 与 message_inserted 均按插入对账处理，幂等
func (e *Engine) HandleEvent(ctx context.Context, kind string, payload json.RawMessage) {
	switch kind {
	case feed.EventNewMessage, feed.EventMessageInserted:
		var rsp respond.MessageRespond
		if err := json.Unmarshal(payload, &rsp); err != nil {
			zap.L().Warn("inbound message unmarshal, event dropped", zap.Error(err))
			return
		}
		e.HandleMessageInserted(ctx, rsp)
	case feed.EventChatCreated:
		// 新会话通知触发联系人刷新，键映射随之建立
		if err := e.Refresh(ctx); err != nil {
			zap.L().Warn("refresh on chat_created", zap.Error(err))
		}
	default:
		zap.L().Debug("unhandled inbound event", zap.String("kind", kind))
	}
}

// HandleMessageInserted 全局入站消息对账
// 对同一确认 id 的重复事件幂等
func (e *Engine) HandleMessageInserted(ctx context.Context, rsp respond.MessageRespond) {
	userId := e.currentUserId()
	if userId == "" {
		return
	}
	msg := fromRespond(rsp, userId)

	e.mu.Lock()
	key, ok := e.keyByChatId[msg.ChatId]
	e.mu.Unlock()
	if !ok {
		// 未登记的会话先回查服务端确认类型，推导不出会话键的事件作废
		key, ok = e.resolveInboundKey(ctx, msg)
		if !ok {
			zap.L().Warn("inbound message with unresolvable chat, dropped",
				zap.String("chat", msg.ChatId), zap.String("message", msg.Id))
			return
		}
	}

	e.mu.Lock()
	if e.store.IsBlocked(msg.SenderId) {
		e.mu.Unlock()
		zap.L().Debug("message from blocked user dropped", zap.String("sender", msg.SenderId))
		return
	}

	// 最后消息摘要无条件更新
	e.lastMessages[key] = Summary{
		Text:      msg.Preview(),
		Kind:      msg.Kind,
		SenderId:  msg.SenderId,
		CreatedAt: msg.CreatedAt,
	}

	foreign := !msg.IsOwn
	selected := key == e.selected
	if !selected && foreign {
		e.unread[key]++
	}

	if cached, ok := e.cache[key]; ok {
		if selected {
			// 选中会话先剔除乐观条目再幂等追加确认条目
			cached = stripTemps(cached)
		}
		if !containsId(cached, msg.Id) {
			cached = append(cached, msg)
		}
		e.cache[key] = boundCache(cached)
	}

	senderName, senderAvatar := e.senderDisplayLocked(msg.SenderId)
	muted := e.store.Prefs(key).Muted
	e.mu.Unlock()

	if !selected && foreign && !muted {
		e.center.Publish(notify.Notification{
			Title:   senderName,
			Body:    truncateRunes(msg.Preview(), constants.NOTIFY_PREVIEW_RUNES),
			Icon:    senderAvatar,
			ChatKey: key,
		})
	}
}

// resolveInboundKey 为未登记会话的来信推导会话键
// 先按群会话匹配（键为群组 uuid），再校验发送者私聊归属（键为发送者），
// 两者都对不上说明无法确定父会话类型，事件丢弃
func (e *Engine) resolveInboundKey(ctx context.Context, msg Message) (string, bool) {
	userId := e.currentUserId()
	if userId == "" {
		return "", false
	}

	groups, err := e.backend.GetGroups(ctx, userId)
	if err == nil {
		for _, group := range groups {
			if group.ChatId == msg.ChatId {
				e.mu.Lock()
				e.groups = groups
				e.registerChatLocked(group.Uuid, msg.ChatId)
				e.mu.Unlock()
				return group.Uuid, true
			}
		}
	}

	// 本端发出的私聊消息推不出对端，只能丢弃
	if msg.IsOwn {
		return "", false
	}
	chatId, err := e.backend.GetPrivateChatId(ctx, userId, msg.SenderId)
	if err != nil || chatId != msg.ChatId {
		return "", false
	}
	e.mu.Lock()
	e.registerChatLocked(msg.SenderId, msg.ChatId)
	e.mu.Unlock()
	return msg.SenderId, true
}

// registerChatLocked 登记会话键双向映射，调用方需持锁
func (e *Engine) registerChatLocked(key, chatId string) {
	e.chatIdByKey[key] = chatId
	e.keyByChatId[chatId] = key
}

// senderDisplayLocked 查找发送者展示信息，调用方需持锁
// 群消息发送者不在联系人里时回退为 uuid
func (e *Engine) senderDisplayLocked(senderId string) (name, avatar string) {
	for _, contact := range e.contacts {
		if contact.Uuid == senderId {
			return contact.Nickname, contact.Avatar
		}
	}
	return senderId, ""
}

// Unread 返回某会话的未读数
func (e *Engine) Unread(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread[key]
}

// LastMessage 返回某会话的最后消息摘要
func (e *Engine) LastMessage(key string) (Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	summary, ok := e.lastMessages[key]
	return summary, ok
}

// ChatIdFor 返回会话键当前映射的会话 uuid
// 尚未建立会话时返回空串，不触发创建
func (e *Engine) ChatIdFor(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatIdByKey[key]
}

// SelectedKey 当前选中的会话键
func (e *Engine) SelectedKey() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// CurrentUser 当前登录用户，未登录返回 nil
func (e *Engine) CurrentUser() *respond.UserInfoRespond {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return nil
	}
	user := *e.user
	return &user
}

// Contacts 联系人列表副本
func (e *Engine) Contacts() []respond.ContactRespond {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]respond.ContactRespond, len(e.contacts))
	copy(out, e.contacts)
	return out
}

// Groups 群组列表副本
func (e *Engine) Groups() []respond.GroupInfoRespond {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]respond.GroupInfoRespond, len(e.groups))
	copy(out, e.groups)
	return out
}

// Folders 文件夹列表副本
func (e *Engine) Folders() []respond.FolderRespond {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]respond.FolderRespond, len(e.folders))
	copy(out, e.folders)
	return out
}

func (e *Engine) currentUserId() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return ""
	}
	return e.user.Uuid
}

// stripTemps 剔除乐观条目
func stripTemps(messages []Message) []Message {
	kept := messages[:0]
	for _, m := range messages {
		if !m.IsTemp() {
			kept = append(kept, m)
		}
	}
	return kept
}

// containsId 是否已存在同 id 条目
func containsId(messages []Message, id string) bool {
	for _, m := range messages {
		if m.Id == id {
			return true
		}
	}
	return false
}

// boundCache 裁剪缓存到上限，淘汰最旧的条目
func boundCache(messages []Message) []Message {
	if len(messages) <= constants.MAX_CACHED_PER_CHAT {
		return messages
	}
	return messages[len(messages)-constants.MAX_CACHED_PER_CHAT:]
}

// truncateRunes 按字符数截断
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
