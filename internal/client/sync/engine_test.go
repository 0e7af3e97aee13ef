package sync

import (
	"context"
	"fmt"
	"strings"
	stdsync "sync"
	"testing"

	"stogram_server/internal/client/notify"
	"stogram_server/internal/client/session"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
)

// stubBackend 测试用的内存服务端
type stubBackend struct {
	mu stdsync.Mutex

	users    map[string]respond.UserInfoRespond // login -> user
	contacts map[string][]respond.ContactRespond
	groups   map[string][]respond.GroupInfoRespond
	chatIds  map[string]string // "u1|u2"（有序）-> chatId
	history  map[string][]respond.MessageRespond

	sent      []request.SendMessageRequest
	nextMsgId int64

	addContactCalls  int
	loggedOut        []string
	failSend         bool
	privateChatCalls int
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		users:     make(map[string]respond.UserInfoRespond),
		contacts:  make(map[string][]respond.ContactRespond),
		groups:    make(map[string][]respond.GroupInfoRespond),
		chatIds:   make(map[string]string),
		history:   make(map[string][]respond.MessageRespond),
		nextMsgId: 1000,
	}
}

func pairOf(u1, u2 string) string {
	if u1 < u2 {
		return u1 + "|" + u2
	}
	return u2 + "|" + u1
}

func (b *stubBackend) Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error) {
	user := respond.UserInfoRespond{Uuid: "U_" + req.Login, Login: req.Login, Nickname: req.Name}
	b.mu.Lock()
	b.users[req.Login] = user
	b.mu.Unlock()
	return &respond.LoginRespond{User: user}, nil
}

func (b *stubBackend) Login(ctx context.Context, login, password string) (*respond.LoginRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[login]
	if !ok {
		return nil, fmt.Errorf("user %s not found", login)
	}
	return &respond.LoginRespond{User: user}, nil
}

func (b *stubBackend) Logout(ctx context.Context, userId string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedOut = append(b.loggedOut, userId)
	return nil
}

func (b *stubBackend) GetUser(ctx context.Context, userId string) (*respond.UserInfoRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, user := range b.users {
		if user.Uuid == userId {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", userId)
}

func (b *stubBackend) GetContacts(ctx context.Context, userId string) ([]respond.ContactRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]respond.ContactRespond(nil), b.contacts[userId]...), nil
}

func (b *stubBackend) AddContact(ctx context.Context, userId, contactUserId string) (*respond.ContactRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addContactCalls++
	pair := pairOf(userId, contactUserId)
	chatId, ok := b.chatIds[pair]
	if !ok {
		chatId = fmt.Sprintf("C_%d", len(b.chatIds)+1)
		b.chatIds[pair] = chatId
	}
	contact := respond.ContactRespond{
		UserInfoRespond: respond.UserInfoRespond{Uuid: contactUserId},
		ChatId:          chatId,
	}
	b.contacts[userId] = append(b.contacts[userId], contact)
	return &contact, nil
}

func (b *stubBackend) SendMessage(ctx context.Context, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSend {
		return nil, fmt.Errorf("store unavailable")
	}
	b.sent = append(b.sent, req)
	b.nextMsgId++
	return &respond.MessageRespond{
		Uuid:     b.nextMsgId,
		ChatId:   req.ChatId,
		SenderId: req.SenderId,
		Type:     req.Type,
		Content:  req.Content,
	}, nil
}

func (b *stubBackend) GetMessages(ctx context.Context, chatId, userId string) ([]respond.MessageRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]respond.MessageRespond(nil), b.history[chatId]...), nil
}

func (b *stubBackend) GetPrivateChatId(ctx context.Context, user1, user2 string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.privateChatCalls++
	return b.chatIds[pairOf(user1, user2)], nil
}

func (b *stubBackend) GetLastMessage(ctx context.Context, chatId string) (*respond.LastMessageRespond, error) {
	return nil, nil
}

func (b *stubBackend) GetGroups(ctx context.Context, userId string) ([]respond.GroupInfoRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]respond.GroupInfoRespond(nil), b.groups[userId]...), nil
}

func (b *stubBackend) GetFolders(ctx context.Context, userId string) ([]respond.FolderRespond, error) {
	return nil, nil
}

func (b *stubBackend) UploadFile(ctx context.Context, req request.UploadFileRequest) (*respond.UploadRespond, error) {
	return &respond.UploadRespond{Url: "http://example.com/" + req.FileName, FileName: req.FileName}, nil
}

// newTestEngine 登录 alice 并预置联系人 bob（已有会话 C_ab）
func newTestEngine(t *testing.T) (*Engine, *stubBackend, *session.Store, *notify.Center) {
	t.Helper()
	backend := newStubBackend()
	backend.users["alice"] = respond.UserInfoRespond{Uuid: "U_alice", Login: "alice", Nickname: "Alice"}
	backend.users["bob"] = respond.UserInfoRespond{Uuid: "U_bob", Login: "bob", Nickname: "Bob", Avatar: "bob.png"}
	backend.chatIds[pairOf("U_alice", "U_bob")] = "C_ab"
	backend.contacts["U_alice"] = []respond.ContactRespond{{
		UserInfoRespond: respond.UserInfoRespond{Uuid: "U_bob", Login: "bob", Nickname: "Bob", Avatar: "bob.png"},
		ChatId:          "C_ab",
	}}

	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	center := notify.NewCenter()
	engine := NewEngine(backend, store, center)
	if err := engine.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return engine, backend, store, center
}

func finalAndTempCount(messages []Message, finalId string) (finals, temps int) {
	for _, m := range messages {
		if m.IsTemp() {
			temps++
		}
		if m.Id == finalId {
			finals++
		}
	}
	return finals, temps
}

func TestOptimisticSendHappyPath(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()
	if err := engine.Select("U_bob"); err != nil {
		t.Fatalf("select: %v", err)
	}

	sent, err := engine.SendText(ctx, "U_bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !sent.IsTemp() {
		t.Fatalf("optimistic message id %q is not temporary", sent.Id)
	}

	// 确认事件到达前，乐观条目立即可见
	messages, err := engine.Messages(ctx, "U_bob")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 1 || !messages[0].IsTemp() {
		t.Fatalf("expected single optimistic entry, got %+v", messages)
	}

	// 模拟全局订阅送达确认事件
	confirmed := backend.sent[0]
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 2001, ChatId: confirmed.ChatId, SenderId: "U_alice", Content: "hello",
	})

	messages, err = engine.Messages(ctx, "U_bob")
	if err != nil {
		t.Fatalf("messages after confirm: %v", err)
	}
	finals, temps := finalAndTempCount(messages, "2001")
	if finals != 1 || temps != 0 || len(messages) != 1 {
		t.Fatalf("after confirm: finals=%d temps=%d total=%d, want 1/0/1", finals, temps, len(messages))
	}
	if !messages[0].IsOwn {
		t.Fatal("confirmed own message lost isOwn flag")
	}
}

func TestSendFailureDropsOptimisticEntry(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()
	backend.failSend = true

	if _, err := engine.SendText(ctx, "U_bob", "hello"); err == nil {
		t.Fatal("expected send error")
	}
	messages, err := engine.Messages(ctx, "U_bob")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("optimistic entry survived failed send: %+v", messages)
	}
}

func TestDuplicateInboundEventIdempotent(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	// 先建立缓存
	if _, err := engine.Messages(ctx, "U_bob"); err != nil {
		t.Fatalf("messages: %v", err)
	}

	event := respond.MessageRespond{Uuid: 3001, ChatId: "C_ab", SenderId: "U_bob", Content: "hi"}
	engine.HandleMessageInserted(ctx, event)
	engine.HandleMessageInserted(ctx, event)

	messages, err := engine.Messages(ctx, "U_bob")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	count := 0
	for _, m := range messages {
		if m.Id == "3001" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("confirmed id appears %d times, want 1", count)
	}
}

func TestUnreadIncrementsOnlyForUnselectedForeign(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	if err := engine.Select("U_carol"); err != nil {
		t.Fatalf("select: %v", err)
	}

	// 选中 carol，bob 的来信未读 +1
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 4001, ChatId: "C_ab", SenderId: "U_bob", Content: "hi",
	})
	if got := engine.Unread("U_bob"); got != 1 {
		t.Fatalf("unread for U_bob = %d, want 1", got)
	}
	if got := engine.Unread("U_carol"); got != 0 {
		t.Fatalf("unread for selected chat = %d, want 0", got)
	}

	// 本端发出的消息不计未读
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 4002, ChatId: "C_ab", SenderId: "U_alice", Content: "me",
	})
	if got := engine.Unread("U_bob"); got != 1 {
		t.Fatalf("own message changed unread: %d, want 1", got)
	}
}

func TestSelectResetsUnread(t *testing.T) {
	engine, _, store, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 5001, ChatId: "C_ab", SenderId: "U_bob", Content: "hi",
	})
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 5002, ChatId: "C_ab", SenderId: "U_bob", Content: "hi again",
	})
	if got := engine.Unread("U_bob"); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}

	if err := engine.Select("U_bob"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := engine.Unread("U_bob"); got != 0 {
		t.Fatalf("unread after select = %d, want 0", got)
	}
	if got := store.SelectedChatKey(); got != "U_bob" {
		t.Fatalf("persisted selection = %q, want U_bob", got)
	}
}

func TestResolveChatIdempotent(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()

	// carol 没有既存会话，首次解析走创建
	first, err := engine.ResolveChat(ctx, "U_carol")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := engine.ResolveChat(ctx, "U_carol")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("resolution not idempotent: %q vs %q", first, second)
	}
	if backend.addContactCalls != 1 {
		t.Fatalf("chat created %d times, want 1", backend.addContactCalls)
	}
}

func TestResolveChatConcurrentSingleCreate(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()

	var wg stdsync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chatId, err := engine.ResolveChat(ctx, "U_carol")
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			results[i] = chatId
		}(i)
	}
	wg.Wait()

	for _, chatId := range results {
		if chatId != results[0] {
			t.Fatalf("divergent chat ids: %v", results)
		}
	}
	if backend.addContactCalls != 1 {
		t.Fatalf("chat created %d times under contention, want 1", backend.addContactCalls)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	engine, backend, store, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 6001, ChatId: "C_ab", SenderId: "U_bob", Content: "hi",
	})
	if err := engine.Select("U_bob"); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := engine.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if engine.CurrentUser() != nil {
		t.Fatal("current user survived logout")
	}
	if got := engine.Unread("U_bob"); got != 0 {
		t.Fatalf("unread survived logout: %d", got)
	}
	if _, ok := engine.LastMessage("U_bob"); ok {
		t.Fatal("last message summary survived logout")
	}
	if got := store.UserId(); got != "" {
		t.Fatalf("persisted user id survived logout: %q", got)
	}
	if got := store.SelectedChatKey(); got != "" {
		t.Fatalf("persisted selection survived logout: %q", got)
	}
	if len(backend.loggedOut) != 1 || backend.loggedOut[0] != "U_alice" {
		t.Fatalf("server logout calls: %v", backend.loggedOut)
	}
}

func TestNotificationForForeignUnselectedMessage(t *testing.T) {
	engine, _, _, center := newTestEngine(t)
	ctx := context.Background()
	notifications, unsub := center.Subscribe(4)
	defer unsub()

	body := strings.Repeat("很", 60)
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 7001, ChatId: "C_ab", SenderId: "U_bob", Content: body,
	})

	select {
	case n := <-notifications:
		if n.Title != "Bob" {
			t.Fatalf("notification title = %q, want Bob", n.Title)
		}
		if n.Icon != "bob.png" {
			t.Fatalf("notification icon = %q, want bob.png", n.Icon)
		}
		if got := len([]rune(n.Body)); got > 51 {
			t.Fatalf("notification body not truncated: %d runes", got)
		}
	default:
		t.Fatal("expected a notification")
	}
}

func TestMutedChatSuppressesNotification(t *testing.T) {
	engine, _, store, center := newTestEngine(t)
	ctx := context.Background()
	if err := store.SetPrefs("U_bob", session.ChatPrefs{Muted: true}); err != nil {
		t.Fatalf("set prefs: %v", err)
	}
	notifications, unsub := center.Subscribe(4)
	defer unsub()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 8001, ChatId: "C_ab", SenderId: "U_bob", Content: "hi",
	})

	select {
	case n := <-notifications:
		t.Fatalf("muted chat produced notification: %+v", n)
	default:
	}
	// 免打扰只抑制通知，不抑制未读
	if got := engine.Unread("U_bob"); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}

func TestLastMessageSummaryUpdatesUnconditionally(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	if err := engine.Select("U_bob"); err != nil {
		t.Fatalf("select: %v", err)
	}

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9001, ChatId: "C_ab", SenderId: "U_bob", Type: 1,
	})

	summary, ok := engine.LastMessage("U_bob")
	if !ok {
		t.Fatal("expected a last message summary")
	}
	if summary.Kind != KindImage || summary.Text != "[图片]" {
		t.Fatalf("summary = %+v, want image placeholder", summary)
	}
}

func TestUnresolvableOwnEventDropped(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	// 本端消息但会话未登记：丢弃且不建键
	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9101, ChatId: "C_unknown", SenderId: "U_alice", Content: "ghost",
	})
	if _, ok := engine.LastMessage("C_unknown"); ok {
		t.Fatal("unresolvable event updated state")
	}
}

func TestInboundFromStrangerDerivesPrivateKey(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()

	// dave 主动添加了 alice，服务端已有私聊会话，本端尚未登记
	backend.mu.Lock()
	backend.chatIds[pairOf("U_alice", "U_dave")] = "C_new"
	backend.mu.Unlock()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9201, ChatId: "C_new", SenderId: "U_dave", Content: "hello there",
	})

	if got := engine.Unread("U_dave"); got != 1 {
		t.Fatalf("unread for stranger = %d, want 1", got)
	}
	summary, ok := engine.LastMessage("U_dave")
	if !ok || summary.Text != "hello there" {
		t.Fatalf("summary for stranger = %+v ok=%v", summary, ok)
	}
}

// 群会话的首条消息按群组 uuid 建键，不得劫持发送者的私聊键
func TestGroupInboundKeyedByGroupId(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()

	// 登录后别人把 alice 拉进了群，本端键映射里还没有这个会话
	backend.mu.Lock()
	backend.groups["U_alice"] = []respond.GroupInfoRespond{
		{Uuid: "G_team", Name: "团队群", ChatId: "C_group"},
	}
	backend.mu.Unlock()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9401, ChatId: "C_group", SenderId: "U_bob", Content: "group hello",
	})

	if got := engine.Unread("G_team"); got != 1 {
		t.Fatalf("unread for group = %d, want 1", got)
	}
	if got := engine.Unread("U_bob"); got != 0 {
		t.Fatalf("group message leaked into private unread: %d", got)
	}
	if got := engine.ChatIdFor("U_bob"); got != "C_ab" {
		t.Fatalf("private mapping for U_bob = %q, want C_ab", got)
	}

	// 之后给 bob 的私聊消息必须落在私聊会话而非群会话
	if _, err := engine.SendText(ctx, "U_bob", "just you"); err != nil {
		t.Fatalf("send: %v", err)
	}
	last := backend.sent[len(backend.sent)-1]
	if last.ChatId != "C_ab" {
		t.Fatalf("private reply sent to chat %q, want C_ab", last.ChatId)
	}
}

// 既不是群也查不到私聊归属的来信直接作废，不建键不计数
func TestInboundUnknownChatDropped(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9501, ChatId: "C_mystery", SenderId: "U_mallory", Content: "??",
	})

	if got := engine.Unread("U_mallory"); got != 0 {
		t.Fatalf("dropped event counted unread: %d", got)
	}
	if _, ok := engine.LastMessage("U_mallory"); ok {
		t.Fatal("dropped event updated summary")
	}
	if got := engine.ChatIdFor("U_mallory"); got != "" {
		t.Fatalf("dropped event registered mapping: %q", got)
	}
}

// 首次发送先加载历史，乐观条目不能把既有记录挡在缓存外
func TestSendPreloadsHistory(t *testing.T) {
	engine, backend, _, _ := newTestEngine(t)
	ctx := context.Background()

	backend.mu.Lock()
	backend.history["C_ab"] = []respond.MessageRespond{
		{Uuid: 501, ChatId: "C_ab", SenderId: "U_bob", Content: "earlier"},
	}
	backend.mu.Unlock()

	// 打开历史之前直接发送
	if _, err := engine.SendText(ctx, "U_bob", "reply"); err != nil {
		t.Fatalf("send: %v", err)
	}

	messages, err := engine.Messages(ctx, "U_bob")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("message count = %d, want history + optimistic entry", len(messages))
	}
	if messages[0].Id != "501" || messages[0].Text != "earlier" {
		t.Fatalf("history entry missing, got %+v", messages[0])
	}
	if !messages[1].IsTemp() {
		t.Fatalf("optimistic entry missing, got %+v", messages[1])
	}
}

// 端到端：A 首次给 B 发消息，B 侧未读从 0 到 1
func TestFirstMessageEndToEnd(t *testing.T) {
	backend := newStubBackend()
	backend.users["alice"] = respond.UserInfoRespond{Uuid: "U_alice", Login: "alice", Nickname: "Alice"}
	backend.users["bob"] = respond.UserInfoRespond{Uuid: "U_bob", Login: "bob", Nickname: "Bob"}

	ctx := context.Background()
	centerA := notify.NewCenter()
	storeA, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store A: %v", err)
	}
	engineA := NewEngine(backend, storeA, centerA)
	if err := engineA.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login A: %v", err)
	}

	centerB := notify.NewCenter()
	storeB, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store B: %v", err)
	}
	engineB := NewEngine(backend, storeB, centerB)
	if err := engineB.Login(ctx, "bob", "pw"); err != nil {
		t.Fatalf("login B: %v", err)
	}

	if _, err := engineA.SendText(ctx, "U_bob", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if backend.addContactCalls != 1 {
		t.Fatalf("chat creations = %d, want 1", backend.addContactCalls)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("persisted messages = %d, want 1", len(backend.sent))
	}

	// 全局订阅把确认事件送达 B
	confirmed := backend.sent[0]
	engineB.HandleMessageInserted(ctx, respond.MessageRespond{
		Uuid: 9301, ChatId: confirmed.ChatId, SenderId: "U_alice", Content: confirmed.Content,
	})

	if got := engineB.Unread("U_alice"); got != 1 {
		t.Fatalf("B unread for A = %d, want 1", got)
	}
}
