//go:build integration
// +build integration

// 本文件依赖本地 MySQL 与 Redis，默认不参与单元测试：
//
//	go test -tags integration ./test/api/
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stogram_server/internal/config"
	dao "stogram_server/internal/dao/mysql"
	myredis "stogram_server/internal/dao/redis"
	"stogram_server/internal/feed"
	ws "stogram_server/internal/gateway/websocket"
	"stogram_server/internal/handler"
	"stogram_server/internal/http_server"
	"stogram_server/internal/relay"
	"stogram_server/internal/service"
	"stogram_server/internal/service/presence"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/jwt"
	"stogram_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// newIntegrationServer 按 main 的装配顺序拉起完整后端
func newIntegrationServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conf := config.GetConfig()

	repos := dao.Init()
	myredis.Init()
	cache := myredis.GetCacheService()

	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init translator: %v", err)
	}

	broker := relay.New(config.RelayConfig{MessageMode: "channel"})
	bus := feed.NewBus()
	svcs := service.NewServices(repos, cache, broker, bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(bus, broker, presence.NewStore(repos, cache))
	go hub.Run(ctx)

	engine := http_server.Init(handler.NewHandlers(svcs, hub))
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) apiEnvelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rsp, err := http.Post(url, "application/json", strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer rsp.Body.Close()
	var env apiEnvelope
	if err := json.NewDecoder(rsp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return env
}

func getJSON(t *testing.T, url string) apiEnvelope {
	t.Helper()
	rsp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer rsp.Body.Close()
	var env apiEnvelope
	if err := json.NewDecoder(rsp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return env
}

func requireCode(t *testing.T, env apiEnvelope, what string) {
	t.Helper()
	if env.Code != errorx.CodeSuccess {
		t.Fatalf("%s code=%d msg=%v", what, env.Code, env.Msg)
	}
}

// TestLocal_PrivateMessageFlow 走一遍首条消息全链路：
// 注册两个用户 -> A 添加 B 为联系人 -> B 连 WebSocket ->
// A 发消息 -> B 在线实时收到 -> 历史与最后一条摘要一致
func TestLocal_PrivateMessageFlow(t *testing.T) {
	server := newIntegrationServer(t)

	stamp := time.Now().UnixNano()
	loginA := fmt.Sprintf("alice_%d", stamp)
	loginB := fmt.Sprintf("bob_%d", stamp)

	var regA, regB struct {
		User struct {
			Uuid string `json:"id"`
		} `json:"user"`
	}
	env := postJSON(t, server.URL+"/api/auth/register",
		map[string]any{"login": loginA, "password": "secret1", "name": "Alice"})
	requireCode(t, env, "register A")
	if err := json.Unmarshal(env.Data, &regA); err != nil {
		t.Fatalf("decode register A: %v", err)
	}
	env = postJSON(t, server.URL+"/api/auth/register",
		map[string]any{"login": loginB, "password": "secret1", "name": "Bob"})
	requireCode(t, env, "register B")
	if err := json.Unmarshal(env.Data, &regB); err != nil {
		t.Fatalf("decode register B: %v", err)
	}
	userA, userB := regA.User.Uuid, regB.User.Uuid

	// A 添加 B，懒创建私聊会话
	env = postJSON(t, server.URL+"/api/contacts/add",
		map[string]any{"userId": userA, "contactUserId": userB})
	requireCode(t, env, "add contact")
	var contact struct {
		ChatId string `json:"chatId"`
	}
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		t.Fatalf("decode contact: %v", err)
	}
	if contact.ChatId == "" {
		t.Fatal("add contact returned empty chatId")
	}

	// 会话解析应与联系人返回一致
	env = getJSON(t, server.URL+"/api/messages/chat-id/private/"+userA+"/"+userB)
	requireCode(t, env, "resolve private chat")
	var resolved struct {
		ChatId string `json:"chatId"`
	}
	if err := json.Unmarshal(env.Data, &resolved); err != nil {
		t.Fatalf("decode chat id: %v", err)
	}
	if resolved.ChatId != contact.ChatId {
		t.Fatalf("chat id mismatch: %s vs %s", resolved.ChatId, contact.ChatId)
	}

	// B 连接 WebSocket
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?client_id=" + userB
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	defer conn.Close()
	time.Sleep(200 * time.Millisecond)

	// A 发送文本消息
	env = postJSON(t, server.URL+"/api/messages/send",
		map[string]any{"chatId": contact.ChatId, "senderId": userA, "type": 0, "content": "你好 Bob"})
	requireCode(t, env, "send message")

	// B 应通过 feed 收到 message_inserted
	received := false
	deadline := time.Now().Add(5 * time.Second)
	for !received && time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var event struct {
			Kind   string          `json:"type"`
			ChatId string          `json:"chatId"`
			Data   json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&event); err != nil {
			continue
		}
		if event.Kind == feed.EventMessageInserted && event.ChatId == contact.ChatId {
			received = true
		}
	}
	if !received {
		t.Fatal("ws client never received message_inserted")
	}

	// 历史与最后一条摘要
	env = getJSON(t, server.URL+"/api/messages/list/"+contact.ChatId+"?userId="+userB)
	requireCode(t, env, "list messages")
	var messages []struct {
		Content string `json:"content"`
		IsOwn   bool   `json:"isOwn"`
	}
	if err := json.Unmarshal(env.Data, &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "你好 Bob" || messages[0].IsOwn {
		t.Fatalf("unexpected history: %+v", messages)
	}

	env = getJSON(t, server.URL+"/api/messages/last/"+contact.ChatId)
	requireCode(t, env, "last message")
	var last struct {
		Content  string `json:"content"`
		SenderId string `json:"senderId"`
	}
	if err := json.Unmarshal(env.Data, &last); err != nil {
		t.Fatalf("decode last message: %v", err)
	}
	if last.Content != "你好 Bob" || last.SenderId != userA {
		t.Fatalf("unexpected last message: %+v", last)
	}

	// 重复添加联系人应幂等复用同一会话
	env = postJSON(t, server.URL+"/api/contacts/add",
		map[string]any{"userId": userB, "contactUserId": userA})
	requireCode(t, env, "reverse add contact")
	var reverse struct {
		ChatId string `json:"chatId"`
	}
	if err := json.Unmarshal(env.Data, &reverse); err != nil {
		t.Fatalf("decode reverse contact: %v", err)
	}
	if reverse.ChatId != contact.ChatId {
		t.Fatalf("reverse add created new chat: %s vs %s", reverse.ChatId, contact.ChatId)
	}
}
