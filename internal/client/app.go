// Package client 把 HTTP 客户端、实时连接、会话存储和同步引擎
// 组装为一个可嵌入的客户端实例
package client

import (
	"context"

	"stogram_server/internal/client/api"
	"stogram_server/internal/client/callsim"
	"stogram_server/internal/client/notify"
	"stogram_server/internal/client/realtime"
	"stogram_server/internal/client/session"
	"stogram_server/internal/client/sync"

	"go.uber.org/zap"
)

// App 一个完整的客户端实例
type App struct {
	Api    *api.Client
	Engine *sync.Engine
	Notify *notify.Center
	Store  *session.Store

	wsURL string
	conn  *realtime.Conn
	calls *callsim.Simulator
}

// New 创建客户端实例
// baseURL 为服务端地址，wsURL 为 WebSocket 地址，stateDir 为本地状态目录
func New(baseURL, wsURL, stateDir string) (*App, error) {
	store, err := session.NewStore(stateDir)
	if err != nil {
		return nil, err
	}
	apiCli := api.NewClient(baseURL)
	center := notify.NewCenter()
	return &App{
		Api:    apiCli,
		Engine: sync.NewEngine(apiCli, store, center),
		Notify: center,
		Store:  store,
		wsURL:  wsURL,
	}, nil
}

// Connect 建立实时连接并把事件流接入同步引擎
// 需在登录或会话恢复成功后调用
func (a *App) Connect(ctx context.Context) error {
	user := a.Engine.CurrentUser()
	if user == nil {
		return nil
	}
	conn, err := realtime.Dial(ctx, a.wsURL, user.Uuid)
	if err != nil {
		return err
	}
	a.conn = conn
	a.calls = callsim.NewSimulator(a.Api, user.Uuid)

	go func() {
		for event := range conn.Events() {
			a.Engine.HandleEvent(ctx, event.Kind, event.Payload)
		}
		zap.L().Info("realtime connection closed")
	}()
	return nil
}

// Calls 通话状态机，未连接时为 nil
func (a *App) Calls() *callsim.Simulator {
	return a.calls
}

// SelectChat 切换选中会话并同步房间归属
// 房间进出只针对已映射的会话；尚未互发消息的联系人没有会话，
// 选中不触发创建，会话留到首条消息发送时建立
func (a *App) SelectChat(ctx context.Context, key string) error {
	prev := a.Engine.SelectedKey()
	if prev != "" && a.conn != nil {
		if chatId := a.Engine.ChatIdFor(prev); chatId != "" {
			if err := a.conn.LeaveChat(chatId); err != nil {
				zap.L().Warn("leave chat room", zap.String("chat", chatId), zap.Error(err))
			}
		}
	}
	if err := a.Engine.Select(key); err != nil {
		return err
	}
	if key != "" && a.conn != nil {
		if chatId := a.Engine.ChatIdFor(key); chatId != "" {
			if err := a.conn.JoinChat(chatId); err != nil {
				zap.L().Warn("join chat room", zap.String("chat", chatId), zap.Error(err))
			}
		}
	}
	return nil
}

// Close 断开实时连接
func (a *App) Close() {
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			zap.L().Debug("close realtime connection", zap.Error(err))
		}
		a.conn = nil
	}
}
