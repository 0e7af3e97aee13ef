package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stogram_server/internal/feed"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// newWsServer 启动一个回显控制帧并可主动下发事件的测试服务端
func newWsServer(t *testing.T, handle func(conn *websocket.Conn, clientId string)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn, r.URL.Query().Get("client_id"))
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestDialSendsClientId(t *testing.T) {
	gotId := make(chan string, 1)
	wsURL := newWsServer(t, func(conn *websocket.Conn, clientId string) {
		gotId <- clientId
		_, _, _ = conn.ReadMessage()
	})

	conn, err := Dial(context.Background(), wsURL, "U_1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case id := <-gotId:
		if id != "U_1" {
			t.Fatalf("client_id = %q, want U_1", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive connection")
	}
}

func TestJoinLeaveFrames(t *testing.T) {
	frames := make(chan outboundFrame, 2)
	wsURL := newWsServer(t, func(conn *websocket.Conn, _ string) {
		for i := 0; i < 2; i++ {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame outboundFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				t.Errorf("unmarshal frame: %v", err)
				return
			}
			frames <- frame
		}
	})

	conn, err := Dial(context.Background(), wsURL, "U_1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.JoinChat("C_1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := conn.LeaveChat("C_1"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	for _, want := range []string{"join_chat", "leave_chat"} {
		select {
		case frame := <-frames:
			if frame.Type != want || frame.ChatId != "C_1" {
				t.Fatalf("frame = %+v, want type %s", frame, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("missing %s frame", want)
		}
	}
}

func TestEventsDelivered(t *testing.T) {
	wsURL := newWsServer(t, func(conn *websocket.Conn, _ string) {
		payload, _ := json.Marshal(feed.Event{
			Kind:    feed.EventNewMessage,
			ChatId:  "C_1",
			Payload: map[string]string{"content": "hi"},
		})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			t.Errorf("write: %v", err)
		}
		_, _, _ = conn.ReadMessage()
	})

	conn, err := Dial(context.Background(), wsURL, "U_1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case event := <-conn.Events():
		if event.Kind != feed.EventNewMessage || event.ChatId != "C_1" {
			t.Fatalf("event = %+v", event)
		}
		var data map[string]string
		if err := json.Unmarshal(event.Payload, &data); err != nil || data["content"] != "hi" {
			t.Fatalf("payload = %s", event.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventsChannelClosedOnDisconnect(t *testing.T) {
	wsURL := newWsServer(t, func(conn *websocket.Conn, _ string) {
		// 立即关闭，客户端事件通道应随之关闭
	})

	conn, err := Dial(context.Background(), wsURL, "U_1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case _, ok := <-conn.Events():
		if ok {
			t.Fatal("expected closed events channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after server disconnect")
	}
}
