package callsim

import (
	"context"
	"sync"
	"testing"
	"time"

	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
)

// fakeScheduler 手动触发的定时器，替代真实时钟
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (fs *fakeScheduler) schedule(d time.Duration, f func()) func() {
	fs.mu.Lock()
	task := &fakeTask{delay: d, fn: f}
	fs.tasks = append(fs.tasks, task)
	fs.mu.Unlock()
	return func() {
		fs.mu.Lock()
		task.cancelled = true
		fs.mu.Unlock()
	}
}

// fire 触发第 i 个已注册且未取消的定时器
func (fs *fakeScheduler) fire(t *testing.T, i int) {
	t.Helper()
	fs.mu.Lock()
	if i >= len(fs.tasks) {
		fs.mu.Unlock()
		t.Fatalf("no scheduled task %d (have %d)", i, len(fs.tasks))
	}
	task := fs.tasks[i]
	if task.cancelled || task.fired {
		fs.mu.Unlock()
		return
	}
	task.fired = true
	fn := task.fn
	fs.mu.Unlock()
	fn()
}

type stubCallBackend struct {
	mu        sync.Mutex
	initiated []request.InitiateCallRequest
	failInit  bool
}

func (b *stubCallBackend) InitiateCall(ctx context.Context, req request.InitiateCallRequest) (*respond.CallRespond, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failInit {
		return nil, context.DeadlineExceeded
	}
	b.initiated = append(b.initiated, req)
	return &respond.CallRespond{Uuid: "CALL_1", CallerId: req.CallerId, ReceiverId: req.ReceiverId}, nil
}

func (b *stubCallBackend) AcceptCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	return &respond.CallRespond{Uuid: callId}, nil
}

func (b *stubCallBackend) DeclineCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	return &respond.CallRespond{Uuid: callId}, nil
}

func (b *stubCallBackend) EndCall(ctx context.Context, callId string) (*respond.CallRespond, error) {
	return &respond.CallRespond{Uuid: callId}, nil
}

func newTestSimulator(randValues ...float64) (*Simulator, *fakeScheduler, *stubCallBackend) {
	backend := &stubCallBackend{}
	sim := NewSimulator(backend, "U_me")
	sched := &fakeScheduler{}
	sim.schedule = sched.schedule
	idx := 0
	sim.randFloat = func() float64 {
		v := randValues[idx%len(randValues)]
		idx++
		return v
	}
	return sim, sched, backend
}

func collectStates(updates <-chan Update) []State {
	var states []State
	for {
		select {
		case u := <-updates:
			states = append(states, u.State)
		default:
			return states
		}
	}
}

func TestOutgoingPickupPath(t *testing.T) {
	// 第一次随机数决定接听（< 0.7），第二次决定接听延迟
	sim, sched, _ := newTestSimulator(0.5, 0.3)
	updates, unsub := sim.Subscribe(8)
	defer unsub()

	callId, err := sim.StartOutgoing(context.Background(), "U_peer", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if callId != "CALL_1" {
		t.Fatalf("call id = %q, want CALL_1", callId)
	}

	sched.fire(t, 0) // 响铃
	sched.fire(t, 1) // 模拟接听

	states := collectStates(updates)
	want := []State{StateCalling, StateRinging, StateConnected}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestOutgoingRingTimeout(t *testing.T) {
	// 随机数 ≥ 0.7：无人接听，只剩超时定时器
	sim, sched, _ := newTestSimulator(0.9)
	updates, unsub := sim.Subscribe(8)
	defer unsub()

	if _, err := sim.StartOutgoing(context.Background(), "U_peer", 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.fire(t, 0) // 响铃
	sched.fire(t, 1) // 超时

	states := collectStates(updates)
	if len(states) == 0 || states[len(states)-1] != StateEnded {
		t.Fatalf("states = %v, want trailing ended", states)
	}
	if _, state := sim.State(); state != StateEnded {
		t.Fatalf("final state = %v, want ended", state)
	}
}

func TestInitiateFallbackToLocalId(t *testing.T) {
	sim, _, backend := newTestSimulator(0.9)
	backend.failInit = true

	callId, err := sim.StartOutgoing(context.Background(), "U_peer", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(callId) <= 6 || callId[:6] != "local_" {
		t.Fatalf("call id = %q, want local_ prefix", callId)
	}
}

func TestHangUpCancelsTimers(t *testing.T) {
	sim, sched, _ := newTestSimulator(0.5, 0.5)
	updates, unsub := sim.Subscribe(8)
	defer unsub()

	if _, err := sim.StartOutgoing(context.Background(), "U_peer", 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.fire(t, 0) // 响铃

	if err := sim.HangUp(context.Background()); err != nil {
		t.Fatalf("hang up: %v", err)
	}
	// 挂断后已取消的接听定时器不再生效
	sched.fire(t, 1)
	sched.fire(t, 2)

	states := collectStates(updates)
	if states[len(states)-1] != StateEnded {
		t.Fatalf("states = %v, want trailing ended", states)
	}
	for _, s := range states {
		if s == StateConnected {
			t.Fatalf("cancelled pickup still fired: %v", states)
		}
	}
}

func TestIncomingAccept(t *testing.T) {
	sim, _, _ := newTestSimulator(0.5)
	updates, unsub := sim.Subscribe(8)
	defer unsub()

	if err := sim.HandleIncoming("CALL_9", "U_peer", 0); err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if err := sim.Accept(context.Background()); err != nil {
		t.Fatalf("accept: %v", err)
	}

	states := collectStates(updates)
	want := []State{StateRinging, StateConnected}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestIncomingDecline(t *testing.T) {
	sim, _, _ := newTestSimulator(0.5)
	updates, unsub := sim.Subscribe(8)
	defer unsub()

	if err := sim.HandleIncoming("CALL_9", "U_peer", 0); err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if err := sim.Decline(context.Background()); err != nil {
		t.Fatalf("decline: %v", err)
	}

	states := collectStates(updates)
	if states[len(states)-1] != StateEnded {
		t.Fatalf("states = %v, want trailing ended", states)
	}
	if _, state := sim.State(); state != StateEnded {
		t.Fatalf("state = %v, want ended", state)
	}
}

func TestSecondCallRejectedWhileActive(t *testing.T) {
	sim, _, _ := newTestSimulator(0.9)
	if _, err := sim.StartOutgoing(context.Background(), "U_peer", 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sim.StartOutgoing(context.Background(), "U_other", 0); err == nil {
		t.Fatal("expected rejection of concurrent call")
	}
}
