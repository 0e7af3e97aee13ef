// Package callsim 实现模拟通话信令
// 状态迁移由本地定时器和随机数驱动，不做真实的媒体协商；
// 通话记录尽力写入服务端，写入失败时本地合成 id 继续
package callsim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/pkg/constants"
	"stogram_server/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State 通话状态
type State int8

const (
	StateIdle      State = 0 // 空闲
	StateCalling   State = 1 // 呼出准备中
	StateRinging   State = 2 // 响铃中
	StateConnected State = 3 // 通话中
	StateEnded     State = 4 // 已结束
)

// Reason 结束原因
type Reason int8

const (
	ReasonNone     Reason = 0
	ReasonHangup   Reason = 1 // 本端挂断
	ReasonDeclined Reason = 2 // 对端拒绝
	ReasonTimeout  Reason = 3 // 响铃超时
)

// 呼出侧模拟参数：1 秒后进入响铃，约七成概率在 5~15 秒内被接听
const (
	ringDelay       = 1 * time.Second
	pickupChance    = 0.7
	pickupDelayMin  = 5 * time.Second
	pickupDelaySpan = 10 * time.Second
)

// Update 状态变更通知
type Update struct {
	CallId string
	PeerId string
	State  State
	Reason Reason
}

// Backend 通话记录的服务端操作
type Backend interface {
	InitiateCall(ctx context.Context, req request.InitiateCallRequest) (*respond.CallRespond, error)
	AcceptCall(ctx context.Context, callId string) (*respond.CallRespond, error)
	DeclineCall(ctx context.Context, callId string) (*respond.CallRespond, error)
	EndCall(ctx context.Context, callId string) (*respond.CallRespond, error)
}

// activeCall 进行中的一次通话
type activeCall struct {
	id       string
	peerId   string
	callType int8
	state    State
	incoming bool
	cancels  []func()
}

// Simulator 通话状态机
// 同一时刻至多一次通话；定时器回调校验通话 id 后才生效，
// 挂断后迟到的回调被忽略
type Simulator struct {
	mu      sync.Mutex
	backend Backend
	userId  string

	call *activeCall

	nextId uint64
	subs   map[uint64]chan Update

	// 可注入的随机数与定时器，默认使用真实实现
	randFloat func() float64
	schedule  func(d time.Duration, f func()) (cancel func())
}

// NewSimulator 创建通话状态机
func NewSimulator(backend Backend, userId string) *Simulator {
	return &Simulator{
		backend:   backend,
		userId:    userId,
		subs:      make(map[uint64]chan Update),
		randFloat: rand.Float64,
		schedule: func(d time.Duration, f func()) func() {
			timer := time.AfterFunc(d, f)
			return func() { timer.Stop() }
		},
	}
}

// Subscribe 订阅状态变更
// 返回接收通道和取消函数，取消后通道会被关闭
func (s *Simulator) Subscribe(buf int) (<-chan Update, func()) {
	ch := make(chan Update, buf)

	s.mu.Lock()
	s.nextId++
	id := s.nextId
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// publishLocked 广播状态变更，调用方需持锁
func (s *Simulator) publishLocked(update Update) {
	for _, ch := range s.subs {
		select {
		case ch <- update:
		default:
			zap.L().Warn("callsim subscriber channel full, update dropped",
				zap.String("call", update.CallId))
		}
	}
}

// State 当前通话状态快照
func (s *Simulator) State() (callId string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil {
		return "", StateIdle
	}
	return s.call.id, s.call.state
}

// StartOutgoing 发起呼出
// 服务端写入失败时本地合成 id，信令流程照常进行
func (s *Simulator) StartOutgoing(ctx context.Context, receiverId string, callType int8) (string, error) {
	s.mu.Lock()
	if s.call != nil && s.call.state != StateEnded {
		s.mu.Unlock()
		return "", errorx.New(errorx.CodeInvalidParam, "已有进行中的通话")
	}
	s.mu.Unlock()

	callId := ""
	rsp, err := s.backend.InitiateCall(ctx, request.InitiateCallRequest{
		CallerId:   s.userId,
		ReceiverId: receiverId,
		Type:       callType,
	})
	if err != nil {
		callId = "local_" + uuid.NewString()
		zap.L().Warn("initiate call fallback to local id",
			zap.String("call", callId), zap.Error(err))
	} else {
		callId = rsp.Uuid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.call = &activeCall{
		id:       callId,
		peerId:   receiverId,
		callType: callType,
		state:    StateCalling,
	}
	s.publishLocked(Update{CallId: callId, PeerId: receiverId, State: StateCalling})

	s.call.cancels = append(s.call.cancels, s.schedule(ringDelay, func() {
		s.enterRinging(callId)
	}))
	return callId, nil
}

// enterRinging 呼出进入响铃，并安排模拟接听与超时
func (s *Simulator) enterRinging(callId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || s.call.id != callId || s.call.state != StateCalling {
		return
	}
	s.call.state = StateRinging
	s.publishLocked(Update{CallId: callId, PeerId: s.call.peerId, State: StateRinging})

	if s.randFloat() < pickupChance {
		delay := pickupDelayMin + time.Duration(s.randFloat()*float64(pickupDelaySpan))
		s.call.cancels = append(s.call.cancels, s.schedule(delay, func() {
			s.simulatePickup(callId)
		}))
	}
	s.call.cancels = append(s.call.cancels, s.schedule(constants.CALL_RING_TIMEOUT, func() {
		s.timeout(callId)
	}))
}

// simulatePickup 模拟对端接听
func (s *Simulator) simulatePickup(callId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || s.call.id != callId || s.call.state != StateRinging {
		return
	}
	s.call.state = StateConnected
	s.publishLocked(Update{CallId: callId, PeerId: s.call.peerId, State: StateConnected})
	s.persist(callId, s.backend.AcceptCall)
}

// timeout 响铃超时
func (s *Simulator) timeout(callId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || s.call.id != callId || s.call.state != StateRinging {
		return
	}
	s.endLocked(ReasonTimeout)
	s.persist(callId, s.backend.EndCall)
}

// HandleIncoming 来电进入响铃
// callId 由服务端事件携带
func (s *Simulator) HandleIncoming(callId, callerId string, callType int8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call != nil && s.call.state != StateEnded {
		return errorx.New(errorx.CodeInvalidParam, "已有进行中的通话")
	}
	s.call = &activeCall{
		id:       callId,
		peerId:   callerId,
		callType: callType,
		state:    StateRinging,
		incoming: true,
	}
	s.publishLocked(Update{CallId: callId, PeerId: callerId, State: StateRinging})

	s.call.cancels = append(s.call.cancels, s.schedule(constants.CALL_RING_TIMEOUT, func() {
		s.timeout(callId)
	}))
	return nil
}

// Accept 接听来电
func (s *Simulator) Accept(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || !s.call.incoming || s.call.state != StateRinging {
		return errorx.New(errorx.CodeInvalidParam, "没有待接听的来电")
	}
	s.call.state = StateConnected
	s.cancelTimersLocked()
	s.publishLocked(Update{CallId: s.call.id, PeerId: s.call.peerId, State: StateConnected})
	s.persist(s.call.id, s.backend.AcceptCall)
	return nil
}

// Decline 拒绝来电
func (s *Simulator) Decline(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || !s.call.incoming || s.call.state != StateRinging {
		return errorx.New(errorx.CodeInvalidParam, "没有待接听的来电")
	}
	callId := s.call.id
	s.endLocked(ReasonDeclined)
	s.persist(callId, s.backend.DeclineCall)
	return nil
}

// HangUp 挂断当前通话
func (s *Simulator) HangUp(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil || s.call.state == StateEnded {
		return errorx.New(errorx.CodeInvalidParam, "没有进行中的通话")
	}
	callId := s.call.id
	s.endLocked(ReasonHangup)
	s.persist(callId, s.backend.EndCall)
	return nil
}

// endLocked 迁移到结束态并取消未触发的定时器，调用方需持锁
func (s *Simulator) endLocked(reason Reason) {
	s.cancelTimersLocked()
	s.call.state = StateEnded
	s.publishLocked(Update{
		CallId: s.call.id,
		PeerId: s.call.peerId,
		State:  StateEnded,
		Reason: reason,
	})
}

func (s *Simulator) cancelTimersLocked() {
	for _, cancel := range s.call.cancels {
		cancel()
	}
	s.call.cancels = nil
}

// persist 尽力把状态迁移写入服务端
// 本地合成 id 的通话不回写；失败只记日志
func (s *Simulator) persist(callId string, op func(context.Context, string) (*respond.CallRespond, error)) {
	if len(callId) > 6 && callId[:6] == "local_" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := op(ctx, callId); err != nil {
			zap.L().Warn("persist call transition", zap.String("call", callId), zap.Error(err))
		}
	}()
}
