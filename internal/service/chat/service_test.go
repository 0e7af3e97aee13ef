package chat

import (
	"testing"

	"stogram_server/internal/dao/mysql/repository"
	"stogram_server/internal/feed"
	"stogram_server/internal/model"
	"stogram_server/pkg/errorx"

	"gorm.io/gorm"
)

// stubChatRepo 内存会话仓储
type stubChatRepo struct {
	chats        map[string]*model.Chat // pairKey -> chat
	participants map[string][]string
	// createErr 模拟并发创建撞唯一键；raceChat 为竞争对方已落库的会话
	createErr error
	raceChat  *model.Chat
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		chats:        make(map[string]*model.Chat),
		participants: make(map[string][]string),
	}
}

func (r *stubChatRepo) FindByUuid(uuid string) (*model.Chat, error) {
	for _, chat := range r.chats {
		if chat.Uuid == uuid {
			return chat, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *stubChatRepo) FindByPairKey(pairKey string) (*model.Chat, error) {
	if chat, ok := r.chats[pairKey]; ok {
		return chat, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *stubChatRepo) FindByGroupId(groupId string) (*model.Chat, error) {
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *stubChatRepo) FindByUserId(userId string) ([]model.Chat, error) { return nil, nil }

func (r *stubChatRepo) Create(chat *model.Chat) error {
	if r.createErr != nil {
		if r.raceChat != nil && r.raceChat.PairKey != nil {
			r.chats[*r.raceChat.PairKey] = r.raceChat
		}
		return r.createErr
	}
	if chat.PairKey != nil {
		r.chats[*chat.PairKey] = chat
	}
	return nil
}

func (r *stubChatRepo) AddParticipant(chatId, userId string) error {
	r.participants[chatId] = append(r.participants[chatId], userId)
	return nil
}

func (r *stubChatRepo) RemoveParticipant(chatId, userId string) error { return nil }

func (r *stubChatRepo) FindParticipantIds(chatId string) ([]string, error) {
	return r.participants[chatId], nil
}

func (r *stubChatRepo) IsParticipant(chatId, userId string) (bool, error) { return false, nil }

func (r *stubChatRepo) Delete(chatId string) error { return nil }

func newTestService(repo *stubChatRepo) (*Service, *feed.Bus) {
	bus := feed.NewBus()
	return NewChatService(&repository.Repositories{Chat: repo}, bus), bus
}

func TestGetOrCreatePrivateChatPublishesChatCreated(t *testing.T) {
	svc, bus := newTestService(newStubChatRepo())
	eventsA, unsubA := bus.Subscribe("U_a", 1)
	defer unsubA()
	eventsB, unsubB := bus.Subscribe("U_b", 1)
	defer unsubB()

	chatId, err := svc.GetOrCreatePrivateChat("U_a", "U_b")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if chatId == "" {
		t.Fatal("empty chat id")
	}

	for name, events := range map[string]<-chan feed.Event{"U_a": eventsA, "U_b": eventsB} {
		select {
		case event := <-events:
			if event.Kind != feed.EventChatCreated || event.ChatId != chatId {
				t.Fatalf("%s received %+v, want chat_created for %s", name, event, chatId)
			}
		default:
			t.Fatalf("%s did not receive chat_created", name)
		}
	}
}

func TestGetOrCreatePrivateChatReuseSkipsEvent(t *testing.T) {
	svc, bus := newTestService(newStubChatRepo())

	first, err := svc.GetOrCreatePrivateChat("U_a", "U_b")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	events, unsub := bus.Subscribe("U_a", 1)
	defer unsub()

	second, err := svc.GetOrCreatePrivateChat("U_a", "U_b")
	if err != nil {
		t.Fatalf("reuse: %v", err)
	}
	if second != first {
		t.Fatalf("reuse returned %q, want %q", second, first)
	}
	select {
	case event := <-events:
		t.Fatalf("reuse published event: %+v", event)
	default:
	}
}

func TestGetOrCreatePrivateChatDuplicateKeyReuses(t *testing.T) {
	pairKey := model.PrivatePairKey("U_a", "U_b")
	repo := newStubChatRepo()
	repo.createErr = gorm.ErrDuplicatedKey
	repo.raceChat = &model.Chat{Uuid: "C_winner", Type: model.ChatTypePrivate, PairKey: &pairKey}
	svc, bus := newTestService(repo)

	events, unsub := bus.Subscribe("U_a", 1)
	defer unsub()

	chatId, err := svc.GetOrCreatePrivateChat("U_a", "U_b")
	if err != nil {
		t.Fatalf("create under contention: %v", err)
	}
	if chatId != "C_winner" {
		t.Fatalf("chat id = %q, want the already-persisted C_winner", chatId)
	}
	// 竞争失败方复用会话，不重复推送
	select {
	case event := <-events:
		t.Fatalf("loser published event: %+v", event)
	default:
	}
}
