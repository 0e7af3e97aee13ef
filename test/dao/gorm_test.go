//go:build integration
// +build integration

// 数据访问层集成测试，依赖本地 MySQL：
//
//	go test -tags integration ./test/dao/
package dao

import (
	"testing"

	dao "stogram_server/internal/dao/mysql"
	"stogram_server/internal/model"
	"stogram_server/pkg/util/random"
	"stogram_server/pkg/util/snowflake"
)

func TestUserCreateAndFind(t *testing.T) {
	repos := dao.Init()

	login := "it_" + random.GetNowAndLenRandomString(11)
	user := &model.UserInfo{
		Uuid:     "U" + random.GetNowAndLenRandomString(11),
		Login:    login,
		Nickname: "集成测试用户",
		Password: "$2a$10$abcdefghijklmnopqrstuv",
	}
	if err := repos.User.Create(user); err != nil {
		t.Fatal(err)
	}

	found, err := repos.User.FindByLogin(login)
	if err != nil {
		t.Fatal(err)
	}
	if found.Uuid != user.Uuid {
		t.Fatalf("uuid mismatch: %s vs %s", found.Uuid, user.Uuid)
	}
}

func TestPrivateChatPairKeyUnique(t *testing.T) {
	repos := dao.Init()

	u1 := "U" + random.GetNowAndLenRandomString(11)
	u2 := "U" + random.GetNowAndLenRandomString(11)
	pairKey := model.PrivatePairKey(u1, u2)

	first := &model.Chat{
		Uuid:    "C" + random.GetNowAndLenRandomString(11),
		Type:    model.ChatTypePrivate,
		PairKey: &pairKey,
	}
	if err := repos.Chat.Create(first); err != nil {
		t.Fatal(err)
	}

	// 同一对用户的第二次创建应撞唯一索引
	second := &model.Chat{
		Uuid:    "C" + random.GetNowAndLenRandomString(11),
		Type:    model.ChatTypePrivate,
		PairKey: &pairKey,
	}
	if err := repos.Chat.Create(second); err == nil {
		t.Fatal("expected duplicate key error for same pair key")
	}

	// 竞争失败方按 pair_key 复用已有会话
	existing, err := repos.Chat.FindByPairKey(pairKey)
	if err != nil {
		t.Fatal(err)
	}
	if existing.Uuid != first.Uuid {
		t.Fatalf("pair key resolved to %s, want %s", existing.Uuid, first.Uuid)
	}
}

// 群会话不带 pair_key（NULL），唯一索引不能把第二个群会话挡掉
func TestGroupChatsAllowMissingPairKey(t *testing.T) {
	repos := dao.Init()

	for i := 0; i < 2; i++ {
		chat := &model.Chat{
			Uuid:    "C" + random.GetNowAndLenRandomString(11),
			Type:    model.ChatTypeGroup,
			GroupId: "G" + random.GetNowAndLenRandomString(11),
		}
		if err := repos.Chat.Create(chat); err != nil {
			t.Fatalf("group chat %d: %v", i+1, err)
		}
	}
}

func TestMessageLastByChatId(t *testing.T) {
	repos := dao.Init()
	snowflake.Init(1)

	chatId := "C" + random.GetNowAndLenRandomString(11)
	sender := "U" + random.GetNowAndLenRandomString(11)
	for _, content := range []string{"第一条", "第二条", "第三条"} {
		msg := &model.Message{
			Uuid:    snowflake.GenerateID(),
			ChatId:  chatId,
			SendId:  sender,
			Type:    model.MessageTypeText,
			Content: content,
		}
		if err := repos.Message.Create(msg); err != nil {
			t.Fatal(err)
		}
	}

	last, err := repos.Message.FindLastByChatId(chatId)
	if err != nil {
		t.Fatal(err)
	}
	if last.Content != "第三条" {
		t.Fatalf("last message = %q, want 第三条", last.Content)
	}

	history, err := repos.Message.FindByChatId(chatId, 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || history[0].Content != "第一条" {
		t.Fatalf("unexpected history: %+v", history)
	}
}
