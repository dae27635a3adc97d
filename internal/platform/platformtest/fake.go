// Package platformtest provides an in-memory platform.Client test double.
package platformtest

import (
	"context"
	"fmt"

	"github.com/filevault/botcore/internal/platform"
)

// Fake is a minimal in-memory platform.Client for tests.
type Fake struct {
	Chats    map[int64]platform.Chat
	Members  map[int64]map[int64]platform.Member
	Messages map[int64]map[int64]platform.Message
	Sent     []platform.Message
	Deleted  []int64
}

// New builds an empty Fake.
func New() *Fake {
	return &Fake{
		Chats:    make(map[int64]platform.Chat),
		Members:  make(map[int64]map[int64]platform.Member),
		Messages: make(map[int64]map[int64]platform.Message),
	}
}

func (f *Fake) GetMe(ctx context.Context) (platform.Chat, error) {
	return platform.Chat{ID: 0, Username: "bot"}, nil
}

func (f *Fake) GetChat(ctx context.Context, chatID int64) (platform.Chat, error) {
	c, ok := f.Chats[chatID]
	if !ok {
		return platform.Chat{}, fmt.Errorf("chat %d not found", chatID)
	}
	return c, nil
}

func (f *Fake) GetChatMember(ctx context.Context, chatID, userID int64) (platform.Member, error) {
	m, ok := f.Members[chatID][userID]
	if !ok {
		return platform.Member{UserID: userID, Status: platform.MemberStatusLeft}, nil
	}
	return m, nil
}

func (f *Fake) GetMessages(ctx context.Context, chatID int64, messageIDs []int64) ([]platform.Message, error) {
	out := make([]platform.Message, 0, len(messageIDs))
	for _, id := range messageIDs {
		if m, ok := f.Messages[chatID][id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *Fake) MessageIterator(ctx context.Context, chatID int64, fromID, toID int64) (platform.Iterator, error) {
	ids := make([]int64, 0, toID-fromID+1)
	for id := fromID; id <= toID; id++ {
		ids = append(ids, id)
	}
	return &fakeIterator{fake: f, chatID: chatID, ids: ids}, nil
}

func (f *Fake) SendCachedMedia(ctx context.Context, chatID int64, fileID string, caption string, protect bool) (platform.Message, error) {
	msg := platform.Message{ID: int64(len(f.Sent) + 1), ChatID: chatID, Caption: caption}
	f.Sent = append(f.Sent, msg)
	return msg, nil
}

func (f *Fake) Copy(ctx context.Context, toChatID int64, fromChatID int64, messageID int64, protect bool) (platform.Message, error) {
	msg := platform.Message{ID: int64(len(f.Sent) + 1), ChatID: toChatID}
	f.Sent = append(f.Sent, msg)
	return msg, nil
}

func (f *Fake) DeleteMessages(ctx context.Context, chatID int64, messageIDs []int64) error {
	f.Deleted = append(f.Deleted, messageIDs...)
	return nil
}

type fakeIterator struct {
	fake   *Fake
	chatID int64
	ids    []int64
	pos    int
}

func (it *fakeIterator) Next(ctx context.Context) (platform.Message, bool, error) {
	if it.pos >= len(it.ids) {
		return platform.Message{}, false, nil
	}
	id := it.ids[it.pos]
	it.pos++
	if m, ok := it.fake.Messages[it.chatID][id]; ok {
		return m, true, nil
	}
	return it.Next(ctx)
}

func (it *fakeIterator) Close() error { return nil }
