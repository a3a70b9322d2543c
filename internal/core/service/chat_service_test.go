package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

func chatMsg(id, convID, body string, at time.Time) domain.ChatMessage {
	return domain.ChatMessage{ID: id, ConversationID: convID, SenderID: "u1", SenderRole: "user", Body: body, SentAt: at}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestChatService_Open_PollsAndCaches(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, 10*time.Millisecond, discardLogger)
	defer svc.Stop()

	now := time.Now().UTC()
	backend.chatMessagesFn = func(_, convID, sinceID string) ([]domain.ChatMessage, error) {
		if sinceID != "" {
			return nil, nil
		}
		return []domain.ChatMessage{chatMsg("m1", convID, "hello", now)}, nil
	}

	svc.Open("conv1", "cred-abc")

	waitFor(t, time.Second, func() bool {
		msgs, _ := repo.Messages(context.Background(), "conv1", 0)
		return len(msgs) == 1
	})

	msgs, err := svc.Messages(context.Background(), "conv1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs[0].Body != "hello" {
		t.Errorf("expected cached message body hello, got %q", msgs[0].Body)
	}
}

func TestChatService_Poll_FetchesOnlyNewerMessages(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, 10*time.Millisecond, discardLogger)
	defer svc.Stop()

	now := time.Now().UTC()
	_ = repo.Upsert(context.Background(), []domain.ChatMessage{chatMsg("m1", "conv1", "old", now)})

	var sawSince atomic.Value
	backend.chatMessagesFn = func(_, convID, sinceID string) ([]domain.ChatMessage, error) {
		sawSince.Store(sinceID)
		return nil, nil
	}

	svc.Open("conv1", "cred-abc")

	waitFor(t, time.Second, func() bool {
		v, ok := sawSince.Load().(string)
		return ok && v == "m1"
	})
}

func TestChatService_Close_StopsPolling(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, 10*time.Millisecond, discardLogger)
	defer svc.Stop()

	var polls atomic.Int32
	backend.chatMessagesFn = func(_, _, _ string) ([]domain.ChatMessage, error) {
		polls.Add(1)
		return nil, nil
	}

	svc.Open("conv1", "cred-abc")
	waitFor(t, time.Second, func() bool { return polls.Load() >= 1 })

	svc.Close("conv1")
	settled := polls.Load()
	time.Sleep(50 * time.Millisecond)
	// One in-flight tick may land after close; the counter must not keep
	// growing.
	if polls.Load() > settled+1 {
		t.Errorf("poller still running after close: %d polls after settle", polls.Load()-settled)
	}
}

func TestChatService_Close_LastWatcherWins(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, time.Hour, discardLogger)
	defer svc.Stop()

	svc.Open("conv1", "cred-a")
	svc.Open("conv1", "cred-b")

	svc.Close("conv1")
	svc.mu.Lock()
	_, stillOpen := svc.pollers["conv1"]
	svc.mu.Unlock()
	if !stillOpen {
		t.Fatal("poller stopped while a watcher remains")
	}

	svc.Close("conv1")
	svc.mu.Lock()
	_, stillOpen = svc.pollers["conv1"]
	svc.mu.Unlock()
	if stillOpen {
		t.Fatal("poller must stop when the last watcher leaves")
	}
}

func TestChatService_Send_CachesImmediately(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, time.Hour, discardLogger)
	defer svc.Stop()

	now := time.Now().UTC()
	backend.sendChatMessageFn = func(_, convID, body string) (*domain.ChatMessage, error) {
		return &domain.ChatMessage{ID: "m9", ConversationID: convID, Body: body, SentAt: now}, nil
	}

	msg, err := svc.Send(context.Background(), "cred-abc", "conv1", "hi there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != "m9" {
		t.Errorf("expected upstream message relayed, got %+v", msg)
	}

	cached, _ := repo.Messages(context.Background(), "conv1", 0)
	if len(cached) != 1 || cached[0].Body != "hi there" {
		t.Errorf("sent message not cached: %+v", cached)
	}
}

func TestChatService_Stop_CancelsAllPollers(t *testing.T) {
	backend := &stubBackend{}
	repo := newStubChatRepo()
	svc := NewChatService(backend, repo, 10*time.Millisecond, discardLogger)

	var polls atomic.Int32
	backend.chatMessagesFn = func(_, _, _ string) ([]domain.ChatMessage, error) {
		polls.Add(1)
		return nil, nil
	}

	svc.Open("conv1", "cred-a")
	svc.Open("conv2", "cred-b")
	waitFor(t, time.Second, func() bool { return polls.Load() >= 2 })

	svc.Stop()
	settled := polls.Load()
	time.Sleep(50 * time.Millisecond)
	if polls.Load() > settled+2 {
		t.Errorf("pollers still running after stop")
	}
}
