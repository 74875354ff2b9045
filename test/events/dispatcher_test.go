package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/events"
)

type sentFrame struct {
	userID string
	data   []byte
}

type mockPublisher struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, userID string, data []byte) error
	sent     chan sentFrame
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{sent: make(chan sentFrame, 16)}
}

func (m *mockPublisher) SendToUser(ctx context.Context, userID string, data []byte) error {
	m.mu.Lock()
	sendFunc := m.sendFunc
	m.mu.Unlock()

	if sendFunc != nil {
		if err := sendFunc(ctx, userID, data); err != nil {
			return err
		}
	}
	m.sent <- sentFrame{userID: userID, data: data}
	return nil
}

func (m *mockPublisher) setSendFunc(f func(ctx context.Context, userID string, data []byte) error) {
	m.mu.Lock()
	m.sendFunc = f
	m.mu.Unlock()
}

func waitForFrame(t *testing.T, publisher *mockPublisher) sentFrame {
	t.Helper()

	select {
	case frame := <-publisher.sent:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published frame")
		return sentFrame{}
	}
}

func TestDispatcher_DeliversUserUpdate(t *testing.T) {
	publisher := newMockPublisher()
	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())
	defer d.Stop(context.Background())

	username := "newuser"
	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-123", &username))

	frame := waitForFrame(t, publisher)
	if frame.userID != "user-123" {
		t.Errorf("expected frame for user-123, got %s", frame.userID)
	}

	var envelope events.Envelope
	if err := json.Unmarshal(frame.data, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if envelope.Type != events.TypeUserUpdate {
		t.Errorf("expected type %s, got %s", events.TypeUserUpdate, envelope.Type)
	}

	var payload map[string]any
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if payload["id"] != "user-123" {
		t.Errorf("expected payload id user-123, got %v", payload["id"])
	}

	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in payload, got %v", payload["data"])
	}
	if data["username"] != "newuser" {
		t.Errorf("expected username newuser in payload, got %v", data["username"])
	}
	if _, found := data["password"]; found {
		t.Error("expected no password field in published payload")
	}
}

func TestDispatcher_OmitsUsernameWhenUnchanged(t *testing.T) {
	publisher := newMockPublisher()
	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())
	defer d.Stop(context.Background())

	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-123", nil))

	frame := waitForFrame(t, publisher)

	var envelope events.Envelope
	if err := json.Unmarshal(frame.data, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in payload, got %v", payload["data"])
	}
	if _, found := data["username"]; found {
		t.Error("expected username omitted when unchanged")
	}
}

func TestDispatcher_PublishFailureDoesNotStopWorker(t *testing.T) {
	publisher := newMockPublisher()
	publisher.setSendFunc(func(ctx context.Context, userID string, data []byte) error {
		if userID == "user-offline" {
			return errors.New("receiver offline")
		}
		return nil
	})

	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())
	defer d.Stop(context.Background())

	username := "newuser"
	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-offline", &username))
	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-123", &username))

	frame := waitForFrame(t, publisher)
	if frame.userID != "user-123" {
		t.Errorf("expected worker to keep delivering after a failure, got frame for %s", frame.userID)
	}
}

func TestDispatcher_PublishPanicDoesNotStopWorker(t *testing.T) {
	publisher := newMockPublisher()
	publisher.setSendFunc(func(ctx context.Context, userID string, data []byte) error {
		if userID == "user-bad" {
			panic("transport torn down")
		}
		return nil
	})

	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())
	defer d.Stop(context.Background())

	username := "newuser"
	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-bad", &username))
	d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-123", &username))

	frame := waitForFrame(t, publisher)
	if frame.userID != "user-123" {
		t.Errorf("expected worker to survive a publish panic, got frame for %s", frame.userID)
	}
}

func TestDispatcher_StopFlushesQueue(t *testing.T) {
	publisher := newMockPublisher()
	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())

	username := "newuser"
	for i := 0; i < 5; i++ {
		d.NotifyUserUpdate(context.Background(), events.NewUserUpdateEvent("user-123", &username))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Stop(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if got := len(publisher.sent); got != 5 {
		t.Errorf("expected 5 frames flushed before stop, got %d", got)
	}
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	publisher := newMockPublisher()
	d := events.NewDispatcher(publisher, 16, time.Second, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Stop(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("expected repeated stop to succeed, got %v", err)
	}
}
