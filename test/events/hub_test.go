package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/driftchat/backend/internal/common/constants"
	commonerrors "github.com/driftchat/backend/internal/common/errors"
	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/events/websocket"
)

func waitOnline(t *testing.T, hub *websocket.Hub, userID string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.IsUserOnline(userID) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client never registered")
}

func TestHub_SendToUser_NotConnected(t *testing.T) {
	hub := websocket.NewHub(logger.NewNop(), time.Second)

	err := hub.SendToUser(context.Background(), "user-123", []byte(`{}`))
	if !errors.Is(err, commonerrors.ErrUserNotConnected) {
		t.Errorf("expected ErrUserNotConnected, got %v", err)
	}
}

func TestHub_IsUserOnline_NoClients(t *testing.T) {
	hub := websocket.NewHub(logger.NewNop(), time.Second)

	if hub.IsUserOnline("user-123") {
		t.Error("expected no users online on a fresh hub")
	}
}

func fillSendBuffer(t *testing.T, hub *websocket.Hub, userID string) {
	t.Helper()

	for i := 0; i < constants.WebSocketSendBufSize; i++ {
		if err := hub.SendToUser(context.Background(), userID, []byte(`{}`)); err != nil {
			t.Fatalf("expected buffered send %d to succeed, got %v", i, err)
		}
	}
}

func TestHub_SendToUser_DisconnectWhileSenderBlocked(t *testing.T) {
	hub := websocket.NewHub(logger.NewNop(), 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := websocket.NewClient(hub, nil, "user-123", logger.NewNop())
	hub.Register(client)
	waitOnline(t, hub, "user-123")

	fillSendBuffer(t, hub, "user-123")

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("send panicked: %v", r)
			}
		}()
		result <- hub.SendToUser(context.Background(), "user-123", []byte(`{}`))
	}()

	time.Sleep(20 * time.Millisecond)
	hub.Unregister(client)

	select {
	case err := <-result:
		if !errors.Is(err, commonerrors.ErrUserNotConnected) {
			t.Fatalf("expected ErrUserNotConnected after disconnect, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked send never returned after disconnect")
	}
}

func TestHub_SendToUser_TimeoutWhenBufferFull(t *testing.T) {
	hub := websocket.NewHub(logger.NewNop(), 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := websocket.NewClient(hub, nil, "user-123", logger.NewNop())
	hub.Register(client)
	waitOnline(t, hub, "user-123")

	fillSendBuffer(t, hub, "user-123")

	err := hub.SendToUser(context.Background(), "user-123", []byte(`{}`))
	if !errors.Is(err, commonerrors.ErrSendTimeout) {
		t.Fatalf("expected ErrSendTimeout on a full buffer, got %v", err)
	}
}
