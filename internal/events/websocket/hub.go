package websocket

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	commonerrors "github.com/driftchat/backend/internal/common/errors"
	"github.com/driftchat/backend/internal/common/logger"
)

// Hub routes event frames to connected subscribers, one connection per user.
// It carries no message semantics of its own; whatever the dispatcher hands
// it is forwarded verbatim.
type Hub struct {
	clients     sync.Map
	register    chan *Client
	unregister  chan *Client
	clientCount atomic.Int64
	sendTimeout time.Duration
	log         *logger.Logger
}

func NewHub(log *logger.Logger, sendTimeout time.Duration) *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		sendTimeout: sendTimeout,
		log:         log,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			if existing, ok := h.clients.Load(client.userID); ok {
				existingClient := existing.(*Client)
				h.log.WithFields(ctx, logger.Fields{
					"user_id": existingClient.userID,
					"action":  "ws_close_existing",
				}).Info("websocket closing existing connection")
				existingClient.close()
				h.clients.Delete(client.userID)
				h.clientCount.Add(-1)
			}
			h.clients.Store(client.userID, client)
			total := h.clientCount.Add(1)
			h.log.WithFields(ctx, logger.Fields{
				"user_id": client.userID,
				"total":   total,
				"action":  "ws_register",
			}).Info("websocket client registered")

		case client := <-h.unregister:
			if existing, ok := h.clients.Load(client.userID); ok && existing.(*Client) == client {
				h.clients.Delete(client.userID)
				client.close()
				total := h.clientCount.Add(-1)
				h.log.WithFields(ctx, logger.Fields{
					"user_id": client.userID,
					"total":   total,
					"action":  "ws_unregister",
				}).Info("websocket client unregistered")
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.clients.Range(func(key, value interface{}) bool {
		client := value.(*Client)
		client.close()
		h.clients.Delete(key)
		return true
	})

	h.log.Info("websocket hub shutdown completed")
}

func (h *Hub) IsUserOnline(userID string) bool {
	_, ok := h.clients.Load(userID)
	return ok
}

// SendToUser delivers a frame to the user's connection, if any.
func (h *Hub) SendToUser(ctx context.Context, userID string, data []byte) error {
	value, ok := h.clients.Load(userID)
	if !ok {
		return fmt.Errorf("user %s not connected: %w", userID, commonerrors.ErrUserNotConnected)
	}

	client := value.(*Client)

	sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()

	select {
	case client.send <- data:
		return nil
	case <-client.done:
		return fmt.Errorf("user %s disconnected: %w", userID, commonerrors.ErrUserNotConnected)
	case <-sendCtx.Done():
		h.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "ws_send_timeout",
		}).Warn("websocket send timed out")
		return fmt.Errorf("send to user %s: %w", userID, commonerrors.ErrSendTimeout)
	}
}
