package websocket

import (
	"net/http"
	"sync"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/driftchat/backend/internal/common/constants"
	"github.com/driftchat/backend/internal/common/jwtverify"
	"github.com/driftchat/backend/internal/common/logger"
)

type Client struct {
	hub       *Hub
	conn      *gorillaWS.Conn
	userID    string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, userID string, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, constants.WebSocketSendBufSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

// close signals the pumps and any blocked sender. The send channel itself is
// never closed: a sender racing a disconnect must see done, not a closed
// channel.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump only services control frames; the event channel is push-only.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
	c.conn.SetReadLimit(constants.WebSocketMaxMsgSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				c.log.Warnf("websocket read error user_id=%s: %v", c.userID, err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(constants.WebSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = gorillaWS.Upgrader{
	ReadBufferSize:  constants.WebSocketReadBufferSize,
	WriteBufferSize: constants.WebSocketWriteBufferSize,
}

// ServeWS upgrades an authenticated request to a websocket subscription.
func ServeWS(hub *Hub, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwtverify.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("websocket upgrade failed user_id=%s: %v", claims.UserID, err)
			return
		}

		client := NewClient(hub, conn, claims.UserID, log)
		hub.Register(client)
		client.Start()
	}
}
