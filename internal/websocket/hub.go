package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/middleware"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errHubStopped = errors.New("websocket hub is not running")

// originChecker admits requests without an Origin header (non-browser
// clients) and browsers on one of the allowed origins. "*" allows all.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[strings.TrimRight(origin, "/")]
	}
}

// Subscriber is a single connected socket and the actor it authenticated as.
type Subscriber struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Actor *model.Actor
	Send  chan []byte
}

// wants reports whether the subscriber may see events for clientID.
func (s *Subscriber) wants(clientID uuid.UUID) bool {
	if s.Actor == nil {
		return false
	}
	switch s.Actor.Role {
	case model.RoleAdmin, model.RoleTeam:
		return true
	}
	return s.Actor.Owns(clientID)
}

type dispatch struct {
	clientID uuid.UUID
	payload  []byte
}

// Hub fans lifecycle events out to connected subscribers. It implements
// service.EventSink so it can sit beside the notifications table.
type Hub struct {
	subscribers map[*Subscriber]bool
	broadcast   chan dispatch
	register    chan *Subscriber
	unregister  chan *Subscriber
	done        chan struct{}
	stopOnce    sync.Once
	mu          sync.Mutex
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewHub builds a hub whose upgrades are limited to allowedOrigins, the same
// list the CORS middleware serves.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		broadcast:   make(chan dispatch, 64),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		done:        make(chan struct{}),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Run dispatches until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			h.mu.Unlock()
			h.logger.Debug("websocket subscriber connected", "user_id", sub.Actor.UserID, "role", sub.Actor.Role)
		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.Send)
				h.logger.Debug("websocket subscriber disconnected", "user_id", sub.Actor.UserID)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.subscribers {
				if !sub.wants(msg.clientID) {
					continue
				}
				select {
				case sub.Send <- msg.payload:
				default:
					// Slow consumer; drop it rather than stall everyone else.
					close(sub.Send)
					delete(h.subscribers, sub)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for sub := range h.subscribers {
			close(sub.Send)
			delete(h.subscribers, sub)
		}
		h.mu.Unlock()
	})
}

// SubscriberCount is the number of live sockets.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) Name() string { return "websocket" }

// Deliver queues event for every subscriber allowed to see it.
func (h *Hub) Deliver(ctx context.Context, event service.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- dispatch{clientID: event.ClientID, payload: payload}:
		return nil
	case <-h.done:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (s *Subscriber) writePump() {
	defer func() {
		_ = s.Conn.Close()
	}()
	for message := range s.Send {
		w, err := s.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		// Flush queued events in the same frame, newline separated.
		n := len(s.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-s.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump only watches for the peer going away.
func (s *Subscriber) readPump() {
	defer func() {
		select {
		case s.Hub.unregister <- s:
		case <-s.Hub.done:
		}
		_ = s.Conn.Close()
	}()
	for {
		_, _, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.Hub.logger.Warn("websocket read failed", "user_id", s.Actor.UserID, "error", err)
			}
			break
		}
	}
}

// ServeWs authenticates the token query parameter and subscribes the socket.
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.logger.Info("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	actor, err := middleware.ParseActor(tokenString, secret)
	if err != nil {
		hub.logger.Info("websocket connection rejected: invalid token", "error", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	sub := &Subscriber{Hub: hub, Conn: conn, Actor: actor, Send: make(chan []byte, 256)}

	select {
	case hub.register <- sub:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go sub.writePump()
	go sub.readPump()
}
