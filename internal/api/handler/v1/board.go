package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 64
)

type BoardService interface {
	Board(ctx context.Context, day time.Time) ([]domain.BoardItem, error)
}

type boardClient struct {
	conn *websocket.Conn
	send chan []byte
}

// BoardHandler serves the token board and fans token events out to every
// connected screen. Clients that fall behind are dropped.
type BoardHandler struct {
	svc      BoardService
	loc      *time.Location
	upgrader websocket.Upgrader

	clients      map[*boardClient]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *boardClient
	unregister   chan *boardClient
	done         chan struct{}
}

func NewBoardHandler(svc BoardService, loc *time.Location, allowedOrigins []string) *BoardHandler {
	return &BoardHandler{
		svc: svc,
		loc: loc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients:    make(map[*boardClient]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *boardClient),
		unregister: make(chan *boardClient),
		done:       make(chan struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// SetService is used when the handler is built before the token service
// that publishes into it.
func (h *BoardHandler) SetService(svc BoardService) {
	h.svc = svc
}

// Run dispatches hub traffic until ctx is done, then disconnects everyone.
func (h *BoardHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.clientsMutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
			return
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = struct{}{}
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

func (h *BoardHandler) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	return len(h.clients)
}

// Publish queues a token event for every board. It never blocks the caller;
// events are dropped when the hub is saturated.
func (h *BoardHandler) Publish(event domain.TokenEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("board event marshal failed", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		zap.L().Warn("board hub saturated, event dropped",
			zap.String("event", event.Event), zap.String("token_no", event.Token.TokenNo))
	}
}

// HandleGetBoard godoc
// @Summary      Token board
// @Description  Tokens of the day with their stage: pending, tested or exchanged.
// @Tags         board
// @Produce      json
// @Param        date     query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {array}    domain.BoardItem
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /board [get]
// @Security     BearerAuth
func (h *BoardHandler) HandleGetBoard(ctx *gin.Context) {
	day, err := queryDay(ctx, "date", shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	items, err := h.svc.Board(ctx.Request.Context(), day)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetBoard -> h.svc.Board -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleWebSocket godoc
// @Summary      Live token events
// @Description  Pushes {"event": "created|updated|paid|deleted", "token": {...}}. The bearer token may be passed as ?token= since browsers cannot set headers on upgrades.
// @Tags         board
// @Success      101      {string}   string "Switching Protocols to WebSocket"
// @Failure      401      {object}   response.Err
// @Router       /board/ws [get]
// @Security     BearerAuth
func (h *BoardHandler) HandleWebSocket(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &boardClient{
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *boardClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the close; boards never send anything.
func (c *boardClient) readPump(h *BoardHandler) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("board client closed", zap.Error(err))
			}
			return
		}
	}
}
