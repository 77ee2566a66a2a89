package signal

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/app"
	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const sendBuffer = 32

// Controller owns the websocket surface: upgrade, session binding and
// the read/write pump pair per connection.
type Controller struct {
	Manager  *app.RoomManager
	Registry *app.Registry

	readLimit int64
	limiter   *ConnRateLimiter
}

func NewController(manager *app.RoomManager, registry *app.Registry, readLimit int64) *Controller {
	return &Controller{
		Manager:   manager,
		Registry:  registry,
		readLimit: readLimit,
		limiter:   NewConnRateLimiter(10, time.Minute),
	}
}

// WsSignalConn is the outbound half of one client connection. TrySend
// never blocks; a full send channel is reported as backpressure and the
// frame is dropped by the caller.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS authenticates the join attempt, upgrades and wires the
// connection into its room. Query params: room, name, password,
// playerId, textureId.
func (ctl *Controller) HandleWS(c *gin.Context) {
	sid := domain.SessionID(c.GetString("client_token"))
	if sid == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !ctl.limiter.Allow(sid) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	roomID := domain.RoomID(c.Query("room"))
	room, err := ctl.Manager.Authorize(roomID, c.Query("password"))
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, app.ErrBadPassword) {
			status = http.StatusForbidden
		}
		c.AbortWithStatus(status)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}

	opts := core.JoinOptions{
		PlayerID: c.Query("playerId"),
		Name:     c.Query("name"),
	}
	if tid, ok := queryInt(c, "textureId"); ok {
		opts.TextureID = &tid
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("new WS connection")

	ctl.Registry.Bind(sid, room, conn)
	room.Join(sid, conn, opts)

	go ctl.writePump(conn)
	go ctl.readPump(sid, room, conn)
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
