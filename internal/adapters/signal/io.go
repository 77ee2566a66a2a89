package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

const writeDeadline = 5 * time.Second

func (ctl *Controller) writePump(c *WsSignalConn) {
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
			return
		}
	}
}

// readPump feeds inbound envelopes into the room inbox. Any read error
// counts as a disconnect: the player is removed from the room before
// the transport is torn down.
func (ctl *Controller) readPump(sid domain.SessionID, room *core.Room, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		room.Leave(sid, c)
		ctl.Registry.Unbind(sid, c)
		c.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad envelope")
			continue
		}
		room.Dispatch(sid, env.Type, env.Data)
	}
}
