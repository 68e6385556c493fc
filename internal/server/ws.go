package server

import (
	log "log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"aide/pkg/api"
)

// handleWS serves a persistent command channel: each text frame is a
// CommandRequest, answered in order with a CommandReply frame.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	log.Info("Websocket client connected", "remote", conn.RemoteAddr())

	for {
		var req api.CommandRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !wsIsClosed(err) {
				log.Warn("Websocket read failed", "err", err)
			}
			return
		}

		reply, ok := s.dispatch(c.Request.Context(), req.Query)
		out := api.CommandReply{Reply: reply}
		if !ok {
			out = api.CommandReply{Error: internalErrorReply}
		}

		if err := conn.WriteJSON(out); err != nil {
			log.Warn("Websocket write failed", "err", err)
			return
		}
	}
}

func wsIsClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}
