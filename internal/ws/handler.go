package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
	"github.com/rgoyal8/ipl-auction-backend/internal/hub"
	"github.com/rgoyal8/ipl-auction-backend/internal/room"
	"github.com/rgoyal8/ipl-auction-backend/internal/types"
)

// Handler upgrades /ws?room=CODE&user=NAME to a websocket and bridges it to
// the room actor. One connection is one client; the username is fixed at
// upgrade time so a client cannot bid as somebody else.
func Handler(h *hub.Hub, origins []string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("room")
		user := r.URL.Query().Get("user")
		if code == "" || user == "" {
			http.Error(w, "missing room or user", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan room.OutMsg, 8)
		clientID := uuid.NewString()

		rm.Inbox() <- room.Join{ClientID: clientID, User: user, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for om := range out {
				msg := types.ServerMessage{Type: "Snapshot", Snapshot: om.Snapshot, Events: om.Events}
				if om.Error != "" {
					msg = types.ServerMessage{Type: "Error", Error: om.Error}
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise just exit (room.Leave in defer).
				log.Debug("websocket read ended",
					zap.String("room", code), zap.String("user", user), zap.Error(err))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			if cm.Type == "leave" {
				return
			}

			cmd, ok := toEngineCommand(cm, user)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

// toEngineCommand maps a wire message to an engine command. The acting user
// always comes from the session, never the payload.
func toEngineCommand(m types.ClientMessage, user string) (engine.Command, bool) {
	switch m.Type {
	case "choose-team":
		return engine.Command{Type: engine.CmdChooseTeam, User: user, Team: m.Team}, true
	case "set-settings":
		return engine.Command{Type: engine.CmdSetSettings, User: user, RTMEnabled: m.RTMEnabled, RTMPerTeam: m.RTMPerTeam}, true
	case "start":
		return engine.Command{Type: engine.CmdStartAuction, User: user}, true
	case "bid":
		return engine.Command{Type: engine.CmdBid, User: user}, true
	case "rtm-accept":
		return engine.Command{Type: engine.CmdRTMAccept, User: user}, true
	case "advance-now":
		return engine.Command{Type: engine.CmdAdvanceNow, User: user}, true
	default:
		return engine.Command{}, false
	}
}
