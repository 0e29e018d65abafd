package hub

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
	"github.com/rgoyal8/ipl-auction-backend/internal/room"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code   string
	Public bool
	Reply  chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ListRooms struct {
	Reply chan []RoomInfo
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// RoomInfo is one entry in the public room listing.
type RoomInfo struct {
	Code  string   `json:"code"`
	Users []string `json:"users"`
}

// Deps carries everything the hub needs to assemble a room.
type Deps struct {
	Squads []engine.Squad
	Rules  engine.Rules
	Clock  clockwork.Clock
	Sink   room.Sink
	Log    *zap.Logger
}

// Hub is the room registry. A single goroutine serializes create, lookup
// and remove, so rooms never observe each other's lifecycle.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	public map[string]bool
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, deps Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		public: make(map[string]bool),
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				code := msg.Code
				rm := room.New(h.ctx, room.Options{
					Code:   code,
					Public: msg.Public,
					Squads: h.deps.Squads,
					Rules:  h.deps.Rules,
					Clock:  h.deps.Clock,
					Sink:   h.deps.Sink,
					Log:    h.deps.Log,
					OnClose: func() {
						h.inbox <- RemoveRoom{Code: code}
					},
				})
				h.rooms[code] = rm
				h.public[code] = msg.Public
				h.deps.Log.Info("room created", zap.String("room", code), zap.Bool("public", msg.Public))
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					delete(h.public, msg.Code)
					h.deps.Log.Info("room removed", zap.String("room", msg.Code))
				}

			case ListRooms:
				msg.Reply <- h.listPublic()

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				clear(h.public)
				h.cancel()
				return
			}
		}
	}
}

// listPublic polls each public room for its view. Replies are bounded by a
// short timeout so one wedged room cannot stall the listing.
func (h *Hub) listPublic() []RoomInfo {
	infos := make([]RoomInfo, 0, len(h.public))
	for code, pub := range h.public {
		if !pub {
			continue
		}
		rm := h.rooms[code]
		reply := make(chan room.View, 1)
		rm.Inbox() <- room.GetState{Reply: reply}
		select {
		case v := <-reply:
			users := make([]string, 0, len(v.Snapshot.Participants))
			for _, p := range v.Snapshot.Participants {
				users = append(users, p.User)
			}
			infos = append(infos, RoomInfo{Code: code, Users: users})
		case <-time.After(time.Second):
		}
	}
	return infos
}
