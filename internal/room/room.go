package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
)

type Msg interface{ isRoomMsg() }

// Join registers a client connection. A non-empty User also joins the
// auction as a participant; an empty User follows as a spectator.
type Join struct {
	ClientID string
	User     string
	Outbox   chan OutMsg
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isRoomMsg() {}

// TimerFired is sent by the Ticker once per second. Fires carrying a stale
// generation are dropped by the loop.
type TimerFired struct{ Gen uint64 }

func (TimerFired) isRoomMsg() {}

type GetState struct{ Reply chan View }

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// OutMsg is what clients receive: a state snapshot with the events that
// produced it, or a directed error for the client whose command failed.
type OutMsg struct {
	Snapshot *Snapshot      `json:"snapshot,omitempty"`
	Events   []engine.Event `json:"events,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Participant struct {
	User    string          `json:"user"`
	Team    string          `json:"team,omitempty"`
	Budget  float64         `json:"budget"`
	RTM     int             `json:"rtm"`
	Players []engine.Player `json:"players"`
}

type Snapshot struct {
	Version       int                      `json:"version"`
	Room          string                   `json:"room"`
	Phase         engine.Phase             `json:"phase"`
	Started       bool                     `json:"started"`
	Host          string                   `json:"host,omitempty"`
	Settings      engine.Settings          `json:"settings"`
	Player        *engine.Player           `json:"player,omitempty"`
	CurrentBid    float64                  `json:"current_bid"`
	CurrentBidder string                   `json:"current_bidder,omitempty"`
	Timer         int                      `json:"timer"`
	RTM           engine.RTMState          `json:"rtm"`
	Commentary    []engine.CommentaryEntry `json:"commentary,omitempty"`
	Participants  []Participant            `json:"participants"`
}

// View reflects internal state for tests and the room listing without races.
type View struct {
	Version    int
	NumClients int
	Public     bool
	Snapshot   Snapshot
}

// Result is one participant's final state, handed to the Sink at completion.
type Result struct {
	User    string
	Team    string
	Budget  float64
	Players []engine.Player
}

// Sink persists completed-auction results. Failures are logged and never
// block teardown.
type Sink interface {
	Save(ctx context.Context, room string, results []Result) error
}

// Nop discards results. Used when no database is configured.
type Nop struct{}

func (Nop) Save(context.Context, string, []Result) error { return nil }

type client struct {
	user   string
	outbox chan OutMsg
}

type Options struct {
	Code    string
	Public  bool
	Squads  []engine.Squad
	Rules   engine.Rules
	Clock   clockwork.Clock
	Sink    Sink
	Log     *zap.Logger
	OnClose func() // invoked once when the room tears itself down
}

// Room owns one auction. All engine mutation happens inside loop, which
// consumes the inbox serially: commands, ticks and RTM accepts can never
// interleave mid-transition.
type Room struct {
	code    string
	public  bool
	inbox   chan Msg
	eng     *engine.Auction
	version int
	clients map[string]client
	ticker  *Ticker
	sink    Sink
	log     *zap.Logger
	onClose func()
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

func New(parent context.Context, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Sink == nil {
		opts.Sink = Nop{}
	}
	r := &Room{
		code:    opts.Code,
		public:  opts.Public,
		inbox:   make(chan Msg, 64),
		eng:     engine.New(opts.Squads, opts.Rules),
		clients: make(map[string]client),
		ticker:  NewTicker(opts.Clock),
		sink:    opts.Sink,
		log:     opts.Log.With(zap.String("room", opts.Code)),
		onClose: opts.OnClose,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

// Inbox exposes the message channel for the ws layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				if msg.User != "" {
					events, err := r.eng.Apply(engine.Command{Type: engine.CmdAddParticipant, User: msg.User})
					if err == nil {
						r.log.Info("participant joined", zap.String("user", msg.User))
						r.postApply(events)
					}
					// Duplicate usernames reattach to the existing ledger.
				}
				// Register after the join broadcast so the new client gets
				// exactly one snapshot.
				r.clients[msg.ClientID] = client{user: msg.User, outbox: msg.Outbox}
				msg.Outbox <- OutMsg{Snapshot: r.snapshot()}

			case Leave:
				c, ok := r.clients[msg.ClientID]
				if !ok {
					break
				}
				delete(r.clients, msg.ClientID)
				if c.user != "" && !r.userConnected(c.user) {
					events, err := r.eng.Apply(engine.Command{Type: engine.CmdRemoveParticipant, User: c.user})
					if err == nil {
						r.log.Info("participant left", zap.String("user", c.user))
						r.postApply(events)
						if len(r.eng.Participants) == 0 {
							r.teardown()
							return
						}
					}
				}

			case FromClient:
				events, err := r.eng.Apply(msg.Cmd)
				if err != nil {
					r.sendError(msg.ClientID, err.Error())
					break
				}
				if r.handleEvents(events) {
					return
				}

			case TimerFired:
				if msg.Gen != r.ticker.Gen() {
					break // stale fire from a cancelled ticker
				}
				events, _ := r.eng.Apply(engine.Command{Type: engine.CmdTick})
				if len(events) == 0 {
					break
				}
				if r.handleEvents(events) {
					return
				}

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					Public:     r.public,
					Snapshot:   *r.snapshot(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// handleEvents broadcasts the new state and runs event side effects.
// It reports whether the room tore itself down.
func (r *Room) handleEvents(events []engine.Event) bool {
	r.postApply(events)

	if engine.ContainsEvent(events, engine.EvtPlayerServed) && r.eng.Started {
		// Idempotent: restarting cancels any previous ticker, so exactly
		// one is ever live.
		if !r.ticker.Running() {
			r.ticker.Start(r.ctx, r.inbox)
		}
	}
	if engine.ContainsEvent(events, engine.EvtAuctionCompleted) {
		r.log.Info("auction completed")
		r.persistResults()
		r.teardown()
		return true
	}
	return false
}

func (r *Room) postApply(events []engine.Event) {
	r.version++
	r.broadcast(OutMsg{Snapshot: r.snapshot(), Events: events})
}

func (r *Room) userConnected(user string) bool {
	for _, c := range r.clients {
		if c.user == user {
			return true
		}
	}
	return false
}

func (r *Room) sendError(clientID, reason string) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.outbox <- OutMsg{Error: reason}:
	default:
	}
}

func (r *Room) broadcast(out OutMsg) {
	for id, c := range r.clients {
		select {
		case c.outbox <- out:
		default:
			// Client is slow/full - drop them.
			close(c.outbox)
			delete(r.clients, id)
		}
	}
}

func (r *Room) snapshot() *Snapshot {
	e := r.eng
	parts := make([]Participant, 0, len(e.Order))
	for _, u := range e.Order {
		l := e.Participants[u]
		parts = append(parts, Participant{
			User:    l.Name,
			Team:    l.Team,
			Budget:  l.Budget,
			RTM:     l.RTM,
			Players: l.Players,
		})
	}
	return &Snapshot{
		Version:       r.version,
		Room:          r.code,
		Phase:         e.Phase,
		Started:       e.Started,
		Host:          e.Host,
		Settings:      e.Settings,
		Player:        e.Current,
		CurrentBid:    e.CurrentBid,
		CurrentBidder: e.CurrentBidder,
		Timer:         e.Timer,
		RTM:           e.RTM,
		Commentary:    e.Commentary,
		Participants:  parts,
	}
}

// persistResults hands final rosters to the sink on a detached context so a
// slow or failing store can never block teardown.
func (r *Room) persistResults() {
	if r.sink == nil {
		return
	}
	results := make([]Result, 0, len(r.eng.Order))
	for _, u := range r.eng.Order {
		l := r.eng.Participants[u]
		results = append(results, Result{
			User:    l.Name,
			Team:    l.Team,
			Budget:  l.Budget,
			Players: l.Players,
		})
	}
	sink, log, code := r.sink, r.log, r.code
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sink.Save(ctx, code, results); err != nil {
			log.Warn("failed to save auction results", zap.Error(err))
		}
	}()
}

func (r *Room) teardown() {
	r.shutdown()
	if r.onClose != nil {
		r.onClose()
	}
}

func (r *Room) shutdown() {
	if r.closed {
		return
	}
	r.closed = true
	r.ticker.Stop()
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}
