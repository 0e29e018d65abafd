package engine

import "errors"

var ErrUnknownParticipant = errors.New("unknown participant")
var ErrDuplicateParticipant = errors.New("username already in room")
var ErrNotHost = errors.New("only the host can do that")
var ErrNotStarted = errors.New("auction not started")
var ErrAlreadyStarted = errors.New("auction already started")
var ErrAuctionCompleted = errors.New("auction already completed")
var ErrBiddingClosed = errors.New("bidding is not open")
var ErrAlreadyHighestBidder = errors.New("you already hold the highest bid")
var ErrInsufficientBudget = errors.New("your budget does not allow this")
var ErrNoRTMWindow = errors.New("no right-to-match window is open")
var ErrWrongRTMUser = errors.New("the right-to-match offer is not yours")
var ErrTeamTaken = errors.New("team already taken")
var ErrSettingsLocked = errors.New("tokens per team cannot change after start")
var ErrBadSetting = errors.New("rtm tokens per team must be between 0 and 5")
var ErrUnsupportedCommand = errors.New("unsupported command")

const maxCommentary = 5
const maxRTMPerTeam = 5

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseBidding Phase = "bidding"
	PhaseRTM     Phase = "rtm"
	PhaseDone    Phase = "done"
)

type CommandType string

const (
	CmdAddParticipant    CommandType = "AddParticipant"
	CmdRemoveParticipant CommandType = "RemoveParticipant"
	CmdChooseTeam        CommandType = "ChooseTeam"
	CmdSetSettings       CommandType = "SetSettings"
	CmdStartAuction      CommandType = "StartAuction"
	CmdBid               CommandType = "Bid"
	CmdRTMAccept         CommandType = "RTMAccept"
	CmdTick              CommandType = "Tick"
	CmdAdvanceNow        CommandType = "AdvanceNow"
)

type Command struct {
	Type       CommandType
	User       string
	Team       string
	RTMEnabled *bool
	RTMPerTeam *int
}

type EventType string

const (
	EvtPlayerServed        EventType = "PlayerServed"
	EvtBidUpdated          EventType = "BidUpdated"
	EvtTimerTick           EventType = "TimerTick"
	EvtCommentary          EventType = "Commentary"
	EvtPlayerSold          EventType = "PlayerSold"
	EvtPlayerUnsold        EventType = "PlayerUnsold"
	EvtCompositionRejected EventType = "CompositionRejected"
	EvtRTMOffered          EventType = "RTMOffered"
	EvtRTMResolved         EventType = "RTMResolved"
	EvtParticipantsChanged EventType = "ParticipantsChanged"
	EvtAuctionCompleted    EventType = "AuctionCompleted"
)

type Event struct {
	Type     EventType `json:"type"`
	Player   *Player   `json:"player,omitempty"`
	User     string    `json:"user,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
	Seconds  int       `json:"seconds,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Accepted bool      `json:"accepted,omitempty"`
}

type CommentaryEntry struct {
	Player string  `json:"player"`
	Bidder string  `json:"bidder,omitempty"`
	Team   string  `json:"team,omitempty"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

type Settings struct {
	RTMEnabled bool `json:"rtm_enabled"`
	RTMPerTeam int  `json:"rtm_per_team"`
}

// RTMState is the right-to-match sub-state: zero value means no window open.
type RTMState struct {
	EligibleUser string `json:"eligible_user,omitempty"`
	Window       int    `json:"window,omitempty"`
}

// Auction is the per-room state machine. It is pure with respect to I/O and
// time: the hosting room feeds it commands (including Tick once per second)
// and fans out the events it returns. All mutation happens inside Apply,
// which must only be called from the room's own goroutine.
type Auction struct {
	Rules    Rules
	Host     string
	Started  bool
	Phase    Phase
	Settings Settings

	SquadIdx  int
	PlayerIdx int
	Current   *Player

	CurrentBid    float64
	CurrentBidder string
	Timer         int
	RTM           RTMState
	Commentary    []CommentaryEntry

	Squads       []Squad
	Participants map[string]*Ledger
	Order        []string // join order, for deterministic iteration
}

func New(squads []Squad, rules Rules) *Auction {
	return &Auction{
		Rules:        rules,
		Phase:        PhaseLobby,
		Settings:     Settings{RTMEnabled: true, RTMPerTeam: 3},
		Squads:       squads,
		Participants: map[string]*Ledger{},
	}
}

func (a *Auction) Apply(cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdAddParticipant:
		return a.addParticipant(cmd.User)
	case CmdRemoveParticipant:
		return a.removeParticipant(cmd.User)
	case CmdChooseTeam:
		return a.chooseTeam(cmd.User, cmd.Team)
	case CmdSetSettings:
		return a.setSettings(cmd)
	case CmdStartAuction:
		return a.start(cmd.User)
	case CmdBid:
		return a.bid(cmd.User)
	case CmdRTMAccept:
		return a.rtmAccept(cmd.User)
	case CmdTick:
		return a.tick(), nil
	case CmdAdvanceNow:
		return a.advanceNow(cmd.User)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func (a *Auction) addParticipant(user string) ([]Event, error) {
	if a.Phase == PhaseDone {
		return nil, ErrAuctionCompleted
	}
	if _, ok := a.Participants[user]; ok {
		return nil, ErrDuplicateParticipant
	}
	a.Participants[user] = NewLedger(user, a.Rules, a.Settings.RTMPerTeam)
	a.Order = append(a.Order, user)
	if a.Host == "" {
		a.Host = user
	}
	return []Event{{Type: EvtParticipantsChanged, User: user}}, nil
}

func (a *Auction) removeParticipant(user string) ([]Event, error) {
	if _, ok := a.Participants[user]; !ok {
		return nil, ErrUnknownParticipant
	}
	var events []Event
	if a.CurrentBidder == user {
		a.CurrentBidder = ""
		events = append(events, Event{Type: EvtBidUpdated, Amount: a.CurrentBid})
	}
	delete(a.Participants, user)
	for i, u := range a.Order {
		if u == user {
			a.Order = append(a.Order[:i], a.Order[i+1:]...)
			break
		}
	}
	if a.Host == user && len(a.Order) > 0 {
		a.Host = a.Order[0]
	}
	return append(events, Event{Type: EvtParticipantsChanged, User: user}), nil
}

func (a *Auction) chooseTeam(user, team string) ([]Event, error) {
	l, ok := a.Participants[user]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	slug := TeamSlug(team)
	for _, other := range a.Participants {
		if other.Name != user && other.TeamSlug() == slug {
			return nil, ErrTeamTaken
		}
	}
	l.SetTeam(team)
	// First selection seeds the roster with the squad's retained slots at
	// zero cost; they occupy roster space but never go through bidding.
	if len(l.Players) == 0 {
		for _, sq := range a.Squads {
			if sq.Slug != slug {
				continue
			}
			n := min(a.Rules.RetainedCount, len(sq.Players))
			for _, p := range sq.Players[:n] {
				if l.CanAdd(p).OK {
					_ = l.Commit(p, 0)
				}
			}
			break
		}
	}
	return []Event{{Type: EvtParticipantsChanged, User: user}}, nil
}

func (a *Auction) setSettings(cmd Command) ([]Event, error) {
	if cmd.User != a.Host {
		return nil, ErrNotHost
	}
	if cmd.RTMEnabled != nil {
		a.Settings.RTMEnabled = *cmd.RTMEnabled
	}
	if cmd.RTMPerTeam != nil {
		if a.Started {
			return nil, ErrSettingsLocked
		}
		n := *cmd.RTMPerTeam
		if n < 0 || n > maxRTMPerTeam {
			return nil, ErrBadSetting
		}
		a.Settings.RTMPerTeam = n
		for _, l := range a.Participants {
			l.RTM = n
		}
	}
	return []Event{{Type: EvtParticipantsChanged}}, nil
}

func (a *Auction) start(user string) ([]Event, error) {
	if user != a.Host {
		return nil, ErrNotHost
	}
	if a.Started {
		return nil, ErrAlreadyStarted
	}
	a.Started = true
	a.SquadIdx = 0
	a.PlayerIdx = a.Rules.RetainedCount
	if !a.normalizeCursor() {
		return a.complete(), nil
	}
	return a.servePlayer(), nil
}

func (a *Auction) bid(user string) ([]Event, error) {
	if !a.Started {
		return nil, ErrNotStarted
	}
	if a.Phase != PhaseBidding || a.Current == nil {
		return nil, ErrBiddingClosed
	}
	l, ok := a.Participants[user]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	if a.CurrentBidder == user {
		return nil, ErrAlreadyHighestBidder
	}
	newBid := a.CurrentBid + a.Rules.Increment(a.CurrentBid)
	if l.Budget < newBid {
		return nil, ErrInsufficientBudget
	}
	a.CurrentBid = newBid
	a.CurrentBidder = user
	// Extending a timer that already hit zero is a no-op: the expiry
	// transition owns what happens next.
	if a.Timer > 0 {
		a.Timer += a.Rules.TimerBonus
		if a.Timer > a.Rules.TimerCap {
			a.Timer = a.Rules.TimerCap
		}
	}
	a.appendCommentary(CommentaryEntry{
		Player: a.Current.Name,
		Bidder: user,
		Team:   l.Team,
		Amount: newBid,
		Note:   "bid",
	})
	return []Event{
		{Type: EvtBidUpdated, User: user, Amount: newBid},
		{Type: EvtCommentary},
		{Type: EvtTimerTick, Seconds: a.Timer},
	}, nil
}

func (a *Auction) rtmAccept(user string) ([]Event, error) {
	if a.Phase != PhaseRTM {
		return nil, ErrNoRTMWindow
	}
	if user != a.RTM.EligibleUser {
		return nil, ErrWrongRTMUser
	}
	l := a.Participants[user]
	if l == nil {
		return nil, ErrUnknownParticipant
	}
	// Rejections leave the window open until it times out.
	if l.Budget < a.CurrentBid {
		return nil, ErrInsufficientBudget
	}
	if v := l.CanAdd(*a.Current); !v.OK {
		return nil, errors.New(v.Reason)
	}
	l.RTM--
	_ = l.Commit(*a.Current, a.CurrentBid)
	a.appendCommentary(CommentaryEntry{
		Player: a.Current.Name,
		Bidder: user,
		Team:   l.Team,
		Amount: a.CurrentBid,
		Note:   "rtm",
	})
	events := []Event{
		{Type: EvtRTMResolved, User: user, Accepted: true},
		{Type: EvtPlayerSold, Player: a.Current, User: user, Amount: a.CurrentBid},
		{Type: EvtCommentary},
		{Type: EvtParticipantsChanged, User: user},
	}
	a.RTM = RTMState{}
	return append(events, a.moveOn()...), nil
}

func (a *Auction) advanceNow(user string) ([]Event, error) {
	if user != a.Host {
		return nil, ErrNotHost
	}
	if !a.Started {
		return nil, ErrNotStarted
	}
	switch a.Phase {
	case PhaseBidding:
		return a.expire(), nil
	case PhaseRTM:
		return a.resolveRTMExpired(), nil
	default:
		return nil, ErrAuctionCompleted
	}
}

// tick consumes one countdown second. Ticks outside a timed phase are
// no-ops so a stale ticker fire can never corrupt state.
func (a *Auction) tick() []Event {
	switch a.Phase {
	case PhaseBidding:
		a.Timer--
		events := []Event{{Type: EvtTimerTick, Seconds: a.Timer}}
		if a.Timer <= 0 {
			events = append(events, a.expire()...)
		}
		return events
	case PhaseRTM:
		a.RTM.Window--
		events := []Event{{Type: EvtTimerTick, Seconds: a.RTM.Window}}
		if a.RTM.Window <= 0 {
			events = append(events, a.resolveRTMExpired()...)
		}
		return events
	default:
		return nil
	}
}

// expire runs the timer-expiry transition for the live player: open a
// right-to-match window when one is owed, otherwise settle the sale.
func (a *Auction) expire() []Event {
	if a.CurrentBidder != "" && a.Settings.RTMEnabled {
		if eligible := a.rtmEligible(); eligible != "" && eligible != a.CurrentBidder {
			a.Phase = PhaseRTM
			a.RTM = RTMState{EligibleUser: eligible, Window: a.Rules.RTMWindow}
			return []Event{{
				Type:    EvtRTMOffered,
				User:    eligible,
				Amount:  a.CurrentBid,
				Seconds: a.RTM.Window,
				Player:  a.Current,
			}}
		}
	}
	return a.settle()
}

// rtmEligible returns the participant owed a right-to-match on the live
// player, or empty. Join order breaks ties deterministically.
func (a *Auction) rtmEligible() string {
	if a.Current == nil || a.Current.PreviousTeam == "" {
		return ""
	}
	prev := TeamSlug(a.Current.PreviousTeam)
	for _, user := range a.Order {
		l := a.Participants[user]
		if l.RTM > 0 && l.TeamSlug() == prev {
			return user
		}
	}
	return ""
}

func (a *Auction) resolveRTMExpired() []Event {
	events := []Event{{Type: EvtRTMResolved, User: a.RTM.EligibleUser}}
	a.RTM = RTMState{}
	a.Phase = PhaseBidding
	return append(events, a.settle()...)
}

// settle commits the live player to the highest bidder, reopens bidding if
// the winner's squad composition forbids the sale, or marks the player
// unsold. On success or unsold it advances the cursor.
func (a *Auction) settle() []Event {
	if a.CurrentBidder == "" {
		a.appendCommentary(CommentaryEntry{Player: a.Current.Name, Note: "unsold"})
		events := []Event{
			{Type: EvtPlayerUnsold, Player: a.Current},
			{Type: EvtCommentary},
		}
		return append(events, a.moveOn()...)
	}

	l := a.Participants[a.CurrentBidder]
	if v := l.CanAdd(*a.Current); !v.OK {
		// Sale voided: reset to base price and let the room re-bid.
		events := []Event{{
			Type:   EvtCompositionRejected,
			User:   a.CurrentBidder,
			Reason: v.Reason,
			Player: a.Current,
		}}
		a.CurrentBid = a.Rules.BasePrice(*a.Current)
		a.CurrentBidder = ""
		a.Timer = a.Rules.TimerBase
		a.Phase = PhaseBidding
		return append(events,
			Event{Type: EvtBidUpdated, Amount: a.CurrentBid},
			Event{Type: EvtTimerTick, Seconds: a.Timer},
		)
	}

	_ = l.Commit(*a.Current, a.CurrentBid)
	a.appendCommentary(CommentaryEntry{
		Player: a.Current.Name,
		Bidder: a.CurrentBidder,
		Team:   l.Team,
		Amount: a.CurrentBid,
		Note:   "sold",
	})
	events := []Event{
		{Type: EvtPlayerSold, Player: a.Current, User: a.CurrentBidder, Amount: a.CurrentBid},
		{Type: EvtCommentary},
		{Type: EvtParticipantsChanged, User: a.CurrentBidder},
	}
	return append(events, a.moveOn()...)
}

// moveOn advances the cursor past the settled slot and serves the next
// player, or completes the auction when every squad is exhausted.
func (a *Auction) moveOn() []Event {
	a.PlayerIdx++
	if !a.normalizeCursor() {
		return a.complete()
	}
	return a.servePlayer()
}

// normalizeCursor skips past squads whose open-bidding range is exhausted,
// resetting the player index to the first non-retained slot of each new
// squad. Reports whether the cursor still points at a servable player.
func (a *Auction) normalizeCursor() bool {
	for a.SquadIdx < len(a.Squads) && a.PlayerIdx >= len(a.Squads[a.SquadIdx].Players) {
		a.SquadIdx++
		a.PlayerIdx = a.Rules.RetainedCount
	}
	return a.SquadIdx < len(a.Squads)
}

// servePlayer puts the player at the cursor up for bidding: fresh commentary,
// bid reset to the role base price, full countdown.
func (a *Auction) servePlayer() []Event {
	if a.SquadIdx >= len(a.Squads) || a.PlayerIdx >= len(a.Squads[a.SquadIdx].Players) {
		return nil
	}
	p := a.Squads[a.SquadIdx].Players[a.PlayerIdx]
	p.BasePrice = a.Rules.BasePrice(p)
	a.Current = &p
	a.CurrentBid = p.BasePrice
	a.CurrentBidder = ""
	a.Timer = a.Rules.TimerBase
	a.Phase = PhaseBidding
	a.Commentary = nil
	return []Event{
		{Type: EvtPlayerServed, Player: a.Current, Amount: a.CurrentBid},
		{Type: EvtBidUpdated, Amount: a.CurrentBid},
		{Type: EvtTimerTick, Seconds: a.Timer},
	}
}

func (a *Auction) complete() []Event {
	a.Phase = PhaseDone
	a.Current = nil
	a.CurrentBid = 0
	a.CurrentBidder = ""
	a.Timer = 0
	return []Event{{Type: EvtAuctionCompleted}}
}

func (a *Auction) appendCommentary(e CommentaryEntry) {
	a.Commentary = append(a.Commentary, e)
	if len(a.Commentary) > maxCommentary {
		a.Commentary = a.Commentary[len(a.Commentary)-maxCommentary:]
	}
}

// ContainsEvent reports whether events holds an event of the given type.
func ContainsEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
