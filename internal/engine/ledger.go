package engine

// Verdict is the outcome of a composition check. Reason is human-readable and
// only set when OK is false.
type Verdict struct {
	OK     bool
	Reason string
}

// Ledger tracks one participant: budget, right-to-match tokens and a roster
// partitioned by role. It is mutated only by its own room's engine.
type Ledger struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
	Team   string  `json:"team,omitempty"`
	RTM    int     `json:"rtm"`

	Players  []Player          `json:"players"`
	ByRole   map[Role][]Player `json:"by_role"`
	Overseas []Player          `json:"overseas"`

	rules Rules
}

func NewLedger(name string, rules Rules, rtmTokens int) *Ledger {
	return &Ledger{
		Name:   name,
		Budget: rules.StartingBudget,
		RTM:    rtmTokens,
		ByRole: map[Role][]Player{},
		rules:  rules,
	}
}

func (l *Ledger) SetTeam(team string) { l.Team = team }

// TeamSlug is the normalized slug of the participant's chosen team, empty
// until a team is picked.
func (l *Ledger) TeamSlug() string {
	if l.Team == "" {
		return ""
	}
	return TeamSlug(l.Team)
}

// CanAdd checks every composition cap before any mutation. A failed check
// leaves the ledger untouched and names the cap that was hit.
func (l *Ledger) CanAdd(p Player) Verdict {
	caps := l.rules.Caps
	if len(l.Players) >= caps.Squad {
		return Verdict{Reason: "max squad size reached"}
	}
	if l.rules.Overseas(p) && len(l.Overseas) >= caps.Overseas {
		return Verdict{Reason: "max overseas players reached"}
	}
	var limit int
	var reason string
	switch p.Role {
	case RoleWicketKeeper:
		limit, reason = caps.WicketKeepers, "max wicket-keepers reached"
	case RoleAllRounder:
		limit, reason = caps.AllRounders, "max all-rounders reached"
	case RoleBatsman:
		limit, reason = caps.Batsmen, "max batsmen reached"
	case RoleBowler:
		limit, reason = caps.Bowlers, "max bowlers reached"
	default:
		// Unknown roles only count against the total squad cap.
		return Verdict{OK: true}
	}
	if len(l.ByRole[p.Role]) >= limit {
		return Verdict{Reason: reason}
	}
	return Verdict{OK: true}
}

// Commit adds a player and deducts the winning amount in one step. Callers
// must have passed CanAdd and an affordability check first; the budget guard
// here is the last line keeping it non-negative.
func (l *Ledger) Commit(p Player, amount float64) error {
	if amount > l.Budget {
		return ErrInsufficientBudget
	}
	l.Players = append(l.Players, p)
	l.ByRole[p.Role] = append(l.ByRole[p.Role], p)
	if l.rules.Overseas(p) {
		l.Overseas = append(l.Overseas, p)
	}
	l.Budget -= amount
	return nil
}
