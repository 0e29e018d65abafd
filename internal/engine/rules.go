package engine

import "strings"

// IncrementTier is one row of the bid increment schedule: bids strictly below
// Below advance by Step. A zero Below marks the open-ended top tier.
type IncrementTier struct {
	Below float64 `yaml:"below" json:"below"`
	Step  float64 `yaml:"step" json:"step"`
}

type Caps struct {
	Squad         int `yaml:"squad" json:"squad"`
	Batsmen       int `yaml:"batsmen" json:"batsmen"`
	Bowlers       int `yaml:"bowlers" json:"bowlers"`
	AllRounders   int `yaml:"all_rounders" json:"all_rounders"`
	WicketKeepers int `yaml:"wicket_keepers" json:"wicket_keepers"`
	Overseas      int `yaml:"overseas" json:"overseas"`
}

// Rules holds every tunable policy of an auction. The engine treats it as
// immutable once a room is created.
type Rules struct {
	StartingBudget float64
	RetainedCount  int

	TimerBase  int // seconds when a player goes up
	TimerBonus int // seconds added per successful bid
	TimerCap   int // timer never exceeds this
	RTMWindow  int // seconds of a right-to-match window

	Increments []IncrementTier
	BasePrices map[Role]float64
	Caps       Caps

	// HomeNations lists country/nationality values that count as domestic.
	HomeNations []string
}

func DefaultRules() Rules {
	return Rules{
		StartingBudget: 100,
		RetainedCount:  5,
		TimerBase:      10,
		TimerBonus:     5,
		TimerCap:       30,
		RTMWindow:      10,
		Increments: []IncrementTier{
			{Below: 5, Step: 0.5},
			{Below: 10, Step: 1},
			{Below: 20, Step: 2},
			{Step: 5},
		},
		BasePrices: map[Role]float64{
			RoleWicketKeeper: 2,
			RoleAllRounder:   2,
			RoleBatsman:      1.5,
			RoleBowler:       1,
			RoleUnknown:      1,
		},
		Caps: Caps{
			Squad:         25,
			Batsmen:       9,
			Bowlers:       10,
			AllRounders:   8,
			WicketKeepers: 4,
			Overseas:      8,
		},
		HomeNations: []string{"india", "indian"},
	}
}

// Increment returns the bid step in effect for the given running bid.
func (r Rules) Increment(bid float64) float64 {
	for _, t := range r.Increments {
		if t.Below > 0 && bid < t.Below {
			return t.Step
		}
	}
	if n := len(r.Increments); n > 0 {
		return r.Increments[n-1].Step
	}
	return 1
}

// BasePrice is the opening bid for a player, looked up by role.
func (r Rules) BasePrice(p Player) float64 {
	if price, ok := r.BasePrices[p.Role]; ok {
		return price
	}
	return r.BasePrices[RoleUnknown]
}

// Overseas reports whether a player counts against the overseas cap.
// Country takes precedence over Nationality; an absent value is domestic
// so missing data never blocks a sale.
func (r Rules) Overseas(p Player) bool {
	origin := p.Country
	if origin == "" {
		origin = p.Nationality
	}
	if origin == "" {
		return false
	}
	origin = strings.ToLower(origin)
	for _, home := range r.HomeNations {
		if origin == strings.ToLower(home) {
			return false
		}
	}
	return true
}
