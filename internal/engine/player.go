package engine

import "strings"

type Role string

const (
	RoleBatsman      Role = "batsman"
	RoleBowler       Role = "bowler"
	RoleAllRounder   Role = "all-rounder"
	RoleWicketKeeper Role = "wicket-keeper"
	RoleUnknown      Role = "unknown"
)

// ParseRole resolves a free-text role string to the closed Role set.
// Resolution happens once at ingestion; the engine never re-parses strings.
func ParseRole(s string) Role {
	r := strings.ToLower(s)
	switch {
	case strings.Contains(r, "wicket"), strings.Contains(r, "keeper"):
		return RoleWicketKeeper
	case strings.Contains(r, "all"):
		return RoleAllRounder
	case strings.Contains(r, "bat"):
		return RoleBatsman
	case strings.Contains(r, "bowl"):
		return RoleBowler
	default:
		return RoleUnknown
	}
}

type Player struct {
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	Country      string  `json:"country,omitempty"`
	Nationality  string  `json:"nationality,omitempty"`
	PreviousTeam string  `json:"previous_team,omitempty"`
	BasePrice    float64 `json:"base_price"`
}

// Squad is an ordered list of players; the first Rules.RetainedCount entries
// are retained slots and never go through open bidding.
type Squad struct {
	Slug    string   `json:"slug"`
	Players []Player `json:"players"`
}

// teamSlugs maps the short team codes clients send to squad slugs.
var teamSlugs = map[string]string{
	"csk":  "chennai-super-kings",
	"mi":   "mumbai-indians",
	"rcb":  "royal-challengers-bangalore",
	"kkr":  "kolkata-knight-riders",
	"srh":  "sunrisers-hyderabad",
	"rr":   "rajasthan-royals",
	"dc":   "delhi-capitals",
	"pbks": "punjab-kings",
}

// TeamSlug normalizes a team code or name to its squad slug.
func TeamSlug(team string) string {
	t := strings.ToLower(strings.TrimSpace(team))
	if slug, ok := teamSlugs[t]; ok {
		return slug
	}
	return strings.ReplaceAll(t, " ", "-")
}
