// Package squads loads the auction player pool from a squads JSON file and
// normalizes it into the engine's types.
package squads

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
)

// rawSquad mirrors the on-disk squads.json shape.
type rawSquad struct {
	Squad   string      `json:"squad"`
	Players []rawPlayer `json:"players"`
}

type rawPlayer struct {
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	Nationality string   `json:"nationality"`
	Stats       rawStats `json:"stats"`
}

type rawStats struct {
	Role         string `json:"role"`
	PreviousTeam string `json:"previousTeam"`
	Country      string `json:"country"`
	IsOverseas   bool   `json:"isOverseas"`
}

// Load reads path and returns the normalized squads. Squads with no slug or
// no players are dropped rather than erroring, since the datasets in the
// wild carry the odd empty entry.
func Load(path string) ([]engine.Squad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read squads file: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw squads JSON.
func Parse(data []byte) ([]engine.Squad, error) {
	var raw []rawSquad
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode squads: %w", err)
	}

	out := make([]engine.Squad, 0, len(raw))
	for _, rs := range raw {
		slug := strings.ToLower(strings.TrimSpace(rs.Squad))
		if slug == "" || len(rs.Players) == 0 {
			continue
		}
		sq := engine.Squad{Slug: slug, Players: make([]engine.Player, 0, len(rs.Players))}
		for _, rp := range rs.Players {
			sq.Players = append(sq.Players, normalize(rp))
		}
		out = append(out, sq)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("squads file contains no usable squads")
	}
	return out, nil
}

func normalize(rp rawPlayer) engine.Player {
	country := rp.Country
	if country == "" {
		country = rp.Stats.Country
	}
	if country == "" && rp.Stats.IsOverseas {
		// Explicit flag with no country field. Any non-home value works.
		country = "overseas"
	}
	return engine.Player{
		Name:         rp.Name,
		Role:         engine.ParseRole(rp.Stats.Role),
		Country:      country,
		Nationality:  rp.Nationality,
		PreviousTeam: rp.Stats.PreviousTeam,
	}
}

// Demo returns a tiny built-in pool so the server stays usable when no
// squads file is configured.
func Demo() []engine.Squad {
	return []engine.Squad{
		{
			Slug: "demo-squad",
			Players: []engine.Player{
				{Name: "Demo Player 1", Role: engine.RoleBatsman},
				{Name: "Demo Player 2", Role: engine.RoleBowler},
			},
		},
	}
}
