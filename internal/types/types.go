package types

import (
	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
	"github.com/rgoyal8/ipl-auction-backend/internal/room"
)

type ClientMessage struct {
	Type       string `json:"type"`
	Team       string `json:"team,omitempty"`
	RTMEnabled *bool  `json:"rtm_enabled,omitempty"`
	RTMPerTeam *int   `json:"rtm_per_team,omitempty"`
}

type ServerMessage struct {
	Type     string         `json:"type"` // "Snapshot" | "Error"
	Snapshot *room.Snapshot `json:"snapshot,omitempty"`
	Events   []engine.Event `json:"events,omitempty"`
	Error    string         `json:"error,omitempty"`
}
