package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCanAdd_RoleCaps(t *testing.T) {
	r := DefaultRules()
	r.Caps = Caps{Squad: 100, Batsmen: 2, Bowlers: 1, AllRounders: 1, WicketKeepers: 1, Overseas: 100}
	l := NewLedger("u", r, 3)

	require.NoError(t, l.Commit(Player{Name: "B1", Role: RoleBatsman}, 0))
	require.NoError(t, l.Commit(Player{Name: "B2", Role: RoleBatsman}, 0))

	v := l.CanAdd(Player{Name: "B3", Role: RoleBatsman})
	assert.False(t, v.OK)
	assert.Equal(t, "max batsmen reached", v.Reason)

	assert.True(t, l.CanAdd(Player{Name: "W1", Role: RoleWicketKeeper}).OK)
	require.NoError(t, l.Commit(Player{Name: "W1", Role: RoleWicketKeeper}, 0))
	assert.False(t, l.CanAdd(Player{Name: "W2", Role: RoleWicketKeeper}).OK)
}

func TestLedgerCanAdd_SquadCap(t *testing.T) {
	r := DefaultRules()
	r.Caps.Squad = 1
	l := NewLedger("u", r, 3)

	require.NoError(t, l.Commit(Player{Name: "P1", Role: RoleBowler}, 0))
	v := l.CanAdd(Player{Name: "P2", Role: RoleBowler})
	assert.False(t, v.OK)
	assert.Equal(t, "max squad size reached", v.Reason)
}

func TestLedgerCanAdd_OverseasCap(t *testing.T) {
	r := DefaultRules()
	r.Caps.Overseas = 1
	l := NewLedger("u", r, 3)

	require.NoError(t, l.Commit(Player{Name: "O1", Role: RoleBowler, Country: "Australia"}, 0))
	assert.Len(t, l.Overseas, 1)

	v := l.CanAdd(Player{Name: "O2", Role: RoleBowler, Country: "England"})
	assert.False(t, v.OK)
	assert.Equal(t, "max overseas players reached", v.Reason)

	// Domestic players are unaffected by the overseas cap.
	assert.True(t, l.CanAdd(Player{Name: "D1", Role: RoleBowler, Country: "India"}).OK)
}

func TestOverseasDetection(t *testing.T) {
	r := DefaultRules()
	cases := []struct {
		name string
		p    Player
		want bool
	}{
		{"country home", Player{Country: "India"}, false},
		{"country foreign", Player{Country: "Australia"}, true},
		{"nationality fallback", Player{Nationality: "Indian"}, false},
		{"nationality foreign", Player{Nationality: "English"}, true},
		{"country wins over nationality", Player{Country: "India", Nationality: "English"}, false},
		{"unknown defaults to domestic", Player{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Overseas(tc.p))
		})
	}
}

func TestLedgerCommit_BudgetNeverNegative(t *testing.T) {
	l := NewLedger("u", DefaultRules(), 3)

	require.NoError(t, l.Commit(Player{Name: "P1", Role: RoleBowler}, 60))
	assert.Equal(t, 40.0, l.Budget)

	err := l.Commit(Player{Name: "P2", Role: RoleBowler}, 41)
	assert.ErrorIs(t, err, ErrInsufficientBudget)
	assert.Equal(t, 40.0, l.Budget)
	assert.Len(t, l.Players, 1)
}

func TestLedgerCommit_PartitionsByRole(t *testing.T) {
	l := NewLedger("u", DefaultRules(), 3)

	require.NoError(t, l.Commit(Player{Name: "B", Role: RoleBatsman}, 1))
	require.NoError(t, l.Commit(Player{Name: "W", Role: RoleWicketKeeper}, 1))
	require.NoError(t, l.Commit(Player{Name: "A", Role: RoleAllRounder, Country: "Australia"}, 1))

	assert.Len(t, l.Players, 3)
	assert.Len(t, l.ByRole[RoleBatsman], 1)
	assert.Len(t, l.ByRole[RoleWicketKeeper], 1)
	assert.Len(t, l.ByRole[RoleAllRounder], 1)
	assert.Len(t, l.Overseas, 1)
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"Wicket-Keeper":   RoleWicketKeeper,
		"wicketkeeper":    RoleWicketKeeper,
		"Keeper":          RoleWicketKeeper,
		"All-Rounder":     RoleAllRounder,
		"allrounder":      RoleAllRounder,
		"Batsman":         RoleBatsman,
		"Batter":          RoleBatsman,
		"Bowler":          RoleBowler,
		"fast bowler":     RoleBowler,
		"mystery spinner": RoleUnknown,
		"":                RoleUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseRole(in), "role %q", in)
	}
}

func TestBasePriceTable(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 2.0, r.BasePrice(Player{Role: RoleWicketKeeper}))
	assert.Equal(t, 2.0, r.BasePrice(Player{Role: RoleAllRounder}))
	assert.Equal(t, 1.5, r.BasePrice(Player{Role: RoleBatsman}))
	assert.Equal(t, 1.0, r.BasePrice(Player{Role: RoleBowler}))
	assert.Equal(t, 1.0, r.BasePrice(Player{Role: RoleUnknown}))
}
