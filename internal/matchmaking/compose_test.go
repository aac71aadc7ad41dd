package matchmaking

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func soloUnits(ratings map[string]float64, cost CostConfig) []unit {
	units := make([]unit, 0, len(ratings))
	for id, mu := range ratings {
		units = append(units, unit{
			leader:  id,
			members: []candidate{{id: id, ratingMu: mu, cost: cost}},
		})
	}
	return units
}

func partyUnit(cost CostConfig, ratings map[string]float64) unit {
	u := unit{}
	for id, mu := range ratings {
		if u.leader == "" || id < u.leader {
			u.leader = id
		}
		u.members = append(u.members, candidate{id: id, ratingMu: mu, cost: cost})
	}
	return u
}

func flatten(teams [][]candidate) map[string]int {
	seen := map[string]int{}
	for _, team := range teams {
		for _, p := range team {
			seen[p.id]++
		}
	}
	return seen
}

func TestComposeFillsEverySlotExactlyOnce(t *testing.T) {
	tests := []struct {
		name      string
		teamSize  int
		teamCount int
		poolSize  int
	}{
		{"exact 2v2", 2, 2, 4},
		{"surplus 2v2", 2, 2, 7},
		{"5v5", 5, 2, 12},
		{"three teams", 3, 3, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.teamSize, tt.teamCount)
			ratings := map[string]float64{}
			for i := 0; i < tt.poolSize; i++ {
				ratings[fmt.Sprintf("p%02d", i)] = 20 + float64(i)
			}
			teams, _, err := compose(soloUnits(ratings, cfg.DefaultCost), cfg)
			if err != nil {
				t.Fatalf("compose: %v", err)
			}
			seen := flatten(teams)
			if len(seen) != cfg.TotalSlots() {
				t.Fatalf("placed %d participants, want %d", len(seen), cfg.TotalSlots())
			}
			for id, n := range seen {
				if n != 1 {
					t.Errorf("participant %s placed %d times", id, n)
				}
			}
			for i, team := range teams {
				if len(team) != tt.teamSize {
					t.Errorf("team %d has %d members, want %d", i, len(team), tt.teamSize)
				}
			}
		})
	}
}

func TestComposePartyCohesion(t *testing.T) {
	cfg := testConfig(3, 2)
	units := soloUnits(map[string]float64{
		"s1": 24, "s2": 25, "s3": 26,
	}, cfg.DefaultCost)
	// The party has been waiting; the wait subsidy makes its placement the
	// cheapest first move, while a team still has three open slots.
	party := partyUnit(cfg.DefaultCost, map[string]float64{
		"g1": 20, "g2": 30, "g3": 27,
	})
	for i := range party.members {
		party.members[i].waitSeconds = 120
	}
	units = append(units, party)

	teams, _, err := compose(units, cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	partyTeam := -1
	count := 0
	for i, team := range teams {
		for _, p := range team {
			if p.id == "g1" || p.id == "g2" || p.id == "g3" {
				if partyTeam >= 0 && partyTeam != i {
					t.Fatalf("party split across teams %d and %d", partyTeam, i)
				}
				partyTeam = i
				count++
			}
		}
	}
	if count != 3 {
		t.Fatalf("placed %d party members, want all 3 together", count)
	}
}

func TestComposeInfeasiblePartySizes(t *testing.T) {
	// Two parties of three can never tile two teams of four with two
	// singles: the second party cannot fit next to the first.
	cfg := testConfig(4, 2)
	units := []unit{
		partyUnit(cfg.DefaultCost, map[string]float64{"a1": 25, "a2": 25, "a3": 25}),
		partyUnit(cfg.DefaultCost, map[string]float64{"b1": 25, "b2": 25, "b3": 25}),
		partyUnit(cfg.DefaultCost, map[string]float64{"c1": 25, "c2": 25, "c3": 25}),
	}
	_, _, err := compose(units, cfg)
	if !errors.Is(err, ErrCompositionInfeasible) {
		t.Fatalf("err = %v, want ErrCompositionInfeasible", err)
	}
}

func TestComposeDeterministicTieBreak(t *testing.T) {
	cfg := testConfig(2, 2)
	ratings := map[string]float64{"a": 25, "b": 25, "c": 25, "d": 25}

	first, _, err := compose(soloUnits(ratings, cfg.DefaultCost), cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for n := 0; n < 25; n++ {
		again, _, err := compose(soloUnits(ratings, cfg.DefaultCost), cfg)
		if err != nil {
			t.Fatalf("run %d: compose: %v", n, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: assignment differs despite identical inputs", n)
		}
	}
}

func TestComposePrefersBalancedTeams(t *testing.T) {
	cfg := testConfig(2, 2)
	cost := CostConfig{CostPerSpread: 1.0}
	teams, eval, err := compose(soloUnits(map[string]float64{
		"hi1": 30, "hi2": 30, "lo1": 20, "lo2": 20,
	}, cost), cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	// One high and one low per team is the only zero-spread split.
	for i, team := range teams {
		var sum float64
		for _, p := range team {
			sum += p.ratingMu
		}
		if sum != 50 {
			t.Errorf("team %d rating sum = %v, want 50", i, sum)
		}
	}
	if eval.Cost != 0 {
		t.Errorf("final cost = %v, want 0", eval.Cost)
	}
}
