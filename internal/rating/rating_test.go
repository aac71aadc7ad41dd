package rating

import (
	"math"
	"testing"
)

func ratingsEqualShape(t *testing.T, in, out [][]Rating) {
	t.Helper()
	if len(out) != len(in) {
		t.Fatalf("expected %d teams, got %d", len(in), len(out))
	}
	for i := range in {
		if len(out[i]) != len(in[i]) {
			t.Fatalf("team %d: expected %d players, got %d", i, len(in[i]), len(out[i]))
		}
	}
}

func TestRateTeamsWinnerGains(t *testing.T) {
	teams := [][]Rating{
		{New(), New()},
		{New(), New()},
	}
	out := RateTeams(teams, []int{1, 2}, DefaultConfig())
	ratingsEqualShape(t, teams, out)

	for _, r := range out[0] {
		if r.Mu <= 25.0 {
			t.Errorf("winner Mu = %v, want > 25", r.Mu)
		}
	}
	for _, r := range out[1] {
		if r.Mu >= 25.0 {
			t.Errorf("loser Mu = %v, want < 25", r.Mu)
		}
	}
}

func TestRateTeamsSigmaShrinks(t *testing.T) {
	teams := [][]Rating{{New()}, {New()}}
	out := RateTeams(teams, []int{1, 2}, DefaultConfig())
	for i := range out {
		for _, r := range out[i] {
			if r.Sigma >= 25.0/3.0 {
				t.Errorf("team %d: Sigma = %v, want < %v", i, r.Sigma, 25.0/3.0)
			}
			if r.Sigma <= 0 {
				t.Errorf("team %d: Sigma = %v, want > 0", i, r.Sigma)
			}
		}
	}
}

func TestRateTeamsDrawBetweenEquals(t *testing.T) {
	teams := [][]Rating{{New()}, {New()}}
	out := RateTeams(teams, []int{1, 1}, DefaultConfig())
	if math.Abs(out[0][0].Mu-25.0) > 1e-9 || math.Abs(out[1][0].Mu-25.0) > 1e-9 {
		t.Errorf("draw between equal players moved Mu: %v vs %v", out[0][0].Mu, out[1][0].Mu)
	}
}

func TestRateTeamsDrawFavorsUnderdog(t *testing.T) {
	strong := Rating{Mu: 30, Sigma: 25.0 / 3.0}
	weak := Rating{Mu: 20, Sigma: 25.0 / 3.0}
	out := RateTeams([][]Rating{{strong}, {weak}}, []int{1, 1}, DefaultConfig())
	if out[0][0].Mu >= strong.Mu {
		t.Errorf("strong player drew but gained: %v -> %v", strong.Mu, out[0][0].Mu)
	}
	if out[1][0].Mu <= weak.Mu {
		t.Errorf("weak player drew but lost: %v -> %v", weak.Mu, out[1][0].Mu)
	}
}

func TestRateTeamsMultiTeamRanks(t *testing.T) {
	teams := [][]Rating{{New()}, {New()}, {New()}}
	// Team 1 wins, the other two tie for second.
	out := RateTeams(teams, []int{2, 1, 2}, DefaultConfig())
	if out[1][0].Mu <= 25.0 {
		t.Errorf("winner Mu = %v, want > 25", out[1][0].Mu)
	}
	if math.Abs(out[0][0].Mu-out[2][0].Mu) > 1e-9 {
		t.Errorf("tied teams diverged: %v vs %v", out[0][0].Mu, out[2][0].Mu)
	}
	if out[0][0].Mu >= 25.0 {
		t.Errorf("second-place Mu = %v, want < 25", out[0][0].Mu)
	}
}

func TestRateTeamsDoesNotMutateInput(t *testing.T) {
	teams := [][]Rating{{New()}, {New()}}
	RateTeams(teams, []int{1, 2}, DefaultConfig())
	for i := range teams {
		for _, r := range teams[i] {
			if r.Mu != 25.0 || r.Sigma != 25.0/3.0 {
				t.Fatalf("input ratings were mutated: %+v", r)
			}
		}
	}
}
