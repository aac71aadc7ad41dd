// Package rating implements the Weng-Lin Bayesian approximation rating
// system (Bradley-Terry model with full pairing) for matches between any
// number of teams.
package rating

import "math"

// Rating is a player's skill estimate.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// New returns the default rating for an unrated player.
func New() Rating {
	return Rating{Mu: 25.0, Sigma: 25.0 / 3.0}
}

// Config holds the Weng-Lin model parameters.
type Config struct {
	// Beta is the skill-class width: the difference in Mu that gives the
	// stronger player an ~80% win chance.
	Beta float64
	// UncertaintyTolerance is the floor applied to the sigma update factor
	// so that sigma never collapses to zero or goes negative.
	UncertaintyTolerance float64
}

// DefaultConfig mirrors the common Weng-Lin defaults.
func DefaultConfig() Config {
	return Config{
		Beta:                 25.0 / 6.0,
		UncertaintyTolerance: 0.000001,
	}
}

// RateTeams plays out one match between len(teams) teams and returns the
// updated ratings in the same shape as the input. ranks[i] is team i's
// placement, 1 being first; equal ranks mean a draw between those teams.
// The input slices are not modified.
func RateTeams(teams [][]Rating, ranks []int, cfg Config) [][]Rating {
	mus := make([]float64, len(teams))
	variances := make([]float64, len(teams))
	for i, team := range teams {
		for _, r := range team {
			mus[i] += r.Mu
			variances[i] += r.Sigma * r.Sigma
		}
	}

	twoBetaSq := 2.0 * cfg.Beta * cfg.Beta
	result := make([][]Rating, len(teams))
	for i, team := range teams {
		var omega, delta float64
		for q := range teams {
			if q == i {
				continue
			}
			c := math.Sqrt(variances[i] + variances[q] + twoBetaSq)
			expI := math.Exp(mus[i] / c)
			expQ := math.Exp(mus[q] / c)
			p := expI / (expI + expQ)

			var score float64
			switch {
			case ranks[q] > ranks[i]:
				score = 1.0
			case ranks[q] == ranks[i]:
				score = 0.5
			}

			omega += (variances[i] / c) * (score - p)
			gamma := math.Sqrt(variances[i]) / c
			delta += gamma * (variances[i] / (c * c)) * p * (1.0 - p)
		}

		updated := make([]Rating, len(team))
		for j, r := range team {
			weight := (r.Sigma * r.Sigma) / variances[i]
			sigmaFactor := math.Max(1.0-weight*delta, cfg.UncertaintyTolerance)
			updated[j] = Rating{
				Mu:    r.Mu + weight*omega,
				Sigma: r.Sigma * math.Sqrt(sigmaFactor),
			}
		}
		result[i] = updated
	}
	return result
}
