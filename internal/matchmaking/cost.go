package matchmaking

import "sort"

// candidate is the immutable per-participant snapshot the evaluator and
// composer work on. Snapshots are taken under the engine and queue locks;
// evaluation itself touches no shared state.
type candidate struct {
	id          string
	ratingMu    float64
	cost        CostConfig
	categories  map[string][]int
	waitSeconds float64
}

// Evaluation is the evaluator's output: the scalar cost of a candidate
// assignment, plus the majority-chosen variant per category.
type Evaluation struct {
	Cost float64
	// Categories maps each configured category to the variant index chosen
	// by majority vote across included participants, ties broken by lowest
	// index.
	Categories map[string]int
}

// evaluateCost scores a candidate assignment. Cost is the sum over
// participants of the excess team-average spread and individual rating
// range (weighted per participant), plus per-category mismatch penalties,
// minus one point per second of queue wait. Deterministic for identical
// inputs; mutates nothing.
func evaluateCost(teams [][]candidate, cfg *QueueConfig) Evaluation {
	// Team averages use the configured team size, so partially filled
	// teams score low while the composer is still placing units.
	var minAvg, maxAvg float64
	var minRating, maxRating float64
	teamsSeen, playersSeen := 0, 0
	for _, team := range teams {
		var sum float64
		for _, p := range team {
			sum += p.ratingMu
			if playersSeen == 0 || p.ratingMu < minRating {
				minRating = p.ratingMu
			}
			if playersSeen == 0 || p.ratingMu > maxRating {
				maxRating = p.ratingMu
			}
			playersSeen++
		}
		avg := sum / float64(cfg.TeamSize)
		if teamsSeen == 0 || avg < minAvg {
			minAvg = avg
		}
		if teamsSeen == 0 || avg > maxAvg {
			maxAvg = avg
		}
		teamsSeen++
	}
	spread := maxAvg - minAvg
	ratingRange := maxRating - minRating

	chosen := majorityVariants(teams, cfg)

	var cost float64
	for _, team := range teams {
		for _, p := range team {
			cost += max0(spread-p.cost.AcceptableSpread) * p.cost.CostPerSpread
			cost += max0(ratingRange-p.cost.AcceptableRange) * p.cost.CostPerRange
			for name, penalty := range p.cost.WrongCategoryCost {
				variant, ok := chosen[name]
				if !ok {
					continue
				}
				if !containsInt(p.categories[name], variant) {
					cost += penalty
				}
			}
			cost -= p.waitSeconds
		}
	}

	return Evaluation{Cost: cost, Categories: chosen}
}

// majorityVariants tallies every included participant's memberships per
// configured category. The most common variant wins; ties break toward
// the lowest variant index, and a category nobody voted in defaults to
// variant 0.
func majorityVariants(teams [][]candidate, cfg *QueueConfig) map[string]int {
	chosen := make(map[string]int, len(cfg.Categories))
	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		counts := map[int]int{}
		for _, team := range teams {
			for _, p := range team {
				for _, v := range p.categories[name] {
					counts[v]++
				}
			}
		}
		best, bestCount := 0, 0
		for v, n := range counts {
			if n > bestCount || (n == bestCount && v < best) {
				best, bestCount = v, n
			}
		}
		chosen[name] = best
	}
	return chosen
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
