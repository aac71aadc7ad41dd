package matchmaking

import "sort"

// unit is an atomic block of candidates: a full party, or a single
// unpartied participant. The composer never splits a unit across teams.
type unit struct {
	// leader is the lowest member id; units are visited in ascending
	// leader order so equal-cost placements resolve the same way on every
	// run.
	leader  string
	members []candidate
}

// compose fills teamCount*teamSize slots from the given units at greedily
// minimal cost. Each round it trials every remaining unit in every team
// with spare capacity, keeps the placement with the lowest evaluated cost
// (first found wins ties), and commits it. Returns
// ErrCompositionInfeasible when a round finds no unit that fits.
func compose(units []unit, cfg *QueueConfig) ([][]candidate, Evaluation, error) {
	sort.Slice(units, func(i, j int) bool { return units[i].leader < units[j].leader })

	teams := make([][]candidate, cfg.TeamCount)
	used := make([]bool, len(units))
	placed := 0
	total := cfg.TotalSlots()

	for placed < total {
		bestUnit, bestTeam := -1, -1
		bestCost := 0.0

		for ui := range units {
			if used[ui] {
				continue
			}
			for ti := 0; ti < cfg.TeamCount; ti++ {
				if len(teams[ti])+len(units[ui].members) > cfg.TeamSize {
					continue
				}
				trial := make([][]candidate, cfg.TeamCount)
				copy(trial, teams)
				trial[ti] = append(append([]candidate{}, teams[ti]...), units[ui].members...)
				cost := evaluateCost(trial, cfg).Cost
				if bestUnit < 0 || cost < bestCost {
					bestUnit, bestTeam, bestCost = ui, ti, cost
				}
			}
		}

		if bestUnit < 0 {
			return nil, Evaluation{}, ErrCompositionInfeasible
		}
		teams[bestTeam] = append(teams[bestTeam], units[bestUnit].members...)
		used[bestUnit] = true
		placed += len(units[bestUnit].members)
	}

	return teams, evaluateCost(teams, cfg), nil
}
