package balancer

// maxTeamOverlap is the hard cap on players shared by any single team pair
// between two selected combinations, independent of team size. It blocks
// near-duplicate "permuted" combinations that a whole-combination ratio
// would let through.
const maxTeamOverlap = 3

type selectorStats struct {
	CapRejected        int  `json:"capRejected"`
	RatioRejected      int  `json:"ratioRejected"`
	Widened            bool `json:"widened"`
	FallbackUnfiltered bool `json:"fallbackUnfiltered"`
}

// selectDiverse greedily picks up to minRequired pairwise-distinct
// combinations from candidates, which must already be sorted by ascending
// balance score. window limits the first pass; a second pass widens to the
// full candidate list with a relaxed ratio threshold. When difficulty
// indicates a pool with no leftover players, only the overlap-count cap
// applies (every combination's player set is identical by construction, so
// the whole-combination ratio is meaningless).
func selectDiverse(candidates []*combination, minRequired, window int, threshold, difficulty float64) ([]*combination, selectorStats) {
	var stats selectorStats
	if len(candidates) == 0 {
		return nil, stats
	}

	capOnly := difficulty >= 1.0
	effective := threshold * (1 - difficulty*0.5)
	window = min(max(window, minRequired), len(candidates))

	// The best-balanced candidate is always in.
	selected := []*combination{candidates[0]}
	inSelected := map[*combination]struct{}{candidates[0]: {}}

	pass := func(limit int, eff float64) {
		for _, cand := range candidates[1:limit] {
			if len(selected) >= minRequired {
				return
			}
			if _, ok := inSelected[cand]; ok {
				continue
			}
			maxCount, maxRatio := worstOverlap(cand, selected)
			if maxCount > maxTeamOverlap {
				stats.CapRejected++
				continue
			}
			if !capOnly && 1-maxRatio < eff {
				stats.RatioRejected++
				continue
			}
			selected = append(selected, cand)
			inSelected[cand] = struct{}{}
		}
	}

	pass(window, effective)
	if len(selected) < minRequired {
		stats.Widened = true
		pass(len(candidates), effective*0.5)
	}

	// Absolute fallback: three distinct options is the floor the caller can
	// work with. Better to hand back the best-balanced ones unfiltered than
	// an under-filled result when candidates exist.
	if len(selected) < minRequired && len(selected) < 3 && len(selected) < len(candidates) {
		stats.FallbackUnfiltered = true
		selected = candidates[:min(minRequired, len(candidates))]
	}

	return selected, stats
}

// worstOverlap compares every team in cand against every team in every
// selected combination and returns the maximum shared-player count and the
// maximum |intersection|/|union| ratio across all team pairs.
func worstOverlap(cand *combination, selected []*combination) (int, float64) {
	maxCount := 0
	maxRatio := 0.0
	for _, sel := range selected {
		for _, a := range cand.idSets {
			for _, b := range sel.idSets {
				inter := 0
				for id := range a {
					if _, ok := b[id]; ok {
						inter++
					}
				}
				if inter > maxCount {
					maxCount = inter
				}
				union := len(a) + len(b) - inter
				if union > 0 {
					if ratio := float64(inter) / float64(union); ratio > maxRatio {
						maxRatio = ratio
					}
				}
			}
		}
	}
	return maxCount, maxRatio
}
