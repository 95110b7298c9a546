package balancer

import (
	"context"
	"iter"
	"math/big"
	rand "math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

// samplingAttemptFactor bounds the shuffle loop: at most factor×target
// attempts before sampling gives up with whatever it found.
const samplingAttemptFactor = 15

// partitionCount is the exact number of unordered partitions of n players
// into numTeams teams of teamSize: n! / (teamSize!^numTeams * numTeams!).
// Exact integer arithmetic so a large pool cannot overflow into the wrong
// generation mode.
func partitionCount(n, numTeams, teamSize int) *big.Int {
	if n != numTeams*teamSize {
		return big.NewInt(0)
	}
	count := new(big.Int).MulRange(1, int64(n))
	teamPerms := new(big.Int).MulRange(1, int64(teamSize))
	teamPerms.Exp(teamPerms, big.NewInt(int64(numTeams)), nil)
	count.Quo(count, teamPerms)
	count.Quo(count, new(big.Int).MulRange(1, int64(numTeams)))
	return count
}

func factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(n))
}

// exactPartitions enumerates every partition of the player indices [0, n)
// into numTeams teams of teamSize, as a lazy, finite, non-restartable
// sequence. With labeled=false the first unassigned index is anchored into
// the current team, so each unordered partition appears exactly once and the
// yield count equals partitionCount. With labeled=true (pinned constraints
// make team indices semantic) every labeled assignment is visited instead.
// The recursion checks ctx and stops early on cancellation.
func exactPartitions(ctx context.Context, n, numTeams, teamSize int, labeled bool) iter.Seq[[][]int] {
	return func(yield func([][]int) bool) {
		teams := make([][]int, numTeams)

		var fill func(team int, remaining []int) bool
		fill = func(team int, remaining []int) bool {
			if ctx.Err() != nil {
				return false
			}
			if team == numTeams-1 {
				teams[team] = remaining
				out := make([][]int, numTeams)
				for i, t := range teams {
					out[i] = slices.Clone(t)
				}
				return yield(out)
			}

			chosen := make([]int, 0, teamSize)
			candidates := remaining
			if !labeled {
				// Anchor the lowest remaining index to kill team-label
				// permutations of the same partition.
				chosen = append(chosen, remaining[0])
				candidates = remaining[1:]
			}

			var pick func(start int) bool
			pick = func(start int) bool {
				if len(chosen) == teamSize {
					teams[team] = chosen
					return fill(team+1, without(remaining, chosen))
				}
				need := teamSize - len(chosen)
				for i := start; i <= len(candidates)-need; i++ {
					chosen = append(chosen, candidates[i])
					ok := pick(i + 1)
					chosen = chosen[:len(chosen)-1]
					if !ok {
						return false
					}
				}
				return true
			}
			return pick(0)
		}

		pool := make([]int, n)
		for i := range pool {
			pool[i] = i
		}
		fill(0, pool)
	}
}

// without returns remaining minus the chosen indices, preserving order.
func without(remaining, chosen []int) []int {
	drop := make(map[int]struct{}, len(chosen))
	for _, c := range chosen {
		drop[c] = struct{}{}
	}
	rest := make([]int, 0, len(remaining)-len(chosen))
	for _, r := range remaining {
		if _, ok := drop[r]; !ok {
			rest = append(rest, r)
		}
	}
	return rest
}

type samplingStats struct {
	Attempts   int
	Duplicates int
	Exhausted  bool
}

// sampledPartitions draws up to target distinct partitions by shuffling the
// index list and slicing it into contiguous teams. Duplicates are detected
// via canonical signatures; the attempt budget guarantees termination even
// when the space is smaller than the target. Stats are valid once the
// sequence has been fully consumed.
func sampledPartitions(ctx context.Context, n, numTeams, teamSize, target int, labeled bool, rng *rand.Rand, stats *samplingStats) iter.Seq[[][]int] {
	return func(yield func([][]int) bool) {
		seen := make(map[string]struct{}, target)
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}

		budget := samplingAttemptFactor * target
		for stats.Attempts = 0; stats.Attempts < budget; stats.Attempts++ {
			if len(seen) >= target {
				return
			}
			if ctx.Err() != nil {
				return
			}

			rng.Shuffle(n, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})

			teams := make([][]int, numTeams)
			for t := 0; t < numTeams; t++ {
				team := slices.Clone(order[t*teamSize : (t+1)*teamSize])
				slices.Sort(team)
				teams[t] = team
			}

			key := signature(teams, labeled)
			if _, dup := seen[key]; dup {
				stats.Duplicates++
				continue
			}
			seen[key] = struct{}{}

			if !yield(teams) {
				return
			}
		}
		stats.Exhausted = len(seen) < target
	}
}

// signature canonicalizes a partition for duplicate detection. Teams arrive
// with sorted members; without pinned constraints the team order itself is
// also canonicalized so relabeled copies collapse to one key.
func signature(teams [][]int, labeled bool) string {
	keys := make([]string, len(teams))
	for i, team := range teams {
		var b strings.Builder
		for j, idx := range team {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(idx))
		}
		keys[i] = b.String()
	}
	if !labeled {
		slices.Sort(keys)
	}
	return strings.Join(keys, "|")
}
