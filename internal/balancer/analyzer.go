package balancer

import "math/big"

// Sizing bounds for the analyzer's recommendations.
const (
	// DefaultMaxExactPartitions is the ceiling below which the generator
	// enumerates the full partition space instead of sampling.
	DefaultMaxExactPartitions = 50000

	maxRecommendedSize = 50000
	basePoolSize       = 500
	maxPoolSize        = 5000
	baseSampleSize     = 10000
)

// Analysis is the up-front difficulty estimate for a pool/config pair.
type Analysis struct {
	// TheoreticalMax is the exact count of unordered partitions of the
	// truncated pool, as a decimal string (the raw number exceeds int64
	// for modest pools).
	TheoreticalMax string `json:"theoreticalMax"`
	// DifficultyScore is in [0, 1]. Exactly 1.0 iff the pool has no
	// leftover players, i.e. every combination must reuse all of them.
	DifficultyScore       float64 `json:"difficultyScore"`
	RecommendedPoolSize   int     `json:"recommendedPoolSize"`
	RecommendedSampleSize int     `json:"recommendedSampleSize"`

	theoreticalMax *big.Int
}

// Analyze estimates how hard it will be to find diverse balanced options for
// totalPlayers under cfg. It only recommends; cfg is never mutated.
func Analyze(totalPlayers int, cfg Config) Analysis {
	required := cfg.NumTeams * cfg.TeamSize

	max := big.NewInt(0)
	if totalPlayers >= required {
		max = partitionCount(required, cfg.NumTeams, cfg.TeamSize)
	}

	var difficulty float64
	switch {
	case totalPlayers <= required:
		// No leftover players are possible: every valid combination uses
		// the whole pool, so distinctness can only come from grouping.
		difficulty = 1.0
	default:
		difficulty = float64(required) / float64(totalPlayers)
	}

	pool := basePoolSize + int(difficulty*float64(maxPoolSize-basePoolSize))
	sample := baseSampleSize + int(difficulty*float64(maxRecommendedSize-baseSampleSize))

	// Constraint pressure shrinks the valid fraction of the space, so ask
	// for proportionally more raw candidates (but stay within the runtime
	// cap either way).
	if n := len(cfg.Constraints); n > 0 {
		pool = min(maxRecommendedSize, pool+500*n)
		sample = min(maxRecommendedSize, sample+5000*n)
	}

	return Analysis{
		TheoreticalMax:        max.String(),
		DifficultyScore:       difficulty,
		RecommendedPoolSize:   pool,
		RecommendedSampleSize: sample,
		theoreticalMax:        max,
	}
}
