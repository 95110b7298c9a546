package balancer

import (
	"context"
	"math/big"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCount(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		numTeams int
		teamSize int
		want     int64
	}{
		{name: "four players two pairs", n: 4, numTeams: 2, teamSize: 2, want: 3},
		{name: "six players two trios", n: 6, numTeams: 2, teamSize: 3, want: 10},
		{name: "twelve players two sixes", n: 12, numTeams: 2, teamSize: 6, want: 462},
		{name: "nine players three trios", n: 9, numTeams: 3, teamSize: 3, want: 280},
		{name: "size mismatch", n: 10, numTeams: 2, teamSize: 4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := partitionCount(tt.n, tt.numTeams, tt.teamSize)
			assert.Equal(t, 0, got.Cmp(big.NewInt(tt.want)), "got %s", got)
		})
	}
}

func TestExactPartitionsUnlabeledCountMatchesFormula(t *testing.T) {
	for _, shape := range []struct{ numTeams, teamSize int }{
		{2, 2}, {2, 3}, {3, 2}, {3, 3},
	} {
		n := shape.numTeams * shape.teamSize
		want := partitionCount(n, shape.numTeams, shape.teamSize).Int64()

		var got int64
		seen := make(map[string]struct{})
		for teams := range exactPartitions(context.Background(), n, shape.numTeams, shape.teamSize, false) {
			got++
			seen[signature(teams, false)] = struct{}{}
		}
		assert.Equal(t, want, got, "%d teams of %d", shape.numTeams, shape.teamSize)
		assert.Len(t, seen, int(want), "every yielded partition must be distinct")
	}
}

func TestExactPartitionsLabeledCountsTeamOrderings(t *testing.T) {
	// 4 players, 2 teams of 2: 3 unordered partitions, 6 labeled assignments.
	var count int
	for range exactPartitions(context.Background(), 4, 2, 2, true) {
		count++
	}
	assert.Equal(t, 6, count)
}

func TestExactPartitionsTeamsAreDisjointAndComplete(t *testing.T) {
	for teams := range exactPartitions(context.Background(), 6, 2, 3, false) {
		all := make(map[int]struct{})
		for _, team := range teams {
			require.Len(t, team, 3)
			for _, idx := range team {
				_, dup := all[idx]
				require.False(t, dup, "index %d assigned twice", idx)
				all[idx] = struct{}{}
			}
		}
		require.Len(t, all, 6)
	}
}

func TestExactPartitionsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count int
	for range exactPartitions(ctx, 12, 2, 6, false) {
		count++
		if count == 5 {
			cancel()
		}
	}
	assert.LessOrEqual(t, count, 6, "cancellation must stop enumeration promptly")
}

func TestSampledPartitionsYieldsDistinctValidPartitions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var stats samplingStats

	seen := make(map[string]struct{})
	for teams := range sampledPartitions(context.Background(), 12, 2, 6, 50, false, rng, &stats) {
		key := signature(teams, false)
		_, dup := seen[key]
		require.False(t, dup, "sampler must never yield a duplicate")
		seen[key] = struct{}{}

		all := make(map[int]struct{})
		for _, team := range teams {
			require.Len(t, team, 6)
			for _, idx := range team {
				all[idx] = struct{}{}
			}
		}
		require.Len(t, all, 12)
	}

	assert.Len(t, seen, 50)
	assert.False(t, stats.Exhausted)
}

func TestSampledPartitionsExhaustsSmallSpace(t *testing.T) {
	// Only 3 unordered partitions exist; a target of 100 cannot be met.
	rng := rand.New(rand.NewPCG(7, 7))
	var stats samplingStats

	var count int
	for range sampledPartitions(context.Background(), 4, 2, 2, 100, false, rng, &stats) {
		count++
	}

	assert.Equal(t, 3, count)
	assert.True(t, stats.Exhausted)
	assert.Equal(t, samplingAttemptFactor*100, stats.Attempts, "budget must bound the loop")
	assert.Positive(t, stats.Duplicates)
}

func TestSampledPartitionsDeterministicWithSeededRand(t *testing.T) {
	draw := func() []string {
		rng := rand.New(rand.NewPCG(42, 42))
		var stats samplingStats
		var keys []string
		for teams := range sampledPartitions(context.Background(), 8, 2, 4, 10, false, rng, &stats) {
			keys = append(keys, signature(teams, false))
		}
		return keys
	}

	assert.Equal(t, draw(), draw())
}

func TestSignatureCanonicalizesTeamOrder(t *testing.T) {
	a := [][]int{{0, 1}, {2, 3}}
	b := [][]int{{2, 3}, {0, 1}}

	assert.Equal(t, signature(a, false), signature(b, false))
	assert.NotEqual(t, signature(a, true), signature(b, true),
		"labeled signatures must keep team positions distinct")
}
