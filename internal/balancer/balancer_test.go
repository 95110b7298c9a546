package balancer

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi/team-balancer-web/internal/domain"
)

// makeSquad builds n players with ids 1..n and mildly varied stats.
func makeSquad(n int) []*domain.Player {
	players := make([]*domain.Player, n)
	for i := range players {
		players[i] = &domain.Player{
			ID:      i + 1,
			Name:    fmt.Sprintf("player-%d", i+1),
			Level:   1 + float64(i%5),
			Stamina: 1 + float64((i*2)%5),
			Speed:   1 + float64((i*3)%5),
		}
	}
	return players
}

type recordingObserver struct {
	events []Event
}

func (r *recordingObserver) Publish(e Event) { r.events = append(r.events, e) }

func (r *recordingObserver) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	valid := Config{TeamSize: 2, NumTeams: 2, TopN: 3, DiversityThreshold: 0.3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "zero team size", mutate: func(c *Config) { c.TeamSize = 0 }, wantErr: ErrInvalidTeamSize},
		{name: "single team", mutate: func(c *Config) { c.NumTeams = 1 }, wantErr: ErrInvalidNumTeams},
		{name: "zero top n", mutate: func(c *Config) { c.TopN = 0 }, wantErr: ErrInvalidTopN},
		{name: "negative threshold", mutate: func(c *Config) { c.DiversityThreshold = -0.1 }, wantErr: ErrInvalidDiversityThreshold},
		{name: "pinned team too high", mutate: func(c *Config) { c.Constraints = []Constraint{Pinned(5, 1)} }, wantErr: ErrPinnedTeamOutOfRange},
		{name: "pinned team zero", mutate: func(c *Config) { c.Constraints = []Constraint{Pinned(0, 1)} }, wantErr: ErrPinnedTeamOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)

			_, err := New(cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateFourPlayersAllEqual(t *testing.T) {
	players := makeSquad(4)
	for _, p := range players {
		p.Level, p.Stamina, p.Speed = 3, 3, 3
	}

	b, err := New(Config{
		TeamSize:           2,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	})
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), players)
	require.NoError(t, err)

	// The full space of unordered partitions is {12|34}, {13|24}, {14|23}.
	assert.Equal(t, ModeExact, report.Mode)
	assert.Equal(t, 3, report.Generated)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.Balance.TotalScore)
	}
}

func TestGeneratePinnedPlayersAlwaysOnNamedTeam(t *testing.T) {
	players := makeSquad(6)

	b, err := New(Config{
		TeamSize:           3,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
		Constraints:        []Constraint{Pinned(1, 1, 2)},
	})
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), players)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Pinning makes team labels semantic: the generator walks labeled
	// assignments (10 unordered partitions x 2 labelings).
	assert.Equal(t, 20, report.Generated)
	for _, r := range results {
		ids := make(map[int]struct{})
		for _, p := range r.Teams[0] {
			ids[p.ID] = struct{}{}
		}
		assert.Contains(t, ids, 1)
		assert.Contains(t, ids, 2)
	}
}

func TestGenerateSameAndDifferentTeamConstraints(t *testing.T) {
	players := makeSquad(6)

	b, err := New(Config{
		TeamSize:           3,
		NumTeams:           2,
		TopN:               5,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
		Constraints:        []Constraint{Same(1, 2), Separate(1, 3)},
	})
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), players)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Positive(t, report.ConstraintRejected)

	for _, r := range results {
		team := func(id int) int {
			for t, members := range r.Teams {
				for _, p := range members {
					if p.ID == id {
						return t
					}
				}
			}
			return -1
		}
		assert.Equal(t, team(1), team(2), "players 1 and 2 must share a team")
		assert.NotEqual(t, team(1), team(3), "players 1 and 3 must be split")
	}
}

func TestGenerateSampleModeRespectsOverlapCap(t *testing.T) {
	players := makeSquad(24)

	b, err := New(Config{
		TeamSize:           6,
		NumTeams:           4,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	}, WithRand(rand.New(rand.NewPCG(11, 13))))
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), players)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, ModeSample, report.Mode)
	assert.False(t, report.Selection.FallbackUnfiltered)

	for i := range results {
		for j := i + 1; j < len(results); j++ {
			for _, a := range results[i].Teams {
				for _, other := range results[j].Teams {
					shared := 0
					inB := make(map[int]struct{}, len(other))
					for _, p := range other {
						inB[p.ID] = struct{}{}
					}
					for _, p := range a {
						if _, ok := inB[p.ID]; ok {
							shared++
						}
					}
					assert.LessOrEqual(t, shared, maxTeamOverlap)
				}
			}
		}
	}
}

func TestGenerateDeterministicWithSeededRand(t *testing.T) {
	run := func() []TeamCombination {
		b, err := New(Config{
			TeamSize:           6,
			NumTeams:           4,
			TopN:               3,
			DiversityThreshold: 0.3,
			StatWeights:        DefaultStatWeights(),
		}, WithRand(rand.New(rand.NewPCG(99, 99))))
		require.NoError(t, err)

		results, report, err := b.Generate(context.Background(), makeSquad(24))
		require.NoError(t, err)
		require.Equal(t, ModeSample, report.Mode)
		return results
	}

	assert.Equal(t, run(), run())
}

func TestGenerateTruncatesOversizedPool(t *testing.T) {
	players := makeSquad(15)
	obs := &recordingObserver{}

	b, err := New(Config{
		TeamSize:           2,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	}, WithObserver(obs))
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), players)
	require.NoError(t, err)

	assert.Equal(t, 11, report.ExcludedPlayers)
	assert.Contains(t, obs.types(), EventPoolTruncated)
	for _, r := range results {
		for _, team := range r.Teams {
			for _, p := range team {
				assert.LessOrEqual(t, p.ID, 4, "players past the roster cut must not appear")
			}
		}
	}
}

func TestGenerateNotEnoughPlayers(t *testing.T) {
	b, err := New(Config{
		TeamSize:           6,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	})
	require.NoError(t, err)

	_, _, err = b.Generate(context.Background(), makeSquad(8))
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestGenerateUnsatisfiableConstraints(t *testing.T) {
	b, err := New(Config{
		TeamSize:           2,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
		Constraints:        []Constraint{Same(1, 2), Separate(1, 2)},
	})
	require.NoError(t, err)

	_, report, err := b.Generate(context.Background(), makeSquad(4))
	assert.ErrorIs(t, err, ErrNoValidCombination)
	require.NotNil(t, report)
	assert.Equal(t, report.Generated, report.ConstraintRejected)
}

func TestGenerateConstraintsOnAbsentPlayersAreIgnored(t *testing.T) {
	obs := &recordingObserver{}

	b, err := New(Config{
		TeamSize:           2,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
		Constraints:        []Constraint{Same(100, 101)},
	}, WithObserver(obs))
	require.NoError(t, err)

	results, report, err := b.Generate(context.Background(), makeSquad(4))
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Zero(t, report.ConstraintRejected)
	assert.Contains(t, obs.types(), EventConfigWarning)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := New(Config{
		TeamSize:           6,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	})
	require.NoError(t, err)

	_, report, err := b.Generate(ctx, makeSquad(12))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, report)
}

func TestGeneratePublishesLifecycleEvents(t *testing.T) {
	obs := &recordingObserver{}

	b, err := New(Config{
		TeamSize:           2,
		NumTeams:           2,
		TopN:               3,
		DiversityThreshold: 0.3,
		StatWeights:        DefaultStatWeights(),
	}, WithObserver(obs))
	require.NoError(t, err)

	_, _, err = b.Generate(context.Background(), makeSquad(4))
	require.NoError(t, err)

	types := obs.types()
	assert.Contains(t, types, EventGenerationStarted)
	assert.Contains(t, types, EventCandidatesReady)
	assert.Contains(t, types, EventDiversityResult)
}
