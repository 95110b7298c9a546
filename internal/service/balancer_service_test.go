package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi/team-balancer-web/internal/balancer"
	"github.com/javi/team-balancer-web/internal/domain"
	"github.com/javi/team-balancer-web/internal/service"
	"github.com/javi/team-balancer-web/internal/testutil"
)

func TestBalancerService_Generate(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	squad := testutil.BuildSquad(t, ts.DB.DB, 4)

	ids := make([]int, len(squad))
	for i, p := range squad {
		ids[i] = p.ID
	}

	result, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{
		PlayerIDs: ids,
	})
	require.NoError(t, err)

	// 4 players into 2 teams of 2: exact mode, 3 partitions total.
	assert.Equal(t, balancer.ModeExact, result.Report.Mode)
	assert.Equal(t, 3, result.Report.Generated)
	require.NotEmpty(t, result.Options)

	// The generation must be persisted with rank-ordered snapshots.
	stored, err := ts.Services.Balancer.Get(ctx, result.Generation.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.CreatedBy)
	assert.Equal(t, "exact", stored.Mode)
	require.Len(t, stored.Options, len(result.Options))
	assert.Equal(t, 1, stored.Options[0].Rank)
	assert.NotEmpty(t, stored.Options[0].Teams)
	assert.NotEmpty(t, stored.Report)
}

func TestBalancerService_GenerateUnknownPlayers(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	squad := testutil.BuildSquad(t, ts.DB.DB, 3)

	_, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{
		PlayerIDs: []int{squad[0].ID, squad[1].ID, squad[2].ID, 99999},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownPlayers)
}

func TestBalancerService_GenerateDuplicatePlayerIDs(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	squad := testutil.BuildSquad(t, ts.DB.DB, 3)

	// A repeated id must be rejected, never seated on two teams.
	_, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{
		PlayerIDs: []int{squad[0].ID, squad[1].ID, squad[2].ID, squad[0].ID},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePlayers)

	generations, err := ts.Services.Balancer.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, generations)
}

func TestBalancerService_GenerateWithConstraints(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	squad := testutil.BuildSquad(t, ts.DB.DB, 4)

	result, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{
		Constraints: []balancer.Constraint{balancer.Same(squad[0].ID, squad[1].ID)},
	})
	require.NoError(t, err)

	for _, option := range result.Options {
		together := false
		for _, team := range option.Teams {
			first, second := false, false
			for _, p := range team {
				if p.ID == squad[0].ID {
					first = true
				}
				if p.ID == squad[1].ID {
					second = true
				}
			}
			if first && second {
				together = true
			}
		}
		assert.True(t, together, "constrained players must share a team")
	}
}

func TestBalancerService_GenerateConfigurationError(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	squad := testutil.BuildSquad(t, ts.DB.DB, 4)

	_, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{
		Constraints: []balancer.Constraint{balancer.Pinned(5, squad[0].ID)},
	})
	assert.ErrorIs(t, err, balancer.ErrPinnedTeamOutOfRange)

	// Nothing may be persisted for a failed request.
	generations, err := ts.Services.Balancer.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, generations)
}

func TestBalancerService_Analyze(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	testutil.BuildSquad(t, ts.DB.DB, 6)

	analysis, err := ts.Services.Balancer.Analyze(ctx, service.GenerateInput{})
	require.NoError(t, err)

	// 6 players for 2 teams of 2 leaves spares, so difficulty < 1.
	assert.Equal(t, "3", analysis.TheoreticalMax)
	assert.InDelta(t, 4.0/6.0, analysis.DifficultyScore, 1e-9)
}

func TestBalancerService_AnalyzeNotEnoughPlayers(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	testutil.BuildSquad(t, ts.DB.DB, 3)

	_, err := ts.Services.Balancer.Analyze(ctx, service.GenerateInput{})
	assert.ErrorIs(t, err, balancer.ErrNotEnoughPlayers)
}

func TestBalancerService_DeleteGeneration(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	testutil.BuildSquad(t, ts.DB.DB, 4)

	result, err := ts.Services.Balancer.Generate(ctx, user.ID, service.GenerateInput{})
	require.NoError(t, err)

	require.NoError(t, ts.Services.Balancer.Delete(ctx, result.Generation.ID))

	_, err = ts.Services.Balancer.Get(ctx, result.Generation.ID)
	assert.ErrorIs(t, err, domain.ErrGenerationNotFound)
}
