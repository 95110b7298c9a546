package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/javi/team-balancer-web/internal/domain"
	"github.com/javi/team-balancer-web/internal/repository/postgres"
	"github.com/javi/team-balancer-web/internal/testutil"
)

func seedGeneration(t *testing.T, userID uuid.UUID, options int) *domain.Generation {
	t.Helper()

	generation := &domain.Generation{
		ID:                 uuid.New(),
		CreatedBy:          userID,
		TeamSize:           2,
		NumTeams:           2,
		TopN:               options,
		DiversityThreshold: 0.3,
		TotalPlayers:       4,
		Mode:               "exact",
		DifficultyScore:    1.0,
		Report:             datatypes.JSON([]byte(`{}`)),
		CreatedAt:          time.Now(),
	}
	for rank := 1; rank <= options; rank++ {
		generation.Options = append(generation.Options, domain.TeamOption{
			ID:           uuid.New(),
			GenerationID: generation.ID,
			Rank:         rank,
			BalanceScore: float64(rank) * 0.1,
			Teams:        datatypes.JSON([]byte(`[]`)),
			CreatedAt:    time.Now(),
		})
	}
	return generation
}

func TestGenerationRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGenerationRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	generation := seedGeneration(t, user.ID, 3)

	require.NoError(t, repo.Create(ctx, generation))

	got, err := repo.GetByID(ctx, generation.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.ID, got.ID)
	require.Len(t, got.Options, 3)
	for i, option := range got.Options {
		assert.Equal(t, i+1, option.Rank, "options must come back rank-ordered")
	}
}

func TestGenerationRepository_GetByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGenerationRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, seedGeneration(t, user.ID, 1)))
	}
	require.NoError(t, repo.Create(ctx, seedGeneration(t, other.ID, 1)))

	mine, err := repo.GetByUserID(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	paged, err := repo.GetByUserID(ctx, user.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, paged, 2)
}

func TestGenerationRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGenerationRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	generation := seedGeneration(t, user.ID, 2)
	require.NoError(t, repo.Create(ctx, generation))

	require.NoError(t, repo.Delete(ctx, generation.ID))

	_, err := repo.GetByID(ctx, generation.ID)
	assert.Error(t, err)

	var count int64
	testDB.DB.Model(&domain.TeamOption{}).Where("generation_id = ?", generation.ID).Count(&count)
	assert.Zero(t, count, "team options must be deleted with their generation")
}
