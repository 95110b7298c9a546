package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/javi/team-balancer-web/internal/balancer"
	"github.com/javi/team-balancer-web/internal/config"
	"github.com/javi/team-balancer-web/internal/domain"
	"github.com/javi/team-balancer-web/internal/repository"
)

type BalancerService struct {
	playerRepo     repository.PlayerRepository
	generationRepo repository.GenerationRepository
	cfg            *config.Config
	observer       balancer.Observer
}

func NewBalancerService(playerRepo repository.PlayerRepository, generationRepo repository.GenerationRepository, cfg *config.Config, observer balancer.Observer) *BalancerService {
	if observer == nil {
		observer = balancer.NopObserver{}
	}
	return &BalancerService{
		playerRepo:     playerRepo,
		generationRepo: generationRepo,
		cfg:            cfg,
		observer:       observer,
	}
}

// GenerateInput selects the pool and tunes the engine. Zero-valued sizing
// fields fall back to the server defaults; an empty PlayerIDs list means the
// whole roster.
type GenerateInput struct {
	PlayerIDs          []int                 `json:"playerIds"`
	TeamSize           int                   `json:"teamSize"`
	NumTeams           int                   `json:"numTeams"`
	TopN               int                   `json:"topN"`
	DiversityThreshold *float64              `json:"diversityThreshold"`
	StatWeights        *balancer.StatWeights `json:"statWeights"`
	Constraints        []balancer.Constraint `json:"constraints"`
}

type GenerateResult struct {
	Generation *domain.Generation         `json:"generation"`
	Options    []balancer.TeamCombination `json:"options"`
	Report     *balancer.Report           `json:"report"`
}

func (s *BalancerService) buildConfig(input GenerateInput) balancer.Config {
	cfg := balancer.Config{
		TeamSize:           input.TeamSize,
		NumTeams:           input.NumTeams,
		TopN:               input.TopN,
		DiversityThreshold: s.cfg.DefaultDiversityThreshold,
		StatWeights:        balancer.DefaultStatWeights(),
		Constraints:        input.Constraints,
		MaxExactPartitions: s.cfg.MaxExactPartitions,
	}
	if cfg.TeamSize == 0 {
		cfg.TeamSize = s.cfg.DefaultTeamSize
	}
	if cfg.NumTeams == 0 {
		cfg.NumTeams = s.cfg.DefaultNumTeams
	}
	if cfg.TopN == 0 {
		cfg.TopN = s.cfg.DefaultTopN
	}
	if input.DiversityThreshold != nil {
		cfg.DiversityThreshold = *input.DiversityThreshold
	}
	if input.StatWeights != nil {
		cfg.StatWeights = *input.StatWeights
	}
	return cfg
}

// Generate runs the engine over the selected pool and persists the outcome.
// Engine configuration problems surface before any work happens; the stored
// generation keeps a JSONB snapshot of each option so later roster edits do
// not rewrite history.
func (s *BalancerService) Generate(ctx context.Context, userID uuid.UUID, input GenerateInput) (*GenerateResult, error) {
	pool, err := s.loadPool(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	engine, err := balancer.New(s.buildConfig(input), balancer.WithObserver(s.observer))
	if err != nil {
		return nil, err
	}

	options, report, err := engine.Generate(ctx, pool)
	if err != nil {
		return nil, err
	}

	generation, err := s.buildGeneration(userID, input, options, report)
	if err != nil {
		return nil, err
	}
	if err := s.generationRepo.Create(ctx, generation); err != nil {
		return nil, err
	}

	return &GenerateResult{
		Generation: generation,
		Options:    options,
		Report:     report,
	}, nil
}

func (s *BalancerService) loadPool(ctx context.Context, ids []int) ([]*domain.Player, error) {
	if len(ids) == 0 {
		return s.playerRepo.GetAll(ctx)
	}

	// A repeated id would put the same player on two teams, so the pool
	// must be a set before the engine ever sees it.
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: player %d", domain.ErrDuplicatePlayers, id)
		}
		seen[id] = struct{}{}
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(players) != len(ids) {
		return nil, fmt.Errorf("%w: requested %d, found %d", domain.ErrUnknownPlayers, len(ids), len(players))
	}
	return players, nil
}

func (s *BalancerService) buildGeneration(userID uuid.UUID, input GenerateInput, options []balancer.TeamCombination, report *balancer.Report) (*domain.Generation, error) {
	cfg := s.buildConfig(input)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	generation := &domain.Generation{
		ID:                 uuid.New(),
		CreatedBy:          userID,
		TeamSize:           cfg.TeamSize,
		NumTeams:           cfg.NumTeams,
		TopN:               cfg.TopN,
		DiversityThreshold: cfg.DiversityThreshold,
		TotalPlayers:       report.TotalPlayers,
		Mode:               string(report.Mode),
		DifficultyScore:    report.Analysis.DifficultyScore,
		Report:             datatypes.JSON(reportJSON),
		CreatedAt:          time.Now(),
	}

	for rank, option := range options {
		teams := make([][]domain.TeamPlayerSnapshot, len(option.Teams))
		for i, team := range option.Teams {
			snapshots := make([]domain.TeamPlayerSnapshot, len(team))
			for j, p := range team {
				snapshots[j] = domain.TeamPlayerSnapshot{
					PlayerID:  p.ID,
					Name:      p.Name,
					Positions: p.Positions,
					Level:     p.Level,
					Stamina:   p.Stamina,
					Speed:     p.Speed,
				}
			}
			teams[i] = snapshots
		}
		teamsJSON, err := json.Marshal(teams)
		if err != nil {
			return nil, err
		}

		generation.Options = append(generation.Options, domain.TeamOption{
			ID:            uuid.New(),
			GenerationID:  generation.ID,
			Rank:          rank + 1,
			BalanceScore:  option.Balance.TotalScore,
			LevelStdDev:   option.Balance.StdDev.Level,
			StaminaStdDev: option.Balance.StdDev.Stamina,
			SpeedStdDev:   option.Balance.StdDev.Speed,
			Teams:         datatypes.JSON(teamsJSON),
			CreatedAt:     time.Now(),
		})
	}

	return generation, nil
}

// Analyze previews pool difficulty and recommended sizes without generating.
func (s *BalancerService) Analyze(ctx context.Context, input GenerateInput) (*balancer.Analysis, error) {
	pool, err := s.loadPool(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	cfg := s.buildConfig(input)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if required := cfg.NumTeams * cfg.TeamSize; len(pool) < required {
		return nil, fmt.Errorf("%w: have %d, need %d", balancer.ErrNotEnoughPlayers, len(pool), required)
	}

	analysis := balancer.Analyze(len(pool), cfg)
	return &analysis, nil
}

func (s *BalancerService) Get(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	generation, err := s.generationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	return generation, nil
}

func (s *BalancerService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.generationRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *BalancerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.generationRepo.Delete(ctx, id)
}
