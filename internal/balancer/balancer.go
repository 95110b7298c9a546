package balancer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/big"
	rand "math/rand/v2"
	"sort"

	"github.com/javi/team-balancer-web/internal/domain"
)

// Configuration errors (fatal, fail fast).
var (
	ErrInvalidTeamSize           = errors.New("team size must be positive")
	ErrInvalidNumTeams           = errors.New("at least two teams are required")
	ErrInvalidTopN               = errors.New("top n must be positive")
	ErrInvalidDiversityThreshold = errors.New("diversity threshold must be non-negative")
	ErrPinnedTeamOutOfRange      = errors.New("pinned constraint references a team outside the configured range")
)

// Input and search errors.
var (
	ErrNotEnoughPlayers   = errors.New("not enough players for the requested teams")
	ErrNoValidCombination = errors.New("no partition satisfies all constraints")
)

// Config is one balance request's parameters. The engine never mutates it.
type Config struct {
	TeamSize           int
	NumTeams           int
	TopN               int
	DiversityThreshold float64
	StatWeights        StatWeights
	Constraints        []Constraint

	// MaxExactPartitions overrides the exact-enumeration ceiling;
	// zero means DefaultMaxExactPartitions.
	MaxExactPartitions int
}

func (c Config) Validate() error {
	if c.TeamSize <= 0 {
		return ErrInvalidTeamSize
	}
	if c.NumTeams < 2 {
		return ErrInvalidNumTeams
	}
	if c.TopN <= 0 {
		return ErrInvalidTopN
	}
	if c.DiversityThreshold < 0 {
		return ErrInvalidDiversityThreshold
	}
	for _, con := range c.Constraints {
		if con.Kind == PinnedToTeam && (con.Team < 1 || con.Team > c.NumTeams) {
			return fmt.Errorf("%w: team %d of %d", ErrPinnedTeamOutOfRange, con.Team, c.NumTeams)
		}
	}
	return nil
}

func (c Config) maxExact() int {
	if c.MaxExactPartitions > 0 {
		return c.MaxExactPartitions
	}
	return DefaultMaxExactPartitions
}

// Mode records which generation strategy a request used.
type Mode string

const (
	ModeExact  Mode = "exact"
	ModeSample Mode = "sample"
)

// TeamCombination is a scored, constraint-valid partition.
type TeamCombination struct {
	Teams   [][]*domain.Player `json:"teams"`
	Balance TeamBalance        `json:"balance"`
}

// combination is the internal candidate form carrying precomputed id sets.
type combination struct {
	TeamCombination
	idSets []idSet
}

// Report carries the diagnostics for one request: what was tried, what was
// rejected and why, and which fallbacks fired. Returned alongside both
// successful and empty results so "no diverse answer" is never silent.
type Report struct {
	TotalPlayers       int           `json:"totalPlayers"`
	ExcludedPlayers    int           `json:"excludedPlayers"`
	Mode               Mode          `json:"mode"`
	Analysis           Analysis      `json:"analysis"`
	Generated          int           `json:"generated"`
	ConstraintRejected int           `json:"constraintRejected"`
	SamplingDuplicates int           `json:"samplingDuplicates"`
	SamplingExhausted  bool          `json:"samplingExhausted"`
	Selection          selectorStats `json:"selection"`
}

// Balancer runs the generate → validate → score → select pipeline. Each
// Generate call owns its candidate pool and duplicate-signature state, so a
// Balancer is safe to reuse sequentially; the injected RNG is the only
// mutable state shared across calls.
type Balancer struct {
	cfg Config
	rng *rand.Rand
	obs Observer
}

type Option func(*Balancer)

// WithRand injects a seedable random source for reproducible sampling.
func WithRand(rng *rand.Rand) Option {
	return func(b *Balancer) { b.rng = rng }
}

// WithObserver injects the structured-event sink.
func WithObserver(obs Observer) Option {
	return func(b *Balancer) { b.obs = obs }
}

func New(cfg Config, opts ...Option) (*Balancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Balancer{cfg: cfg, obs: NopObserver{}}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b, nil
}

// Generate partitions players into balanced teams and returns up to TopN
// mutually distinct options, best-balanced first, plus the request report.
// Callers always get either a non-empty result or a typed error; an empty
// result never arrives without an explanation.
func (b *Balancer) Generate(ctx context.Context, players []*domain.Player) ([]TeamCombination, *Report, error) {
	required := b.cfg.NumTeams * b.cfg.TeamSize
	if len(players) < required {
		return nil, nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(players), required)
	}

	analysis := Analyze(len(players), b.cfg)
	report := &Report{
		TotalPlayers: len(players),
		Analysis:     analysis,
	}

	pool := players
	if len(players) > required {
		report.ExcludedPlayers = len(players) - required
		pool = players[:required]
		b.obs.Publish(Event{
			Type:    EventPoolTruncated,
			Message: fmt.Sprintf("using first %d of %d players", required, len(players)),
			Counters: map[string]int{
				"excluded": report.ExcludedPlayers,
			},
		})
	}

	poolIDs := make(idSet, len(pool))
	for _, p := range pool {
		poolIDs[p.ID] = struct{}{}
	}
	active := activeConstraints(b.cfg.Constraints, poolIDs)
	if len(active) < len(b.cfg.Constraints) {
		b.obs.Publish(Event{
			Type:    EventConfigWarning,
			Message: "constraints referencing players outside the pool were narrowed or dropped",
			Counters: map[string]int{
				"configured": len(b.cfg.Constraints),
				"active":     len(active),
			},
		})
	}
	labeled := hasPinned(active)

	// With pinned constraints the generator walks labeled assignments, a
	// num_teams! multiple of the unordered count; compare the actual
	// enumeration effort against the ceiling.
	effort := new(big.Int).Set(analysis.theoreticalMax)
	if labeled {
		effort.Mul(effort, factorial(b.cfg.NumTeams))
	}

	var (
		seq   iter.Seq[[][]int]
		stats samplingStats
	)
	if effort.Cmp(big.NewInt(int64(b.cfg.maxExact()))) <= 0 {
		report.Mode = ModeExact
		seq = exactPartitions(ctx, required, b.cfg.NumTeams, b.cfg.TeamSize, labeled)
	} else {
		report.Mode = ModeSample
		seq = sampledPartitions(ctx, required, b.cfg.NumTeams, b.cfg.TeamSize,
			analysis.RecommendedSampleSize, labeled, b.rng, &stats)
	}

	b.obs.Publish(Event{
		Type: EventGenerationStarted,
		Message: fmt.Sprintf("mode=%s players=%d teams=%dx%d difficulty=%.2f",
			report.Mode, len(pool), b.cfg.NumTeams, b.cfg.TeamSize, analysis.DifficultyScore),
	})

	var candidates []*combination
	for teams := range seq {
		report.Generated++

		sets := make([]idSet, len(teams))
		for i, team := range teams {
			set := make(idSet, len(team))
			for _, idx := range team {
				set[pool[idx].ID] = struct{}{}
			}
			sets[i] = set
		}
		if !satisfies(sets, active) {
			report.ConstraintRejected++
			continue
		}

		grouped := make([][]*domain.Player, len(teams))
		for i, team := range teams {
			members := make([]*domain.Player, len(team))
			for j, idx := range team {
				members[j] = pool[idx]
			}
			grouped[i] = members
		}
		candidates = append(candidates, &combination{
			TeamCombination: TeamCombination{
				Teams:   grouped,
				Balance: Score(grouped, b.cfg.StatWeights),
			},
			idSets: sets,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	report.SamplingDuplicates = stats.Duplicates
	report.SamplingExhausted = stats.Exhausted
	if stats.Exhausted {
		b.obs.Publish(Event{
			Type:    EventSamplingExhausted,
			Message: "attempt budget expired before reaching the sample target",
			Counters: map[string]int{
				"attempts":   stats.Attempts,
				"duplicates": stats.Duplicates,
				"unique":     report.Generated,
			},
		})
	}

	b.obs.Publish(Event{
		Type: EventCandidatesReady,
		Counters: map[string]int{
			"generated":           report.Generated,
			"constraint_rejected": report.ConstraintRejected,
			"valid":               len(candidates),
		},
	})

	if len(candidates) == 0 {
		return nil, report, fmt.Errorf("%w: rejected %d of %d generated partitions",
			ErrNoValidCombination, report.ConstraintRejected, report.Generated)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Balance.TotalScore < candidates[j].Balance.TotalScore
	})

	selected, selStats := selectDiverse(candidates, b.cfg.TopN,
		analysis.RecommendedPoolSize, b.cfg.DiversityThreshold, analysis.DifficultyScore)
	report.Selection = selStats

	if selStats.FallbackUnfiltered {
		b.obs.Publish(Event{
			Type:    EventFallback,
			Message: "diversity filter under-filled, returning best-balanced combinations unfiltered",
		})
	}
	b.obs.Publish(Event{
		Type: EventDiversityResult,
		Counters: map[string]int{
			"selected":           len(selected),
			"overlap_cap_reject": selStats.CapRejected,
			"ratio_reject":       selStats.RatioRejected,
		},
	})

	results := make([]TeamCombination, len(selected))
	for i, c := range selected {
		results[i] = c.TeamCombination
	}
	return results, report, nil
}
