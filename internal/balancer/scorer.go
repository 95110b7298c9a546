package balancer

import (
	"math"

	"github.com/javi/team-balancer-web/internal/domain"
)

// StatWeights scales each stat's contribution to the total balance score.
type StatWeights struct {
	Level   float64 `json:"level"`
	Stamina float64 `json:"stamina"`
	Speed   float64 `json:"speed"`
}

// DefaultStatWeights weighs all three stats equally.
func DefaultStatWeights() StatWeights {
	return StatWeights{Level: 1, Stamina: 1, Speed: 1}
}

// TeamStats holds one value per stat, used both for per-team averages and for
// cross-team standard deviations.
type TeamStats struct {
	Level   float64 `json:"level"`
	Stamina float64 `json:"stamina"`
	Speed   float64 `json:"speed"`
}

// TeamBalance is the scoring breakdown for one partition. TotalScore is the
// weighted sum of the per-stat cross-team standard deviations; lower is
// better, and zero means every team's averages match exactly.
type TeamBalance struct {
	TeamAverages []TeamStats `json:"teamAverages"`
	StdDev       TeamStats   `json:"stdDev"`
	TotalScore   float64     `json:"totalScore"`
}

// Score computes the balance breakdown for a partition. Scoring is pure and
// deterministic: the same teams always produce the same TeamBalance.
func Score(teams [][]*domain.Player, weights StatWeights) TeamBalance {
	averages := make([]TeamStats, len(teams))
	for i, team := range teams {
		averages[i] = teamAverages(team)
	}

	levels := make([]float64, len(averages))
	staminas := make([]float64, len(averages))
	speeds := make([]float64, len(averages))
	for i, avg := range averages {
		levels[i] = avg.Level
		staminas[i] = avg.Stamina
		speeds[i] = avg.Speed
	}

	stdDev := TeamStats{
		Level:   populationStdDev(levels),
		Stamina: populationStdDev(staminas),
		Speed:   populationStdDev(speeds),
	}

	return TeamBalance{
		TeamAverages: averages,
		StdDev:       stdDev,
		TotalScore: stdDev.Level*weights.Level +
			stdDev.Stamina*weights.Stamina +
			stdDev.Speed*weights.Speed,
	}
}

func teamAverages(team []*domain.Player) TeamStats {
	if len(team) == 0 {
		return TeamStats{}
	}
	var sum TeamStats
	for _, p := range team {
		sum.Level += p.Level
		sum.Stamina += p.Stamina
		sum.Speed += p.Speed
	}
	n := float64(len(team))
	return TeamStats{Level: sum.Level / n, Stamina: sum.Stamina / n, Speed: sum.Speed / n}
}

func populationStdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
