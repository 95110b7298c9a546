package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Generation records one balance request and its ranked team options.
type Generation struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedBy          uuid.UUID      `json:"createdBy" gorm:"type:uuid;not null;index"`
	TeamSize           int            `json:"teamSize" gorm:"not null"`
	NumTeams           int            `json:"numTeams" gorm:"not null"`
	TopN               int            `json:"topN" gorm:"not null"`
	DiversityThreshold float64        `json:"diversityThreshold" gorm:"type:decimal(4,2);not null"`
	TotalPlayers       int            `json:"totalPlayers" gorm:"not null"`
	Mode               string         `json:"mode" gorm:"type:varchar(10);not null"`
	DifficultyScore    float64        `json:"difficultyScore" gorm:"type:decimal(4,3);not null"`
	Report             datatypes.JSON `json:"report" gorm:"type:jsonb"`
	CreatedAt          time.Time      `json:"createdAt"`

	// Relations
	Options []TeamOption `json:"options,omitempty" gorm:"foreignKey:GenerationID"`
}

// TableName returns the table name for GORM
func (Generation) TableName() string {
	return "generations"
}

// TeamOption is one ranked team combination within a generation. Teams holds
// a JSONB snapshot of the players at generation time, so later edits to the
// registry do not rewrite history.
type TeamOption struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GenerationID  uuid.UUID      `json:"generationId" gorm:"type:uuid;not null;index"`
	Rank          int            `json:"rank" gorm:"not null"`
	BalanceScore  float64        `json:"balanceScore" gorm:"type:decimal(6,3);not null"`
	LevelStdDev   float64        `json:"levelStdDev" gorm:"type:decimal(6,3);not null"`
	StaminaStdDev float64        `json:"staminaStdDev" gorm:"type:decimal(6,3);not null"`
	SpeedStdDev   float64        `json:"speedStdDev" gorm:"type:decimal(6,3);not null"`
	Teams         datatypes.JSON `json:"teams" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"createdAt"`

	// Relations
	Generation *Generation `json:"-" gorm:"foreignKey:GenerationID"`
}

// TableName returns the table name for GORM
func (TeamOption) TableName() string {
	return "team_options"
}

// TeamPlayerSnapshot is the per-player shape stored inside TeamOption.Teams.
type TeamPlayerSnapshot struct {
	PlayerID  int        `json:"playerId"`
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
	Level     float64    `json:"level"`
	Stamina   float64    `json:"stamina"`
	Speed     float64    `json:"speed"`
}
