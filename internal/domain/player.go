package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Stat bounds shared by level, stamina and speed.
const (
	StatMin = 1.0
	StatMax = 5.0
)

// Player is a registry entry. The balancer core treats players as read-only.
type Player struct {
	ID        int                           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string                        `json:"name" gorm:"uniqueIndex;not null"`
	Positions datatypes.JSONSlice[Position] `json:"positions" gorm:"type:jsonb"`
	Level     float64                       `json:"level" gorm:"type:decimal(3,1);not null"`
	Stamina   float64                       `json:"stamina" gorm:"type:decimal(3,1);not null"`
	Speed     float64                       `json:"speed" gorm:"type:decimal(3,1);not null"`
	CreatedAt time.Time                     `json:"createdAt"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Player) TableName() string {
	return "players"
}

func (p *Player) Validate() error {
	if p.Name == "" {
		return ErrPlayerNameRequired
	}
	if len(p.Positions) == 0 {
		return ErrPositionRequired
	}
	for _, pos := range p.Positions {
		if !pos.Valid() {
			return ErrInvalidPosition
		}
	}
	for _, stat := range []float64{p.Level, p.Stamina, p.Speed} {
		if stat < StatMin || stat > StatMax {
			return ErrStatOutOfRange
		}
	}
	return nil
}

// TotalStats is the summary figure shown in player listings.
func (p *Player) TotalStats() float64 {
	return p.Level + p.Stamina + p.Speed
}
