package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javi/team-balancer-web/internal/domain"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id int) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetByIDs returns the players for ids, preserving the request order. Missing
// ids simply produce a shorter result; the caller decides whether that is an
// error.
func (r *playerRepository) GetByIDs(ctx context.Context, ids []int) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	ordered := make([]*domain.Player, 0, len(players))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *playerRepository) GetByName(ctx context.Context, name string) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) GetAll(ctx context.Context) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).Order("name ASC").Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}

func (r *playerRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&domain.Player{}, "id = ?", id).Error
}

// UpsertMany inserts players by name, updating stats and positions for names
// that already exist. Used by CSV import.
func (r *playerRepository) UpsertMany(ctx context.Context, players []*domain.Player) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"positions", "level", "stamina", "speed", "updated_at"}),
	}).Create(players).Error
}
