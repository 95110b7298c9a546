package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi/team-balancer-web/internal/domain"
)

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *generationRepository {
	return &generationRepository{db: db}
}

// Create stores the generation together with its team options in one
// transaction; gorm cascades the association insert.
func (r *generationRepository) Create(ctx context.Context, generation *domain.Generation) error {
	return r.db.WithContext(ctx).Create(generation).Error
}

func (r *generationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	var generation domain.Generation
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("team_options.rank ASC")
		}).
		First(&generation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

func (r *generationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	var generations []*domain.Generation
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&generations).Error
	if err != nil {
		return nil, err
	}
	return generations, nil
}

func (r *generationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.TeamOption{}, "generation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Generation{}, "id = ?", id).Error
	})
}
