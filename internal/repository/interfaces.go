package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/javi/team-balancer-web/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id int) (*domain.Player, error)
	GetByIDs(ctx context.Context, ids []int) ([]*domain.Player, error)
	GetByName(ctx context.Context, name string) (*domain.Player, error)
	GetAll(ctx context.Context) ([]*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	Delete(ctx context.Context, id int) error
	UpsertMany(ctx context.Context, players []*domain.Player) error
}

type GenerationRepository interface {
	Create(ctx context.Context, generation *domain.Generation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Player     PlayerRepository
	Generation GenerationRepository
}
