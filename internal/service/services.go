package service

import (
	"github.com/javi/team-balancer-web/internal/balancer"
	"github.com/javi/team-balancer-web/internal/config"
	"github.com/javi/team-balancer-web/internal/repository"
)

type Services struct {
	Auth     *AuthService
	Player   *PlayerService
	Balancer *BalancerService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, observer balancer.Observer) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Session, cfg),
		Player:   NewPlayerService(repos.Player),
		Balancer: NewBalancerService(repos.Player, repos.Generation, cfg, observer),
	}
}
