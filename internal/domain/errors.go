package domain

import "errors"

// Player validation errors
var (
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrPositionRequired   = errors.New("at least one position is required")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrStatOutOfRange     = errors.New("stats must be between 1.0 and 5.0")
	ErrPlayerNameExists   = errors.New("player name already exists")
	ErrPlayerNotFound     = errors.New("player not found")
)

// Generation errors
var (
	ErrGenerationNotFound = errors.New("generation not found")
	ErrUnknownPlayers     = errors.New("request references unknown player ids")
	ErrDuplicatePlayers   = errors.New("request repeats player ids")
)
