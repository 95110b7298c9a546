package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/javi/team-balancer-web/internal/domain"
	"github.com/javi/team-balancer-web/internal/repository"
)

type PlayerService struct {
	playerRepo repository.PlayerRepository
}

func NewPlayerService(playerRepo repository.PlayerRepository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

type PlayerInput struct {
	Name      string            `json:"name"`
	Positions []domain.Position `json:"positions"`
	Level     float64           `json:"level"`
	Stamina   float64           `json:"stamina"`
	Speed     float64           `json:"speed"`
}

func (s *PlayerService) Create(ctx context.Context, input PlayerInput) (*domain.Player, error) {
	player := &domain.Player{
		Name:      input.Name,
		Positions: input.Positions,
		Level:     input.Level,
		Stamina:   input.Stamina,
		Speed:     input.Speed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := player.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.playerRepo.GetByName(ctx, input.Name); err == nil && existing != nil {
		return nil, domain.ErrPlayerNameExists
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *PlayerService) Get(ctx context.Context, id int) (*domain.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *PlayerService) List(ctx context.Context) ([]*domain.Player, error) {
	return s.playerRepo.GetAll(ctx)
}

func (s *PlayerService) Update(ctx context.Context, id int, input PlayerInput) (*domain.Player, error) {
	player, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Name = input.Name
	player.Positions = input.Positions
	player.Level = input.Level
	player.Stamina = input.Stamina
	player.Speed = input.Speed
	player.UpdatedAt = time.Now()

	if err := player.Validate(); err != nil {
		return nil, err
	}
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *PlayerService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.playerRepo.Delete(ctx, id)
}

var csvHeader = []string{"name", "positions", "level", "stamina", "speed"}

// ImportCSV reads a roster in the export format and upserts by name. Rows are
// validated before anything is written, so a bad row aborts the whole import.
func (s *PlayerService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return 0, fmt.Errorf("expected columns %v, got %v", csvHeader, header)
	}

	var players []*domain.Player
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		player, err := parseCSVRecord(record)
		if err != nil {
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		players = append(players, player)
	}

	if len(players) == 0 {
		return 0, nil
	}
	if err := s.playerRepo.UpsertMany(ctx, players); err != nil {
		return 0, err
	}
	return len(players), nil
}

func parseCSVRecord(record []string) (*domain.Player, error) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}

	var positions []domain.Position
	for _, raw := range strings.Split(record[1], ";") {
		if raw = strings.TrimSpace(raw); raw != "" {
			positions = append(positions, domain.Position(raw))
		}
	}

	stats := make([]float64, 3)
	for i, raw := range record[2:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", csvHeader[i+2], err)
		}
		stats[i] = v
	}

	player := &domain.Player{
		Name:      strings.TrimSpace(record[0]),
		Positions: positions,
		Level:     stats[0],
		Stamina:   stats[1],
		Speed:     stats[2],
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := player.Validate(); err != nil {
		return nil, err
	}
	return player, nil
}

// ExportCSV writes the whole roster in the import format, sorted by name.
func (s *PlayerService) ExportCSV(ctx context.Context, w io.Writer) error {
	players, err := s.playerRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range players {
		positions := make([]string, len(p.Positions))
		for i, pos := range p.Positions {
			positions[i] = string(pos)
		}
		record := []string{
			p.Name,
			strings.Join(positions, ";"),
			strconv.FormatFloat(p.Level, 'f', -1, 64),
			strconv.FormatFloat(p.Stamina, 'f', -1, 64),
			strconv.FormatFloat(p.Speed, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
