// Package store persists completed-auction results to Postgres.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
	"github.com/rgoyal8/ipl-auction-backend/internal/room"
)

// AuctionResult is one participant's final squad at auction close.
type AuctionResult struct {
	ID        uint   `gorm:"primaryKey"`
	Room      string `gorm:"size:16;index"`
	Username  string `gorm:"size:64"`
	Team      string `gorm:"size:64"`
	Budget    float64
	Roster    string `gorm:"type:text"` // JSON array of bought players
	CreatedAt time.Time
}

// Store implements room.Sink on a gorm connection.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to Postgres and runs migrations.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&AuctionResult{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Save writes one row per participant in a single transaction.
func (s *Store) Save(ctx context.Context, roomCode string, results []room.Result) error {
	rows, err := buildRows(roomCode, results)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("save results for room %s: %w", roomCode, err)
	}
	s.log.Info("auction results saved",
		zap.String("room", roomCode),
		zap.Int("participants", len(rows)))
	return nil
}

func buildRows(roomCode string, results []room.Result) ([]AuctionResult, error) {
	rows := make([]AuctionResult, 0, len(results))
	for _, res := range results {
		players := res.Players
		if players == nil {
			players = []engine.Player{}
		}
		roster, err := json.Marshal(players)
		if err != nil {
			return nil, fmt.Errorf("encode roster for %s: %w", res.User, err)
		}
		rows = append(rows, AuctionResult{
			Room:     roomCode,
			Username: res.User,
			Team:     res.Team,
			Budget:   res.Budget,
			Roster:   string(roster),
		})
	}
	return rows, nil
}
