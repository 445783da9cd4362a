package result

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/config"
	"github.com/autobattle/roomserver/internal/room"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresRecorder persists GameEndSnapshots into Postgres. One row per
// game in game_results, one row per seat in game_result_players.
type PostgresRecorder struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewPostgresRecorder parses cfg.DSN, opens a pool, and runs pending
// migrations before returning.
func NewPostgresRecorder(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*PostgresRecorder, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRecorder{pool: pool, log: log.With(zap.String("component", "result.postgres"))}, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return goose.UpContext(ctx, db, "migrations")
}

// RecordGame writes the game row and one player row per seat, in a single
// transaction.
func (r *PostgresRecorder) RecordGame(ctx context.Context, snap room.GameEndSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	players, err := json.Marshal(snap.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	var gameID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO game_results (room_code, round, winner_id, winner_name, players, finished_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id`,
		snap.RoomCode, snap.Round, snap.WinnerID, snap.WinnerName, players,
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("insert game_results: %w", err)
	}

	for _, p := range snap.Players {
		_, err := tx.Exec(ctx,
			`INSERT INTO game_result_players (game_id, player_id, name, health, level, eliminated, won)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			gameID, p.PlayerID, p.Name, p.Health, p.Level, p.Eliminated, p.PlayerID == snap.WinnerID,
		)
		if err != nil {
			return fmt.Errorf("insert game_result_players: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info("recorded game result", zap.String("room", snap.RoomCode), zap.String("winner", snap.WinnerID))
	return nil
}

func (r *PostgresRecorder) Close() {
	r.pool.Close()
}
