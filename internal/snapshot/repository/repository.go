package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/observability/metrics"
	"github.com/driftchat/backend/internal/snapshot/domain"
)

// Store persists moderation snapshots. The backend is chosen at construction:
// deployments without a moderation pipeline run the no-op store, which only
// records that an insert was requested.
type Store interface {
	InsertSnapshot(ctx context.Context, snapshot domain.Snapshot) error
}

func NewStore(backend string, pool *pgxpool.Pool, log *logger.Logger) Store {
	if backend == "postgres" {
		return NewPgStore(pool)
	}
	return NewNoopStore(log)
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) InsertSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO snapshots (id, report_id, content) VALUES ($1, $2, $3)`,
		snapshot.ID,
		snapshot.ReportID,
		snapshot.Content,
	)
	if err != nil {
		metrics.DBQueryErrorsTotal.WithLabelValues("snapshot_insert").Inc()
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	metrics.SnapshotInsertsTotal.WithLabelValues("postgres").Inc()
	return nil
}

type NoopStore struct {
	log *logger.Logger
}

func NewNoopStore(log *logger.Logger) *NoopStore {
	return &NoopStore{log: log}
}

func (s *NoopStore) InsertSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	s.log.WithFields(ctx, logger.Fields{
		"snapshot_id": snapshot.ID,
		"report_id":   snapshot.ReportID,
		"action":      "snapshot_insert_noop",
	}).Info("snapshot insert")

	metrics.SnapshotInsertsTotal.WithLabelValues("noop").Inc()
	return nil
}
