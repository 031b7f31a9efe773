package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rosterhub/roster-api/internal/models"
)

// Fixed key names for the persisted roster snapshot.
const (
	membersKey     = "roster:members"
	assignmentsKey = "roster:assignments"
)

// snapshotClient is the slice of the Redis client the repository needs.
type snapshotClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TxPipeline() redis.Pipeliner
}

// SnapshotRepository persists the roster snapshot to Redis as two JSON
// values under fixed keys. A missing or corrupt value is reported as an
// absent snapshot so callers can fall back to the seed dataset.
type SnapshotRepository struct {
	client snapshotClient
	logger *zap.Logger
}

// NewSnapshotRepository constructs a snapshot repository.
func NewSnapshotRepository(client *redis.Client, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := &SnapshotRepository{logger: logger}
	if client != nil {
		repo.client = client
	}
	return repo
}

// Load reads the stored snapshot. It returns (nil, nil) when no usable
// snapshot exists; a corrupt members value is treated as absent rather than
// surfaced.
func (r *SnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	if r.client == nil {
		return nil, nil
	}

	raw, err := r.client.Get(ctx, membersKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", membersKey, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap.Members); err != nil {
		r.logger.Warn("discarding corrupt members snapshot", zap.Error(err))
		return nil, nil
	}

	rawAssignments, err := r.client.Get(ctx, assignmentsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &snap, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", assignmentsKey, err)
	}
	if err := json.Unmarshal(rawAssignments, &snap.Assignments); err != nil {
		r.logger.Warn("discarding corrupt assignments snapshot", zap.Error(err))
		snap.Assignments = nil
	}

	return &snap, nil
}

// Save writes both snapshot keys. Values have no TTL; the snapshot is the
// durable source of truth, replaced wholesale on every mutation.
func (r *SnapshotRepository) Save(ctx context.Context, snap models.Snapshot) error {
	if r.client == nil {
		return nil
	}

	members, err := json.Marshal(snap.Members)
	if err != nil {
		return fmt.Errorf("marshal members snapshot: %w", err)
	}
	assignments, err := json.Marshal(snap.Assignments)
	if err != nil {
		return fmt.Errorf("marshal assignments snapshot: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, membersKey, members, 0)
	pipe.Set(ctx, assignmentsKey, assignments, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write roster snapshot: %w", err)
	}

	return nil
}
