package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"schemadesigner/internal/models"
)

const snapshotTTL = 24 * time.Hour

// RedisRepository keeps JSON snapshots of sessions so a restarted instance
// can recover recent work. Snapshots expire after a day of inactivity.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func snapshotKey(sessionID string) string {
	return "snapshot:" + sessionID
}

func (r *RedisRepository) StoreSnapshot(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	return r.rdb.Set(ctx, snapshotKey(session.ID.String()), data, snapshotTTL).Err()
}

// GetSnapshot returns nil without error when no snapshot exists.
func (r *RedisRepository) GetSnapshot(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := r.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return &session, nil
}

func (r *RedisRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, snapshotKey(sessionID)).Err()
}
