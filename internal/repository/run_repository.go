package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// runTTL bounds how long a prepared generation run may sit in review before
// it expires.
const runTTL = 2 * time.Hour

var ErrRunNotFound = errors.New("generation run not found or expired")

// RunRepository parks in-flight generation runs in Redis between the prepare,
// regenerate and render steps of the interactive flow. The payload is opaque
// here; the worksheet service owns its shape.
type RunRepository struct {
	rdb *redis.Client
}

func NewRunRepository(rdb *redis.Client) *RunRepository {
	return &RunRepository{rdb: rdb}
}

func runKey(runID string) string {
	return "worksheet:run:" + runID
}

func (r *RunRepository) Save(ctx context.Context, runID string, payload []byte) error {
	return r.rdb.Set(ctx, runKey(runID), payload, runTTL).Err()
}

func (r *RunRepository) Load(ctx context.Context, runID string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RunRepository) Delete(ctx context.Context, runID string) error {
	return r.rdb.Del(ctx, runKey(runID)).Err()
}
