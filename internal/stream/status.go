package stream

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/veritext/veritext/internal/infra/redis"
	"github.com/veritext/veritext/internal/models"
)

const statusTTL = 12 * time.Hour

// StatusReporter publishes per-check progress into Redis so the CRUD
// layer can poll it while the composer runs.
type StatusReporter struct {
	redisClient *redis.Client
}

func NewStatusReporter(redisClient *redis.Client) *StatusReporter {
	return &StatusReporter{redisClient: redisClient}
}

func (r *StatusReporter) Update(ctx context.Context, checkID string, step models.Step) error {
	validSteps := map[models.Step]bool{
		models.StepIdle:      true,
		models.StepReceived:  true,
		models.StepIndexing:  true,
		models.StepSearching: true,
		models.StepMatching:  true,
		models.StepCompleted: true,
		models.StepFailed:    true,
	}
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := "check_status:" + checkID

	err := r.redisClient.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("checkId", checkID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("checkId", checkID).
		Msg("Status updated in Redis")

	return nil
}

// Get reads the current step of a check, StepIdle when unknown.
func (r *StatusReporter) Get(ctx context.Context, checkID string) (models.Step, error) {
	val, err := r.redisClient.Get(ctx, "check_status:"+checkID).Result()
	if err == goredis.Nil {
		return models.StepIdle, nil
	}
	if err != nil {
		return models.StepIdle, fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
