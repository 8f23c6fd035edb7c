package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/veritext/veritext/internal/engine"
	"github.com/veritext/veritext/internal/models"
)

// Consumer reads document submissions from a Redis stream and runs a
// plagiarism check for each through the composer. Failed messages go
// to a dead-letter list instead of blocking the stream.
type Consumer struct {
	client              *redis.Client
	streamKey           string
	consumerGroup       string
	consumerName        string
	deadLetterKey       string
	composer            *engine.Composer
	pool                *engine.WorkerPool
	pelRecoveryInterval time.Duration
	lastPELCheck        time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	deadLetterKey string,
	composer *engine.Composer,
	pool *engine.WorkerPool,
) *Consumer {
	return &Consumer{
		client:              client,
		streamKey:           streamKey,
		consumerGroup:       consumerGroup,
		consumerName:        consumerName,
		deadLetterKey:       deadLetterKey,
		composer:            composer,
		pool:                pool,
		pelRecoveryInterval: 30 * time.Second,
		lastPELCheck:        time.Now(),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.createConsumerGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group, may already exist")
	}

	// Recover PEL messages on startup (handle crash recovery)
	log.Info().Msg("Recovering PEL messages on startup")
	if err := c.recoverPEL(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover PEL messages on startup")
	}
	c.lastPELCheck = time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consume(ctx); err != nil {
				log.Error().Err(err).Msg("Error consuming messages")
				time.Sleep(1 * time.Second) // Brief pause before retrying
			}
		}
	}
}

func (c *Consumer) createConsumerGroup(ctx context.Context) error {
	// MKSTREAM will create the stream if it doesn't exist
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().
				Str("group", c.consumerGroup).
				Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created new consumer group (will only read new messages)")
	return nil
}

// recovers pending messages from the Pending Entry List
func (c *Consumer) recoverPEL(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil // No pending messages
		}
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	// Claim pending messages that are idle for more than 1 minute
	minIdleTime := 1 * time.Minute
	messageIDs := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			messageIDs = append(messageIDs, p.ID)
		}
	}

	if len(messageIDs) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  minIdleTime,
		Messages: messageIDs,
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	if len(claimed) == 0 {
		return nil
	}

	log.Info().
		Int("claimed", len(claimed)).
		Msg("Successfully claimed PEL messages, processing")

	for _, msg := range claimed {
		if err := c.processMessage(ctx, &msg); err != nil {
			log.Error().
				Err(err).
				Str("message_id", msg.ID).
				Msg("Failed to process claimed PEL message")
		}
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context) error {
	// Periodically check for PEL messages (every 30 seconds)
	if time.Since(c.lastPELCheck) > c.pelRecoveryInterval {
		if err := c.recoverPEL(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover PEL messages")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    10,          // Read up to 10 messages at a time
		Block:    time.Second, // Block for 1 second if no messages
	}).Result()

	if err == redis.Nil {
		return nil // No messages available
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	// Checks for unrelated documents have no ordering requirement, so
	// the batch is processed concurrently.
	group, groupCtx := errgroup.WithContext(ctx)
	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}

		for _, msg := range stream.Messages {
			group.Go(func() error {
				if err := c.processMessage(groupCtx, &msg); err != nil {
					log.Error().
						Err(err).
						Str("message_id", msg.ID).
						Msg("Failed to process message")
				}
				// Per-document failures never abort the batch.
				return nil
			})
		}
	}

	return group.Wait()
}

// processMessage runs the plagiarism check for a single submission.
// The check itself is scheduled on the worker pool so that check
// concurrency stays bounded by CPU regardless of batch size.
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	submission, err := parseSubmission(msg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse submission")
		// Dead-letter and acknowledge bad messages to avoid reprocessing
		c.deadLetter(ctx, msg, err)
		c.acknowledge(ctx, msg.ID)
		return err
	}

	resultChan := make(chan engine.CheckResult, 1)
	job := &engine.CheckJob{
		Composer:   c.composer,
		Submission: submission,
		ResultChan: resultChan,
	}
	if err := c.pool.Submit(job); err != nil {
		return fmt.Errorf("failed to submit check job: %w", err)
	}

	select {
	case <-ctx.Done():
		// Unacknowledged messages stay in the PEL and are reclaimed later
		return ctx.Err()
	case result := <-resultChan:
		if result.Err != nil {
			c.deadLetter(ctx, msg, result.Err)
			c.acknowledge(ctx, msg.ID)
			return result.Err
		}
	}

	return c.acknowledge(ctx, msg.ID)
}

// parseSubmission decodes a stream message into a submission. The
// payload is either a single JSON "payload" field or flat fields.
func parseSubmission(msg *redis.XMessage) (models.Submission, error) {
	var sub models.Submission

	if raw, ok := msg.Values["payload"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return sub, fmt.Errorf("invalid payload JSON: %w", err)
		}
	} else {
		sub.DocumentID, _ = msg.Values["documentId"].(string)
		sub.Title, _ = msg.Values["title"].(string)
		sub.Author, _ = msg.Values["author"].(string)
		sub.Content, _ = msg.Values["content"].(string)
	}

	if sub.Title == "" {
		return sub, fmt.Errorf("submission missing title")
	}
	return sub, nil
}

// deadLetter pushes a failed message onto the dead-letter list with
// the failure reason attached.
func (c *Consumer) deadLetter(ctx context.Context, msg *redis.XMessage, cause error) {
	entry, err := json.Marshal(map[string]interface{}{
		"messageId": msg.ID,
		"values":    msg.Values,
		"error":     cause.Error(),
		"failedAt":  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to marshal dead-letter entry")
		return
	}

	if err := c.client.LPush(ctx, c.deadLetterKey, entry).Err(); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to push message to dead-letter queue")
		return
	}

	log.Warn().
		Str("message_id", msg.ID).
		Str("dead_letter_key", c.deadLetterKey).
		Msg("Message sent to dead-letter queue")
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err()
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}

	log.Debug().
		Str("message_id", messageID).
		Msg("Message acknowledged")

	return nil
}
