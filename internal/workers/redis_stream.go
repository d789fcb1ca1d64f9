package workers

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/features/raffle/models"
	raffleredis "raffle-sales-backend/internal/features/raffle/repository/redis"
	"raffle-sales-backend/internal/platform/redis"
)

const consumerGroup = "raffle_backend_consumers"

// CacheInvalidator drops cached pool rows of a raffle.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, raffleID string) error
}

// Notifier forwards an event to people, e.g. the admin chat.
type Notifier interface {
	Notify(ctx context.Context, e models.Event) error
}

// RedisStreamWorker consumes the raffle event stream. It keeps the pool
// cache coherent across instances and sends admin notifications.
type RedisStreamWorker struct {
	rdb      *redis.Client
	cache    CacheInvalidator
	notifier Notifier
	consumer string
	block    time.Duration
	logger   zerolog.Logger
}

// NewRedisStreamWorker builds a worker. notifier may be nil.
func NewRedisStreamWorker(rdb *redis.Client, cache CacheInvalidator, notifier Notifier, consumer string, logger zerolog.Logger) *RedisStreamWorker {
	return &RedisStreamWorker{
		rdb:      rdb,
		cache:    cache,
		notifier: notifier,
		consumer: consumer,
		block:    5 * time.Second,
		logger:   logger,
	}
}

// Start begins listening to the Redis stream for events.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	if err := w.ensureGroup(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Error creating consumer group")
	}

	w.logger.Info().Str("consumer", w.consumer).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping Redis stream worker")
			return
		default:
			if _, err := w.poll(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("Error reading from stream")
				time.Sleep(time.Second) // backoff on error
			}
		}
	}
}

func (w *RedisStreamWorker) ensureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, raffleredis.EventStream, consumerGroup, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// poll reads one batch from the stream, processes and acknowledges it, and
// returns how many messages it handled.
func (w *RedisStreamWorker) poll(ctx context.Context) (int, error) {
	entries, err := w.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: w.consumer,
		Streams:  []string{raffleredis.EventStream, ">"},
		Count:    10,
		Block:    w.block,
	}).Result()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) { // timeout/no messages
			return 0, nil
		}
		return 0, err
	}

	handled := 0
	for _, stream := range entries {
		for _, msg := range stream.Messages {
			w.processMessage(ctx, msg.Values)
			// Acknowledge the message
			if err := w.rdb.XAck(ctx, raffleredis.EventStream, consumerGroup, msg.ID).Err(); err != nil {
				w.logger.Warn().Err(err).Str("id", msg.ID).Msg("Error acknowledging message")
			}
			handled++
		}
	}
	return handled, nil
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	event, err := raffleredis.DecodeEvent(values)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Skipping malformed event")
		return
	}

	log := w.logger.With().Str("event", string(event.Type)).Str("raffle_id", event.RaffleID).Logger()

	switch event.Type {
	case models.EventNumbersReserved, models.EventNumbersSold:
		if err := w.cache.Invalidate(ctx, event.RaffleID); err != nil {
			log.Error().Err(err).Msg("Error invalidating pool cache")
		}
	case models.EventFraudReported:
	default:
		log.Debug().Msg("Ignoring unknown event")
		return
	}

	if w.notifier != nil {
		if err := w.notifier.Notify(ctx, event); err != nil {
			log.Error().Err(err).Msg("Error sending notification")
		}
	}
}
