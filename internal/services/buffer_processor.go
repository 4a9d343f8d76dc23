package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/infrastructure/buffer"
	"github.com/fastygo/eventhub/repository"
)

var errNoActivityStore = errors.New("activity repository not configured")

// ConnectionHealth reports whether primary storage is reachable.
type ConnectionHealth interface {
	IsOnline() bool
}

type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// BufferProcessor appends ledger entries to primary storage. Entries that
// cannot be written are spooled and replayed by a cron job until they land or
// run out of retries.
type BufferProcessor struct {
	spool      *buffer.Store
	health     ConnectionHealth
	activities repository.ActivityRepository
	logger     *zap.Logger
	scheduler  *cron.Cron
	cfg        ProcessorConfig
}

func NewBufferProcessor(
	spool *buffer.Store,
	health ConnectionHealth,
	activities repository.ActivityRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		spool:      spool,
		health:     health,
		activities: activities,
		logger:     logger.Named("activity_spool"),
		cfg:        cfg,
		scheduler:  cron.New(),
	}
	bp.scheduler.Schedule(cron.Every(cfg.Interval), cron.FuncJob(bp.tick))
	return bp
}

func (bp *BufferProcessor) Start() {
	bp.scheduler.Start()
	bp.logger.Info("replay scheduled", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running replay to finish or for ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	select {
	case <-bp.scheduler.Stop().Done():
	case <-ctx.Done():
	}
	bp.logger.Info("replay stopped")
}

func (bp *BufferProcessor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	if _, err := bp.Drain(ctx); err != nil {
		bp.logger.Error("replay failed", zap.Error(err))
	}
}

// Submit writes item straight to storage when it is online and spools it
// otherwise, or when the direct write fails.
func (bp *BufferProcessor) Submit(ctx context.Context, item buffer.Item) error {
	if bp.online() {
		err := bp.apply(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("direct write failed, spooling",
			zap.String("item_id", item.ID),
			zap.String("event_id", item.EventID),
			zap.Error(err))
	}
	return bp.spool.Push(item)
}

// Drain replays one batch of spooled items and returns how many reached
// storage. Nothing is attempted while storage is offline.
func (bp *BufferProcessor) Drain(ctx context.Context) (int, error) {
	if !bp.online() {
		bp.logger.Debug("storage offline, replay skipped")
		return 0, nil
	}

	batch, err := bp.spool.Peek(bp.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("read spool: %w", err)
	}

	replayed := 0
	for _, item := range batch {
		if ctx.Err() != nil {
			return replayed, ctx.Err()
		}
		if err := bp.apply(ctx, item); err != nil {
			bp.fail(item, err)
			continue
		}
		if err := bp.spool.Ack(item.ID); err != nil {
			bp.logger.Warn("ack failed", zap.String("item_id", item.ID), zap.Error(err))
			continue
		}
		replayed++
	}
	if replayed > 0 {
		bp.logger.Info("spool replayed", zap.Int("count", replayed))
	}
	return replayed, nil
}

// Pending returns the number of spooled items, or zero when the spool cannot
// be read.
func (bp *BufferProcessor) Pending() int {
	n, err := bp.spool.Len()
	if err != nil {
		return 0
	}
	return n
}

func (bp *BufferProcessor) fail(item buffer.Item, cause error) {
	retries, err := bp.spool.Retry(item.ID)
	if err != nil {
		bp.logger.Error("retry bookkeeping failed", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("item_id", item.ID),
		zap.String("event_id", item.EventID),
		zap.Int("retries", retries),
		zap.Error(cause),
	}
	if retries < bp.cfg.MaxRetries {
		bp.logger.Warn("replay attempt failed", fields...)
		return
	}
	bp.logger.Error("dropping spooled item after max retries", fields...)
	if err := bp.spool.Ack(item.ID); err != nil {
		bp.logger.Warn("drop failed", zap.String("item_id", item.ID), zap.Error(err))
	}
}

func (bp *BufferProcessor) online() bool {
	return bp.health == nil || bp.health.IsOnline()
}

func (bp *BufferProcessor) apply(ctx context.Context, item buffer.Item) error {
	if bp.activities == nil {
		return errNoActivityStore
	}
	if item.Entity != buffer.EntityActivity || item.Operation != buffer.OperationAppend {
		return fmt.Errorf("unsupported spool item %s/%s", item.Entity, item.Operation)
	}
	var activity domain.Activity
	if err := json.Unmarshal(item.Data, &activity); err != nil {
		return fmt.Errorf("decode activity: %w", err)
	}
	return bp.activities.Append(ctx, activity)
}
