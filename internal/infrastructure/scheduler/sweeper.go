package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/ecomdash/backend/internal/application/sync"
	"github.com/ecomdash/backend/internal/domain/merchant"
)

// SyncTrigger requests a sync run. The sync service's own trigger guards
// against double-starting a pair, so the sweeper does not have to.
type SyncTrigger interface {
	Trigger(ctx context.Context, cmd appsync.TriggerCommand) (*appsync.TriggerResult, error)
}

// SweeperConfig holds sweep cadence configuration
type SweeperConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Enabled:   true,
		Interval:  15 * time.Minute,
		BatchSize: 20,
	}
}

// Sweeper periodically enqueues incremental syncs for active shops,
// least recently synced first
type Sweeper struct {
	config  SweeperConfig
	shops   merchant.ShopRepository
	trigger SyncTrigger
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a sweeper
func NewSweeper(config SweeperConfig, shops merchant.ShopRepository, trigger SyncTrigger, logger *zap.Logger) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	if config.BatchSize < 1 {
		config.BatchSize = DefaultSweeperConfig().BatchSize
	}
	return &Sweeper{
		config:  config,
		shops:   shops,
		trigger: trigger,
		logger:  logger,
	}
}

// Start starts the sweep loop
func (w *Sweeper) Start(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.Info("Sync sweeper disabled")
		return nil
	}

	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("Sync sweeper started",
		zap.Duration("interval", w.config.Interval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	return nil
}

// Stop stops the sweep loop
func (w *Sweeper) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Sync sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Sweeper) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep enqueues one batch of incremental syncs per resource. Exported so
// an operator endpoint can force a pass outside the cadence.
func (w *Sweeper) Sweep(ctx context.Context) {
	for _, resource := range []merchant.SyncResource{
		merchant.SyncResourceProducts,
		merchant.SyncResourceOrders,
	} {
		shops, err := w.shops.FindSyncable(ctx, resource, w.config.BatchSize)
		if err != nil {
			w.logger.Error("Sweep lookup failed",
				zap.String("resource", resource.String()),
				zap.Error(err),
			)
			continue
		}

		accepted := 0
		for i := range shops {
			result, err := w.trigger.Trigger(ctx, appsync.TriggerCommand{
				ShopID:   shops[i].ID,
				Resource: resource,
			})
			if err != nil {
				w.logger.Warn("Sweep trigger failed",
					zap.String("shop_id", shops[i].ID.String()),
					zap.String("resource", resource.String()),
					zap.Error(err),
				)
				continue
			}
			if result.Accepted {
				accepted++
			}
		}

		if len(shops) > 0 {
			w.logger.Debug("Sweep pass finished",
				zap.String("resource", resource.String()),
				zap.Int("candidates", len(shops)),
				zap.Int("accepted", accepted),
			)
		}
	}
}
