package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/rivenwatch/internal/logging"
)

// ErrEmptyCatalog rejects a refresh that would publish a catalog with no weapons.
var ErrEmptyCatalog = errors.New("refreshed catalog has no weapons")

// #region refresh-config
// RefreshConfig controls the scheduled catalog refresh.
type RefreshConfig struct {
	Schedule   string        // cron spec, e.g. "@every 6h" or "0 */6 * * *"
	Timeout    time.Duration // per-attempt deadline
	Retries    int           // extra fetch attempts after a failure
	RetryDelay time.Duration
}

// DefaultRefreshConfig refreshes every six hours with a two minute deadline
// and up to two retries.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Schedule:   "@every 6h",
		Timeout:    2 * time.Minute,
		Retries:    2,
		RetryDelay: 30 * time.Second,
	}
}

// #endregion refresh-config

// #region refresher
// Committer persists a snapshot; *Store satisfies it.
type Committer interface {
	Commit(snap *Snapshot, source string) (VersionRecord, error)
}

// RefreshObserver is notified after every refresh attempt.
type RefreshObserver interface {
	ObserveRefresh(ok bool, weapons int)
}

// Refresher fetches a new snapshot, persists it and swaps it into the holder.
// A failed refresh leaves the published snapshot untouched.
type Refresher struct {
	source   Source
	store    Committer // optional
	holder   *Holder
	logger   zerolog.Logger
	observer RefreshObserver // optional
	config   RefreshConfig

	mu   sync.Mutex // serializes refreshes
	cron *cron.Cron
}

// NewRefresher wires a refresher. store and observer may be nil.
func NewRefresher(source Source, store Committer, holder *Holder, observer RefreshObserver, logger zerolog.Logger, config RefreshConfig) *Refresher {
	return &Refresher{
		source:   source,
		store:    store,
		holder:   holder,
		observer: observer,
		logger:   logger.With().Str(logging.SERVICE, "catalog-refresher").Str("source", source.Name()).Logger(),
		config:   config,
	}
}

// Refresh runs one fetch-commit-swap cycle.
func (r *Refresher) Refresh(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	snap, err := r.refresh(ctx)
	if r.observer != nil {
		n := 0
		if snap != nil {
			n = snap.Len()
		}
		r.observer.ObserveRefresh(err == nil, n)
	}
	if err != nil {
		r.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("catalog refresh failed")
		return nil, err
	}

	r.logger.Info().
		Str("version", snap.Version()).
		Int("weapons", snap.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("catalog refreshed")
	return snap, nil
}

func (r *Refresher) refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if r.store != nil {
		if _, err := r.store.Commit(snap, r.source.Name()); err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
	}
	r.holder.Swap(snap)
	return snap, nil
}

// fetch calls the source up to 1+Retries times. A canceled parent context
// stops the loop.
func (r *Refresher) fetch(ctx context.Context) (*Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.Retries; attempt++ {
		if attempt > 0 {
			r.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("retrying catalog fetch")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch: %w", ctx.Err())
			case <-time.After(r.config.RetryDelay):
			}
		}

		snap, err := r.fetchOnce(ctx)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("fetch: %w", lastErr)
}

func (r *Refresher) fetchOnce(ctx context.Context) (*Snapshot, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	return r.source.Fetch(ctx)
}

// #endregion refresher

// #region schedule
// Start schedules Refresh on the configured cron spec.
func (r *Refresher) Start() error {
	c := cron.New()
	_, err := c.AddFunc(r.config.Schedule, func() {
		// failures are logged by Refresh; the previous snapshot stays published
		_, _ = r.Refresh(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", r.config.Schedule, err)
	}
	r.cron = c
	c.Start()
	r.logger.Info().Str("schedule", r.config.Schedule).Msg("catalog refresher started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.logger.Info().Msg("catalog refresher stopped")
}

// #endregion schedule
