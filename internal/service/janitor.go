package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/posternauth/postern/internal/store"
)

// Janitor periodically deletes expired authorization codes and dead refresh
// tokens so those tables do not grow without bound.
type Janitor struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJanitor creates a janitor sweeping at the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewJanitor(st store.Store, logger *slog.Logger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (j *Janitor) Start() {
	go j.run()
	j.Logger.Info("janitor started", "interval", j.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (j *Janitor) Stop() {
	close(j.stopCh)
	<-j.doneCh
	j.Logger.Info("janitor stopped")
}

func (j *Janitor) run() {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	// Sweep once immediately on startup
	j.sweep()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

// sweep deletes what has expired. Each deletion is independent; a failure in
// one does not stop the others.
func (j *Janitor) sweep() {
	ctx := context.Background()

	if err := j.Store.AuthCodes().DeleteExpiredAuthCodes(ctx); err != nil {
		j.Logger.Error("failed to delete expired authorization codes", "error", err)
	}
	if err := j.Store.RefreshTokens().DeleteDeadRefreshTokens(ctx); err != nil {
		j.Logger.Error("failed to delete dead refresh tokens", "error", err)
	}

	j.Logger.Debug("janitor sweep completed")
}
