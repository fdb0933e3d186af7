// Package debugger waits for a debugger to attach before a run starts.
package debugger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout is used when debugging is requested without a duration.
	DefaultTimeout = 10 * time.Second
	// PollInterval is how often attachment is checked.
	PollInterval = time.Second
	// SettleDelay is slept once a debugger is attached.
	SettleDelay = 1300 * time.Millisecond
)

// Detector reports whether a debugger is attached to the process.
type Detector interface {
	Attached() bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func() bool

// Attached calls f.
func (f DetectorFunc) Attached() bool { return f() }

// Sleeper pauses the caller. Sleep returns early with ctx's error when ctx is
// done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Waiter polls a Detector until a debugger attaches or the timeout elapses.
type Waiter struct {
	Detector Detector
	Sleeper  Sleeper
	Logger   *zap.Logger
}

// New creates a waiter using the process detector and the wall clock.
func New(logger *zap.Logger) *Waiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Waiter{Detector: Process(), Sleeper: RealSleeper{}, Logger: logger}
}

// Wait polls once per PollInterval while no debugger is attached and less than
// timeout has been waited. Elapsed time is counted per poll, so an interrupted
// sleep still counts and the loop only re-checks its condition. Once attached,
// Wait sleeps SettleDelay. It reports whether a debugger was attached.
func (w *Waiter) Wait(ctx context.Context, timeout time.Duration) bool {
	log := w.Logger.Named("debugger")
	log.Info("Waiting for debugger to attach", zap.Duration("timeout", timeout))

	var elapsed time.Duration
	for !w.Detector.Attached() && elapsed < timeout {
		log.Debug("Waiting for debugger to attach...")
		if err := w.Sleeper.Sleep(ctx, PollInterval); err != nil {
			log.Debug("Debugger wait interrupted", zap.Error(err))
		}
		elapsed += PollInterval
	}

	if !w.Detector.Attached() {
		log.Info("No debugger connected")
		return false
	}
	log.Info("Waiting for debugger to settle...")
	if err := w.Sleeper.Sleep(ctx, SettleDelay); err != nil {
		log.Debug("Debugger settle interrupted", zap.Error(err))
	}
	log.Info("Debugger connected")
	return true
}
