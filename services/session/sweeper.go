package session

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Evictor flushes and removes one idle session.
type Evictor interface {
	EvictIdle(ctx context.Context, id string) error
}

// Sweeper periodically evicts sessions idle for longer than the timeout.
type Sweeper struct {
	store   Store
	evictor Evictor
	idle    time.Duration
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

func NewSweeper(store Store, evictor Evictor, idle time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:   store,
		evictor: evictor,
		idle:    idle,
		timeout: 30 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules Sweep with a cron spec such as "@every 1m".
func (s *Sweeper) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", spec), zap.Duration("idleTimeout", s.idle))
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep evicts every session idle past the cutoff and returns how many it
// handed to the evictor. Eviction failures are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.store.Idle(ctx, s.now().Add(-s.idle))
	if err != nil {
		s.logger.Error("idle session lookup failed", zap.Error(err))
		return 0
	}
	evicted := 0
	for _, id := range ids {
		if err := s.evictor.EvictIdle(ctx, id); err != nil {
			s.logger.Warn("idle session eviction failed", zap.String("sessionID", id), zap.Error(err))
			continue
		}
		evicted++
	}
	if evicted > 0 {
		s.logger.Info("evicted idle sessions", zap.Int("count", evicted))
	}
	return evicted
}
