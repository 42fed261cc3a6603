package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barberq.backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const turnResetLockTTL = 23 * time.Hour

type turnResetter interface {
	ResetAllTurns(ctx context.Context) (int64, error)
}

// LockFunc acquires a named lock for ttl and reports whether it was taken
type LockFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)

// TurnResetJob zeroes every merchant's current turn on a cron schedule
type TurnResetJob struct {
	repo     turnResetter
	schedule cron.Schedule
	spec     string
	loc      *time.Location
	lock     LockFunc
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTurnResetJob validates the cron expression. lock may be nil when only
// one instance runs the scheduler.
func NewTurnResetJob(repo turnResetter, spec string, loc *time.Location, lock LockFunc) (*TurnResetJob, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid turn reset schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TurnResetJob{
		repo:     repo,
		schedule: schedule,
		spec:     spec,
		loc:      loc,
		lock:     lock,
		now:      time.Now,
		stop:     make(chan struct{}),
	}, nil
}

// Start runs the scheduler until ctx is cancelled or Stop is called
func (j *TurnResetJob) Start(ctx context.Context) {
	c := cron.New(cron.WithLocation(j.loc))
	c.Schedule(j.schedule, cron.FuncJob(func() { j.runOnce(ctx) }))
	c.Start()
	logger.Info(ctx, "Turn reset job started", zap.String("schedule", j.spec))

	select {
	case <-ctx.Done():
	case <-j.stop:
	}
	<-c.Stop().Done()
	logger.Info(context.Background(), "Turn reset job stopped")
}

// Stop ends a running Start; extra calls are ignored
func (j *TurnResetJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *TurnResetJob) runOnce(ctx context.Context) {
	if j.lock != nil {
		key := "barberq:lock:turn_reset:" + j.now().In(j.loc).Format("2006-01-02")
		ok, err := j.lock(ctx, key, turnResetLockTTL)
		if err != nil {
			logger.Warn(ctx, "Turn reset lock unavailable, resetting anyway", zap.Error(err))
		} else if !ok {
			logger.Debug(ctx, "Turn reset already done by another instance", zap.String("key", key))
			return
		}
	}

	count, err := j.repo.ResetAllTurns(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to reset turns", zap.Error(err))
		return
	}
	logger.Info(ctx, "Reset current turn numbers", zap.Int64("merchants", count))
}
