package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("scheduler already started")

// JobFunc is one run of a scheduled job.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	rule    *rrule.RRule
	fn      JobFunc
	running atomic.Bool
	skipped atomic.Int64
}

// Scheduler fires registered jobs on their RRULE occurrences. A job whose
// previous run is still active when it fires again is skipped, not queued.
type Scheduler struct {
	logger  *zap.Logger
	clock   func() time.Time
	mu      sync.Mutex
	jobs    []*job
	started bool
	wg      sync.WaitGroup
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.Named("scheduler"),
		clock:  time.Now,
	}
}

// Register parses schedule (an RRULE such as "FREQ=MINUTELY;INTERVAL=1").
// Occurrences are anchored at the current minute so minutely jobs fire on
// minute boundaries.
func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	rule, err := rrule.StrToRRule(schedule)
	if err != nil {
		return fmt.Errorf("job %s: parse schedule: %w", name, err)
	}
	rule.DTStart(s.clock().Truncate(time.Minute))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.jobs = append(s.jobs, &job{name: name, rule: rule, fn: fn})
	return nil
}

// Start launches one loop per job. Loops stop when ctx is cancelled; Wait
// blocks until they and any in-flight runs have returned.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	for {
		next := nextFire(j.rule, s.clock())
		if next.IsZero() {
			s.logger.Info("schedule exhausted", zap.String("job", j.name))
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("job loop stopped", zap.String("job", j.name))
			return
		case <-timer.C:
			s.fire(ctx, j)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		j.skipped.Add(1)
		s.logger.Warn("previous run still active, skipping", zap.String("job", j.name))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("job panicked", zap.String("job", j.name), zap.Any("panic", r))
			}
		}()

		start := time.Now()
		if err := j.fn(ctx); err != nil {
			s.logger.Error("job failed", zap.String("job", j.name), zap.Duration("duration", time.Since(start)), zap.Error(err))
			return
		}
		s.logger.Debug("job finished", zap.String("job", j.name), zap.Duration("duration", time.Since(start)))
	}()
}

// nextFire returns the first occurrence strictly after now, or zero when the
// rule has no more occurrences.
func nextFire(rule *rrule.RRule, now time.Time) time.Time {
	return rule.After(now, false)
}
