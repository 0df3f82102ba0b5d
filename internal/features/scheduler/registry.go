package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDisabled:
		return "disabled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Runner is what a timer calls when it fires.
type Runner interface {
	RunScheduled(scheduleID string)
}

// ActiveLoader returns the schedules that should be armed at boot.
type ActiveLoader interface {
	ListActive(ctx context.Context) ([]ScheduledReport, error)
}

// ParseCron accepts standard five-field expressions and descriptors such as @daily.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cron expression %q: %v", common_models.ErrInvalidConfig, expr, err)
	}
	return schedule, nil
}

// Registry owns one timer per schedule id. All timers share a single cron
// instance; a firing that is still running when the next tick arrives is skipped.
type Registry struct {
	mu      sync.Mutex
	state   State
	cron    *cron.Cron
	entries map[string]cron.EntryID
	runner  Runner
	loader  ActiveLoader
	logger  *zap.Logger
}

func NewRegistry(cfg *config.Config, loader ActiveLoader, runner Runner, logger *zap.Logger) *Registry {
	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		logger.Warn("Unknown scheduler timezone, using UTC", zap.String("timezone", cfg.SchedulerTimezone), zap.Error(err))
		loc = time.UTC
	}

	cronLogger := zapCronLogger{sugar: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	state := StateUninitialized
	if !cfg.SchedulerEnabled {
		state = StateDisabled
	}

	return &Registry{
		state:   state,
		cron:    c,
		entries: make(map[string]cron.EntryID),
		runner:  runner,
		loader:  loader,
		logger:  logger,
	}
}

func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Register arms the timer for a schedule, replacing any timer already armed
// for the same id. The expression is parsed before anything is touched, so an
// invalid edit leaves the previous timer running.
func (r *Registry) Register(schedule *ScheduledReport) error {
	parsed, err := ParseCron(schedule.ScheduleCron)
	if err != nil {
		return err
	}
	id := schedule.ID.Hex()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisabled {
		return nil
	}

	if old, ok := r.entries[id]; ok {
		r.cron.Remove(old)
		delete(r.entries, id)
	}
	r.entries[id] = r.cron.Schedule(parsed, cron.FuncJob(func() {
		r.runner.RunScheduled(id)
	}))

	r.logger.Debug("Schedule armed", zap.String("schedule_id", id), zap.String("cron", schedule.ScheduleCron))
	return nil
}

// Stop disarms the timer for id. Unknown ids are ignored.
func (r *Registry) Stop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entryID, ok := r.entries[id]; ok {
		r.cron.Remove(entryID)
		delete(r.entries, id)
		r.logger.Debug("Schedule disarmed", zap.String("schedule_id", id))
	}
}

// Start loads every active schedule and starts the timers. It runs once; a
// failed load leaves the registry in StateFailed so a later call can retry.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateDisabled:
		r.mu.Unlock()
		r.logger.Info("Scheduler disabled, only manual runs will execute")
		return nil
	case StateInitializing, StateReady:
		r.mu.Unlock()
		return nil
	}
	r.state = StateInitializing
	r.mu.Unlock()

	schedules, err := r.loader.ListActive(ctx)
	if err != nil {
		r.mu.Lock()
		r.state = StateFailed
		r.mu.Unlock()
		return fmt.Errorf("failed to load active schedules: %w", err)
	}

	for i := range schedules {
		if err := r.Register(&schedules[i]); err != nil {
			r.logger.Error("Failed to arm schedule", zap.String("schedule_id", schedules[i].ID.Hex()), zap.Error(err))
		}
	}

	r.mu.Lock()
	r.cron.Start()
	r.state = StateReady
	armed := len(r.entries)
	r.mu.Unlock()

	r.logger.Info("Scheduler started", zap.Int("schedules", armed))
	return nil
}

// Shutdown stops the timers and waits for running firings to finish or ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return nil
	}
	r.state = StateUninitialized
	done := r.cron.Stop()
	r.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) Armed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NextRun is zero until the cron loop is running.
func (r *Registry) NextRun(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entryID, ok := r.entries[id]
	if !ok {
		return time.Time{}, false
	}
	next := r.cron.Entry(entryID).Next
	return next, !next.IsZero()
}

// zapCronLogger routes the cron library's logging through zap. Its info
// output fires on every tick, so it goes to debug.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
