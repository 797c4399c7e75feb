package scheduler

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

var (
	ErrTaskUnknown = crerr.New("scheduler: unknown task")
	ErrTaskRunning = crerr.New("scheduler: previous run still in flight")
	ErrStarted     = crerr.New("scheduler: already started")
	ErrNotStarted  = crerr.New("scheduler: not started")
)

// Task is one recurring unit of collection work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// TaskStatus is a point-in-time view of one registered task.
type TaskStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	TotalRuns int64         `json:"total_runs"`
	Skipped   int64         `json:"skipped"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
	NextRun   *time.Time    `json:"next_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

const (
	taskIdle int32 = iota
	taskBusy
)

type taskState struct {
	task Task

	// inFlight is the overlap guard: taskIdle or taskBusy, flipped with
	// CompareAndSwap so a tick and a manual trigger can never run the same
	// task twice concurrently.
	inFlight  atomic.Int32
	totalRuns atomic.Int64
	skipped   atomic.Int64

	mu      sync.Mutex
	lastRun time.Time
	nextRun time.Time
	lastErr string
}

// Scheduler drives registered tasks on fixed intervals. Runs execute on a
// shared worker pool; each task has at most one run in flight at a time, and
// manual triggers go through the same guard as scheduled ticks.
type Scheduler struct {
	logger *logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	tasks   []*taskState
	byName  map[string]*taskState
	started bool

	pool *ants.Pool
	wg   conc.WaitGroup
	stop chan struct{}
}

func New(logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		logger: logger,
		now:    time.Now,
		byName: make(map[string]*taskState),
		stop:   make(chan struct{}),
	}
}

// Register adds a task. Tasks registered after Start are ignored until the
// next Start, so wire everything up front.
func (s *Scheduler) Register(task Task) error {
	name := strings.TrimSpace(task.Name)
	if name == "" || task.Run == nil || task.Interval <= 0 {
		return crerr.New("scheduler: task needs a name, an interval and a run func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	if _, exists := s.byName[name]; exists {
		return crerr.Newf("scheduler: task %s already registered", name)
	}

	state := &taskState{task: task}
	state.task.Name = name
	s.tasks = append(s.tasks, state)
	s.byName[name] = state
	return nil
}

// Start launches one ticker loop per task. The context bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}

	poolSize := len(s.tasks)
	if poolSize == 0 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		s.mu.Unlock()
		return crerr.Wrap(err, "scheduler: create worker pool")
	}
	s.pool = pool
	s.started = true
	tasks := s.tasks
	s.mu.Unlock()

	for _, state := range tasks {
		state := state
		state.mu.Lock()
		state.nextRun = s.now().Add(state.task.Interval)
		state.mu.Unlock()

		s.wg.Go(func() {
			s.runLoop(ctx, state)
		})
		s.logger.Info("scheduled task registered",
			"task", state.task.Name,
			"interval", state.task.Interval,
		)
	}
	return nil
}

// Stop halts all ticker loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	if s.pool != nil {
		s.pool.Release()
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, state *taskState) {
	ticker := time.NewTicker(state.task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.trigger(ctx, state, false); err != nil && !crerr.Is(err, ErrTaskRunning) {
				s.logger.WarnContext(ctx, "scheduled run could not be submitted",
					"task", state.task.Name,
					"error", err,
				)
			}
		}
	}
}

// TriggerNow runs a task immediately, subject to the same overlap guard as
// scheduled ticks. ErrTaskRunning means a run is already in flight.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	state, ok := s.byName[strings.TrimSpace(name)]
	s.mu.Unlock()
	if !ok {
		return crerr.Wrapf(ErrTaskUnknown, "%s", name)
	}
	return s.trigger(ctx, state, true)
}

func (s *Scheduler) trigger(ctx context.Context, state *taskState, manual bool) error {
	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()
	if pool == nil {
		return ErrNotStarted
	}

	if !state.inFlight.CompareAndSwap(taskIdle, taskBusy) {
		state.skipped.Add(1)
		if manual {
			return crerr.Wrapf(ErrTaskRunning, "%s", state.task.Name)
		}
		s.logger.DebugContext(ctx, "tick skipped, previous run still in flight", "task", state.task.Name)
		return nil
	}

	submitErr := pool.Submit(func() {
		defer state.inFlight.Store(taskIdle)
		s.runTask(ctx, state)
	})
	if submitErr != nil {
		state.inFlight.Store(taskIdle)
		return crerr.Wrapf(submitErr, "scheduler: submit task %s", state.task.Name)
	}
	return nil
}

func (s *Scheduler) runTask(ctx context.Context, state *taskState) {
	started := s.now()
	err := state.task.Run(ctx)

	state.totalRuns.Add(1)
	state.mu.Lock()
	state.lastRun = started
	state.nextRun = s.now().Add(state.task.Interval)
	if err != nil {
		state.lastErr = err.Error()
	} else {
		state.lastErr = ""
	}
	state.mu.Unlock()

	if err != nil {
		s.logger.WarnContext(ctx, "scheduled task failed",
			"task", state.task.Name,
			"duration_ms", s.now().Sub(started).Milliseconds(),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "scheduled task finished",
		"task", state.task.Name,
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
}

// Snapshot reports per-task counters for the observability surface.
func (s *Scheduler) Snapshot() []TaskStatus {
	s.mu.Lock()
	tasks := s.tasks
	s.mu.Unlock()

	out := make([]TaskStatus, 0, len(tasks))
	for _, state := range tasks {
		status := TaskStatus{
			Name:      state.task.Name,
			Interval:  state.task.Interval,
			Running:   state.inFlight.Load() == taskBusy,
			TotalRuns: state.totalRuns.Load(),
			Skipped:   state.skipped.Load(),
		}
		state.mu.Lock()
		if !state.lastRun.IsZero() {
			lastRun := state.lastRun
			status.LastRun = &lastRun
		}
		if !state.nextRun.IsZero() {
			nextRun := state.nextRun
			status.NextRun = &nextRun
		}
		status.LastError = state.lastErr
		state.mu.Unlock()
		out = append(out, status)
	}
	return out
}
