// Package board owns the task collection of one project and applies every
// mutation optimistically before the gateway confirms or rejects it.
package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/worker"
)

// Dispatcher runs gateway calls off the caller's goroutine. Jobs with the same
// Shard must run one at a time, in submission order.
type Dispatcher interface {
	Submit(job worker.Job) error
}

type Options struct {
	Columns        []string
	Reporter       string
	RollbackStatus bool
	// Timeout bounds Hydrate when the caller's context has no deadline.
	Timeout time.Duration
	Clock   func() time.Time
}

// slot is one arena entry. Its index never changes, so the temporary to
// permanent id swap only rebinds byID. Hydrate sets entries it discards to
// nil; indexes are never reused.
type slot struct {
	task            model.Task
	version         uint64
	confirmedStatus string
	live            bool
	// touched is the store tick of the last local mutation, 0 for tasks
	// that came from a snapshot.
	touched uint64
}

type Store struct {
	project string
	gw      gateway.Gateway
	jobs    Dispatcher
	logger  *zap.Logger
	opts    Options

	mu       sync.RWMutex
	tick     uint64
	slots    []*slot
	order    []int
	byID     map[string]int
	columns  []string
	loading  bool
	loadErr  error
	failures []error

	subMu   sync.RWMutex
	subs    map[int]func(Event)
	nextSub int

	pendMu  sync.Mutex
	pendCnd *sync.Cond
	pending int
}

func NewStore(projectKey string, gw gateway.Gateway, jobs Dispatcher, logger *zap.Logger, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Reporter == "" {
		opts.Reporter = "You"
	}

	var columns []string
	for _, c := range opts.Columns {
		c = strings.TrimSpace(c)
		if c != "" && !contains(columns, c) {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		columns = model.DefaultColumns()
	}

	s := &Store{
		project: projectKey,
		gw:      gw,
		jobs:    jobs,
		logger:  logger.With(zap.String("project", projectKey)),
		opts:    opts,
		byID:    make(map[string]int),
		columns: columns,
		subs:    make(map[int]func(Event)),
	}
	s.pendCnd = sync.NewCond(&s.pendMu)
	return s
}

func (s *Store) Project() string {
	return s.project
}

// Hydrate replaces the collection with the gateway's view of the project.
// Tasks created, moved or deleted while the load was in flight keep their
// local state, since the snapshot may predate them. Everything else is
// discarded: on failure only those in-flight changes remain and LoadErr
// reports the cause.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = nil
	s.failures = nil
	mark := s.tick
	s.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok && s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	tasks, err := s.gw.ListIssues(ctx, s.project)

	s.mu.Lock()
	s.loading = false

	// Slots touched after mark survive, keyed by their current id.
	kept := make(map[string]int)
	keptOrder := append([]int(nil), s.order...)
	for idx, sl := range s.slots {
		if sl == nil {
			continue
		}
		if sl.touched <= mark {
			s.slots[idx] = nil
			continue
		}
		kept[sl.task.ID] = idx
	}
	s.order = nil
	s.byID = make(map[string]int)

	var added []string
	if err == nil {
		for _, t := range tasks {
			if _, dup := s.byID[t.ID]; dup || t.ID == "" {
				s.logger.Warn("skipping task with duplicate or empty id", zap.String("task_id", t.ID))
				continue
			}
			if strings.TrimSpace(t.Status) == "" {
				s.logger.Warn("skipping task without status", zap.String("task_id", t.ID))
				continue
			}
			if idx, ok := kept[t.ID]; ok {
				delete(kept, t.ID)
				// Deleted locally while loading: stays deleted.
				if s.slots[idx].live {
					s.placeLocked(idx)
				}
				continue
			}
			if !contains(s.columns, t.Status) {
				s.columns = append(s.columns, t.Status)
				added = append(added, t.Status)
			}
			s.insertLocked(&slot{task: t, version: 1, confirmedStatus: t.Status, live: true})
		}
	}
	// In-flight creates the snapshot has not seen yet go after it, in their
	// previous order.
	for _, idx := range keptOrder {
		sl := s.slots[idx]
		if sl == nil || !sl.live {
			continue
		}
		if cur, ok := kept[sl.task.ID]; ok && cur == idx {
			s.placeLocked(idx)
		}
	}
	count := len(s.order)

	if err != nil {
		s.loadErr = fmt.Errorf("%w: %w", ErrLoad, err)
		loadErr := s.loadErr
		s.mu.Unlock()

		s.logger.Error("failed to load tasks", zap.Error(err), zap.Int("kept", count))
		s.emit(Event{Kind: EventLoadFailed, Err: loadErr})
		return loadErr
	}
	s.mu.Unlock()

	for _, c := range added {
		s.logger.Warn("gateway returned unknown status, appended column", zap.String("column", c))
	}
	s.logger.Info("tasks loaded", zap.Int("count", count))

	events := make([]Event, 0, len(added)+1)
	for _, c := range added {
		events = append(events, Event{Kind: EventColumnAdded, Column: c})
	}
	s.emit(append(events, Event{Kind: EventHydrated})...)
	return nil
}

// CreateTask inserts the task right away under a temporary id and confirms
// it with the gateway in the background.
func (s *Store) CreateTask(in model.NewTask) (model.Task, error) {
	in = in.WithDefaults()
	if in.Title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !in.Type.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	}
	if !in.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if in.Reporter == "" {
		in.Reporter = s.opts.Reporter
	}

	s.mu.Lock()
	if !contains(s.columns, in.Status) {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	task := model.Task{
		ID:        model.TempIDPrefix + uuid.NewString(),
		Key:       model.PlaceholderKey(s.project),
		Title:     in.Title,
		Type:      in.Type,
		Status:    in.Status,
		Assignee:  in.Assignee,
		Reporter:  in.Reporter,
		Priority:  in.Priority,
		CreatedAt: s.opts.Clock(),
	}
	idx := s.insertLocked(&slot{task: task, version: 1, live: true})
	s.touchLocked(idx)
	s.mu.Unlock()

	s.emit(Event{Kind: EventCreated, Task: task})
	s.submit(idx, OpCreate, func(ctx context.Context) error {
		return s.confirmCreate(ctx, idx, in)
	})
	return task, nil
}

func (s *Store) confirmCreate(ctx context.Context, idx int, in model.NewTask) error {
	created, err := call(ctx, func() (model.Task, error) {
		return s.gw.CreateIssue(ctx, s.project, in)
	})

	s.mu.Lock()
	sl := s.slots[idx]
	if sl == nil {
		// Discarded by Hydrate.
		s.mu.Unlock()
		return err
	}
	tempID := sl.task.ID

	if err != nil {
		var rolledBack *model.Task
		if sl.live {
			s.removeLocked(idx)
			t := sl.task
			rolledBack = &t
		}
		terr := s.failLocked(OpCreate, tempID, err)
		s.mu.Unlock()

		s.logger.Warn("create rejected, optimistic task removed", zap.String("task_id", tempID), zap.Error(err))
		events := []Event{{Kind: EventTransportFailed, Err: terr}}
		if rolledBack != nil {
			events = append([]Event{{Kind: EventRolledBack, Task: *rolledBack, Err: terr}}, events...)
		}
		s.emit(events...)
		return terr
	}

	if !sl.live {
		// Deleted before confirmation. The queued delete job picks up the
		// permanent id from the slot.
		sl.task.ID = created.ID
		sl.task.Key = created.Key
		s.mu.Unlock()
		return nil
	}

	local := sl.task
	merged := created
	merged.Reporter = firstNonEmpty(created.Reporter, local.Reporter)
	if created.CreatedAt.IsZero() {
		merged.CreatedAt = local.CreatedAt
	}
	sl.confirmedStatus = created.Status
	// A status change issued while the create was in flight wins; its patch
	// job is queued behind this one.
	if sl.version > 1 || !contains(s.columns, created.Status) {
		merged.Status = local.Status
	}
	sl.task = merged
	delete(s.byID, tempID)
	s.byID[merged.ID] = idx
	// Keeps the confirmed task if a load started before this point.
	s.touchLocked(idx)
	s.mu.Unlock()

	s.logger.Debug("task confirmed", zap.String("temp_id", tempID), zap.String("task_id", merged.ID), zap.String("key", merged.Key))
	s.emit(Event{Kind: EventConfirmed, Task: merged, PrevID: tempID})
	return nil
}

// UpdateStatus moves a task to another configured column.
func (s *Store) UpdateStatus(id, status string) error {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !contains(s.columns, status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ev, ver, changed := s.setStatusLocked(idx, status)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	s.emit(ev)
	s.submit(idx, OpPatch, func(ctx context.Context) error {
		return s.sendStatus(ctx, idx, ver)
	})
	return nil
}

// AdvanceStatus moves a task to the next column, wrapping from the last
// column back to the first. It returns the new status.
func (s *Store) AdvanceStatus(id string) (string, error) {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := indexOf(s.columns, s.slots[idx].task.Status)
	next := s.columns[(cur+1)%len(s.columns)]
	ev, ver, changed := s.setStatusLocked(idx, next)
	s.mu.Unlock()

	if changed {
		s.emit(ev)
		s.submit(idx, OpPatch, func(ctx context.Context) error {
			return s.sendStatus(ctx, idx, ver)
		})
	}
	return next, nil
}

func (s *Store) setStatusLocked(idx int, status string) (Event, uint64, bool) {
	sl := s.slots[idx]
	prev := sl.task.Status
	if prev == status {
		return Event{}, sl.version, false
	}
	sl.task.Status = status
	sl.version++
	s.touchLocked(idx)
	return Event{Kind: EventStatusChanged, Task: sl.task, Prev: prev}, sl.version, true
}

func (s *Store) sendStatus(ctx context.Context, idx int, ver uint64) error {
	s.mu.RLock()
	sl := s.slots[idx]
	// A newer update is queued behind this one, or the task is gone.
	if sl == nil || !sl.live || sl.version != ver || sl.task.Temporary() {
		s.mu.RUnlock()
		return nil
	}
	id, status := sl.task.ID, sl.task.Status
	s.mu.RUnlock()

	updated, err := call(ctx, func() (*model.Task, error) {
		return s.gw.PatchIssue(ctx, id, model.StatusPatch{Status: status})
	})

	s.mu.Lock()
	if s.slots[idx] != sl {
		s.mu.Unlock()
		return err
	}

	if err != nil {
		terr := s.failLocked(OpPatch, id, err)
		var reverted *Event
		if s.opts.RollbackStatus && sl.live && sl.version == ver && sl.confirmedStatus != "" && sl.task.Status != sl.confirmedStatus {
			prev := sl.task.Status
			sl.task.Status = sl.confirmedStatus
			sl.version++
			reverted = &Event{Kind: EventStatusReverted, Task: sl.task, Prev: prev, Err: terr}
		}
		s.mu.Unlock()

		s.logger.Warn("status update failed", zap.String("task_id", id), zap.String("status", status),
			zap.Bool("reverted", reverted != nil), zap.Error(err))
		events := []Event{{Kind: EventTransportFailed, Err: terr}}
		if reverted != nil {
			events = append(events, *reverted)
		}
		s.emit(events...)
		return terr
	}

	sl.confirmedStatus = status
	// Only the latest issued version may overwrite local state.
	if updated != nil && sl.live && sl.version == ver && contains(s.columns, updated.Status) {
		merged := *updated
		merged.ID = id
		merged.Reporter = firstNonEmpty(updated.Reporter, sl.task.Reporter)
		if merged.CreatedAt.IsZero() {
			merged.CreatedAt = sl.task.CreatedAt
		}
		sl.task = merged
		sl.confirmedStatus = merged.Status
	}
	s.mu.Unlock()
	return nil
}

// DeleteTask removes the task immediately. The gateway delete is fire and
// forget: a failure is recorded but the task is not restored.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	task := s.slots[idx].task
	s.removeLocked(idx)
	s.touchLocked(idx)
	s.mu.Unlock()

	s.emit(Event{Kind: EventDeleted, Task: task})
	s.submit(idx, OpDelete, func(ctx context.Context) error {
		return s.sendDelete(ctx, idx)
	})
	return nil
}

func (s *Store) sendDelete(ctx context.Context, idx int) error {
	s.mu.RLock()
	sl := s.slots[idx]
	if sl == nil {
		s.mu.RUnlock()
		return nil
	}
	id := sl.task.ID
	s.mu.RUnlock()

	// The create was rejected, nothing exists remotely.
	if model.IsTempID(id) {
		return nil
	}

	_, err := call(ctx, func() (struct{}, error) {
		return struct{}{}, s.gw.DeleteIssue(ctx, id)
	})
	if err == nil {
		return nil
	}

	s.mu.Lock()
	if s.slots[idx] != sl {
		s.mu.Unlock()
		return err
	}
	terr := s.failLocked(OpDelete, id, err)
	s.mu.Unlock()

	s.logger.Warn("delete failed", zap.String("task_id", id), zap.Error(err))
	s.emit(Event{Kind: EventTransportFailed, Err: terr})
	return terr
}

// AddColumn appends a column to the end of the workflow.
func (s *Store) AddColumn(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: column name is required", ErrValidation)
	}

	s.mu.Lock()
	if contains(s.columns, name) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	s.columns = append(s.columns, name)
	s.mu.Unlock()

	s.emit(Event{Kind: EventColumnAdded, Column: name})
	return nil
}

// Tasks returns a copy of the collection in iteration order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, s.slots[idx].task)
	}
	return out
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return s.slots[idx].task, true
}

func (s *Store) Columns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.columns...)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Failures lists the transport errors recorded since the last hydrate.
func (s *Store) Failures() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]error(nil), s.failures...)
}

// Settle waits until no gateway call is queued or running. Mutations issued
// from other goroutines while it waits are waited for as well.
func (s *Store) Settle() {
	s.pendMu.Lock()
	for s.pending > 0 {
		s.pendCnd.Wait()
	}
	s.pendMu.Unlock()
}

func (s *Store) begin() {
	s.pendMu.Lock()
	s.pending++
	s.pendMu.Unlock()
}

func (s *Store) done() {
	s.pendMu.Lock()
	s.pending--
	if s.pending == 0 {
		s.pendCnd.Broadcast()
	}
	s.pendMu.Unlock()
}

func (s *Store) insertLocked(sl *slot) int {
	idx := len(s.slots)
	s.slots = append(s.slots, sl)
	s.placeLocked(idx)
	return idx
}

// placeLocked appends an existing slot to the iteration order.
func (s *Store) placeLocked(idx int) {
	s.order = append(s.order, idx)
	s.byID[s.slots[idx].task.ID] = idx
}

func (s *Store) touchLocked(idx int) {
	s.tick++
	s.slots[idx].touched = s.tick
}

func (s *Store) removeLocked(idx int) {
	sl := s.slots[idx]
	sl.live = false
	delete(s.byID, sl.task.ID)
	for i, v := range s.order {
		if v == idx {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) failLocked(op, id string, err error) *TransportError {
	terr := &TransportError{Op: op, TaskID: id, Err: err}
	s.failures = append(s.failures, terr)
	return terr
}

func (s *Store) submit(idx int, op string, run func(ctx context.Context) error) {
	s.begin()
	job := worker.Job{
		Shard: idx,
		Name:  op,
		Run: func(ctx context.Context) error {
			defer s.done()
			return run(ctx)
		},
	}
	if err := s.jobs.Submit(job); err != nil {
		// The dispatcher is gone: settle the job here with a dead context so
		// the failure path runs.
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(err)
		job.Run(ctx)
	}
}

// call skips the gateway when ctx is already done.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if err := context.Cause(ctx); err != nil {
		var zero T
		return zero, err
	}
	return fn()
}

func contains(list []string, v string) bool {
	return indexOf(list, v) >= 0
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
