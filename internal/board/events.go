package board

import "github.com/BuzzLyutic/taskboard/internal/model"

type EventKind int

const (
	EventCreated EventKind = iota + 1
	EventConfirmed
	EventRolledBack
	EventStatusChanged
	EventStatusReverted
	EventDeleted
	EventColumnAdded
	EventHydrated
	EventLoadFailed
	EventTransportFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventConfirmed:
		return "confirmed"
	case EventRolledBack:
		return "rolled_back"
	case EventStatusChanged:
		return "status_changed"
	case EventStatusReverted:
		return "status_reverted"
	case EventDeleted:
		return "deleted"
	case EventColumnAdded:
		return "column_added"
	case EventHydrated:
		return "hydrated"
	case EventLoadFailed:
		return "load_failed"
	case EventTransportFailed:
		return "transport_failed"
	}
	return "unknown"
}

// Event describes one observable change of the store. Fields that do not
// apply to a kind are left empty.
type Event struct {
	Kind   EventKind
	Task   model.Task
	PrevID string // temporary id replaced by EventConfirmed
	Prev   string // previous status for status events
	Column string
	Err    error
}

// Subscribe registers fn for every later event. Confirmations arrive on
// worker goroutines, so fn must be safe for concurrent use.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// emit must be called without s.mu held so subscribers can read the store.
func (s *Store) emit(events ...Event) {
	s.subMu.RLock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
