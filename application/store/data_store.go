package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"scholarmind/application/ports"
	"scholarmind/domain/core/entities"
	"scholarmind/domain/core/valueobjects"
	pkgerrors "scholarmind/pkg/errors"
	"scholarmind/pkg/observability"
)

// persistQueueSize bounds the persist backlog. When the queue is full the
// oldest snapshot is dropped; every snapshot carries the full state, so
// the last writer still leaves storage consistent with memory.
const persistQueueSize = 64

// GoalInput carries the caller-validated fields of a new goal
type GoalInput struct {
	Title       string
	Subject     string
	Description string
	Date        valueobjects.Day
}

// CompletionRate is the completed-over-total count for a goal subset.
// Percentage display, including the zero-total case, is the caller's
// concern.
type CompletionRate struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// snapshot is one unit of persist work: the full state of all three
// collections for one identity at the time of a mutation.
type snapshot struct {
	identityID string
	goals      []entities.Goal
	subjects   []entities.Subject
	sessions   []entities.Session
	done       chan struct{} // non-nil only for flush markers
}

// DataStore holds the goals, subjects and sessions of the current
// identity. Mutations are synchronous in-memory updates; persistence is a
// detached asynchronous side effect. A single worker drains the persist
// queue, so writes reach the adapter in mutation order per identity and
// the final stored snapshot matches the final in-memory state.
type DataStore struct {
	kv      ports.KeyValueStore
	metrics observability.MetricsCollector
	logger  *zap.Logger

	mu       sync.RWMutex
	identity *ports.Identity
	goals    []entities.Goal
	subjects []entities.Subject
	sessions []entities.Session

	persistCh   chan snapshot
	workerDone  chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
}

// NewDataStore creates a data store and starts its persist worker
func NewDataStore(kv ports.KeyValueStore, metrics observability.MetricsCollector, logger *zap.Logger) *DataStore {
	s := &DataStore{
		kv:         kv,
		metrics:    metrics,
		logger:     logger,
		persistCh:  make(chan snapshot, persistQueueSize),
		workerDone: make(chan struct{}),
	}

	go s.persistWorker()

	return s
}

// ObserveIdentity subscribes the store to identity transitions: a present
// identity loads its collections from storage, an absent one resets memory
// without touching storage.
func (s *DataStore) ObserveIdentity(provider ports.IdentityProvider) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsub := provider.OnIdentityChange(func(identity *ports.Identity) {
		if identity == nil {
			s.reset()
			return
		}
		if err := s.Load(context.Background(), identity); err != nil {
			s.logger.Error("Failed to load collections for identity",
				zap.String("userID", identity.ID),
				zap.Error(err),
			)
		}
	})

	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// Load reads the three serialized collections for an identity and replaces
// the in-memory state. Missing or empty entries become empty collections.
// A read or parse failure leaves that collection empty; memory remains
// authoritative from then on.
func (s *DataStore) Load(ctx context.Context, identity *ports.Identity) error {
	goals := []entities.Goal{}
	subjects := []entities.Subject{}
	sessions := []entities.Session{}

	var firstErr error
	if err := s.readCollection(ctx, GoalsKey(identity.ID), &goals); err != nil {
		firstErr = err
	}
	if err := s.readCollection(ctx, SubjectsKey(identity.ID), &subjects); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.readCollection(ctx, SessionsKey(identity.ID), &sessions); err != nil && firstErr == nil {
		firstErr = err
	}

	s.mu.Lock()
	s.identity = identity
	s.goals = goals
	s.subjects = subjects
	s.sessions = sessions
	s.mu.Unlock()

	return firstErr
}

// reset clears the in-memory collections without touching storage
func (s *DataStore) reset() {
	s.mu.Lock()
	s.identity = nil
	s.goals = nil
	s.subjects = nil
	s.sessions = nil
	s.mu.Unlock()
}

// Close cancels the identity subscription and stops the persist worker
// after draining pending snapshots.
func (s *DataStore) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.unsubscribe != nil {
			s.unsubscribe()
			s.unsubscribe = nil
		}
		s.mu.Unlock()

		close(s.persistCh)
		<-s.workerDone
	})
}

// Flush blocks until every snapshot enqueued before the call has been
// written. Intended for tests and shutdown.
func (s *DataStore) Flush() {
	marker := snapshot{done: make(chan struct{})}
	s.persistCh <- marker
	<-marker.done
}

// AddGoal appends a new goal with a fresh id, a day-normalized date and
// Completed false. Title and subject presence is the caller's concern.
func (s *DataStore) AddGoal(input GoalInput) entities.Goal {
	s.mu.Lock()
	goal := entities.NewGoal(input.Title, input.Subject, input.Description, input.Date)
	s.goals = append(s.goals, goal)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordMutation("goal", "add")
	s.enqueue(snap)
	return goal
}

// UpdateGoal merges the patch into the goal matching id; no-op if absent
func (s *DataStore) UpdateGoal(id string, patch entities.GoalPatch) {
	s.mu.Lock()
	changed := false
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals[i].Apply(patch)
			changed = true
			break
		}
	}
	var snap snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.metrics.RecordMutation("goal", "update")
		s.enqueue(snap)
	}
}

// DeleteGoal removes the goal matching id; no-op if absent
func (s *DataStore) DeleteGoal(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			changed = true
			break
		}
	}
	var snap snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.metrics.RecordMutation("goal", "delete")
		s.enqueue(snap)
	}
}

// ToggleGoalCompletion flips the completed flag on the goal matching id;
// no-op if absent.
func (s *DataStore) ToggleGoalCompletion(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals[i].ToggleCompleted()
			changed = true
			break
		}
	}
	var snap snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.metrics.RecordMutation("goal", "toggle")
		s.enqueue(snap)
	}
}

// AddSubject appends a new subject unless the name collides
// case-insensitively with an existing one.
func (s *DataStore) AddSubject(name string) (entities.Subject, error) {
	s.mu.Lock()
	for _, existing := range s.subjects {
		if existing.NameEquals(name) {
			s.mu.Unlock()
			return entities.Subject{}, pkgerrors.NewDuplicateSubjectError(name)
		}
	}
	subject := entities.NewSubject(name)
	s.subjects = append(s.subjects, subject)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordMutation("subject", "add")
	s.enqueue(snap)
	return subject, nil
}

// DeleteSubject removes the subject matching id. Deletion is rejected
// while any goal references the subject's name; an unknown id is a silent
// no-op.
func (s *DataStore) DeleteSubject(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return nil
	}

	name := s.subjects[idx].Name
	for _, goal := range s.goals {
		if goal.Subject == name {
			s.mu.Unlock()
			return pkgerrors.NewSubjectInUseError(name)
		}
	}

	s.subjects = append(s.subjects[:idx], s.subjects[idx+1:]...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordMutation("subject", "delete")
	s.enqueue(snap)
	return nil
}

// AddSession appends a session record; no validation beyond the fresh id
func (s *DataStore) AddSession(input entities.SessionInput) entities.Session {
	s.mu.Lock()
	session := entities.NewSession(input)
	s.sessions = append(s.sessions, session)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordMutation("session", "add")
	s.enqueue(snap)
	return session
}

// Goals returns the goals collection in insertion order
func (s *DataStore) Goals() []entities.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyGoals(s.goals)
}

// Subjects returns the subjects collection in insertion order
func (s *DataStore) Subjects() []entities.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Subject, len(s.subjects))
	copy(out, s.subjects)
	return out
}

// Sessions returns the sessions collection in insertion order
func (s *DataStore) Sessions() []entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// GetGoalsByDate returns the goals scheduled on the given day, in
// collection order.
func (s *DataStore) GetGoalsByDate(date valueobjects.Day) []entities.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.Goal{}
	for _, goal := range s.goals {
		if goal.Date.Equals(date) {
			out = append(out, goal)
		}
	}
	return out
}

// GetGoalsBySubject returns the goals referencing the given subject name,
// in collection order.
func (s *DataStore) GetGoalsBySubject(subject string) []entities.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.Goal{}
	for _, goal := range s.goals {
		if goal.Subject == subject {
			out = append(out, goal)
		}
	}
	return out
}

// GetCompletionRate counts completed and total goals, filtered by subject
// when one is given.
func (s *DataStore) GetCompletionRate(subject string) CompletionRate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rate := CompletionRate{}
	for _, goal := range s.goals {
		if subject != "" && goal.Subject != subject {
			continue
		}
		rate.Total++
		if goal.Completed {
			rate.Completed++
		}
	}
	return rate
}

// snapshotLocked copies the full current state for the persist worker.
// Caller holds the mutex.
func (s *DataStore) snapshotLocked() snapshot {
	snap := snapshot{
		goals:    copyGoals(s.goals),
		subjects: make([]entities.Subject, len(s.subjects)),
		sessions: make([]entities.Session, len(s.sessions)),
	}
	copy(snap.subjects, s.subjects)
	copy(snap.sessions, s.sessions)
	if s.identity != nil {
		snap.identityID = s.identity.ID
	}
	return snap
}

// enqueue hands a snapshot to the persist worker. Snapshots taken with no
// identity have nowhere to go and are dropped; when the queue is full the
// oldest data snapshot is discarded, since the newest carries the complete
// state. Flush markers are never shed, only pushed to the back: completing
// one early would let Flush return before writes queued ahead of it.
func (s *DataStore) enqueue(snap snapshot) {
	if snap.identityID == "" {
		return
	}

	for {
		select {
		case s.persistCh <- snap:
			return
		default:
		}
		select {
		case old := <-s.persistCh:
			if old.done != nil {
				s.persistCh <- old
			}
		default:
		}
	}
}

// persistWorker serializes snapshots to the key-value adapter in arrival
// order. Failures are logged and counted, never propagated: the in-memory
// state already reflects the user's intent, and the next mutation writes
// the full state again.
func (s *DataStore) persistWorker() {
	defer close(s.workerDone)

	for snap := range s.persistCh {
		if snap.done != nil {
			close(snap.done)
			continue
		}
		s.writeSnapshot(context.Background(), snap)
	}
}

func (s *DataStore) writeSnapshot(ctx context.Context, snap snapshot) {
	start := time.Now()
	failed := false

	failed = !s.writeCollection(ctx, GoalsKey(snap.identityID), snap.goals) || failed
	failed = !s.writeCollection(ctx, SubjectsKey(snap.identityID), snap.subjects) || failed
	failed = !s.writeCollection(ctx, SessionsKey(snap.identityID), snap.sessions) || failed

	if !failed {
		s.metrics.RecordPersistSuccess(time.Since(start))
	}
}

// writeCollection marshals and stores one collection; reports success
func (s *DataStore) writeCollection(ctx context.Context, key string, collection interface{}) bool {
	raw, err := json.Marshal(collection)
	if err != nil {
		s.logger.Error("Failed to serialize collection",
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.RecordPersistFailure(key)
		return false
	}

	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.logger.Error("Failed to persist collection",
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.RecordPersistFailure(key)
		return false
	}

	return true
}

// readCollection loads and parses one collection; missing keys leave the
// target empty.
func (s *DataStore) readCollection(ctx context.Context, key string, target interface{}) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.metrics.RecordStorageReadFailure(key)
		return pkgerrors.NewStorageError("read "+key, err)
	}
	if !ok || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		s.metrics.RecordStorageReadFailure(key)
		return pkgerrors.NewStorageError("parse "+key, err)
	}
	return nil
}

func copyGoals(goals []entities.Goal) []entities.Goal {
	out := make([]entities.Goal, len(goals))
	copy(out, goals)
	return out
}
