package accountstore

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const memoryShards = 32

// record is the per-user slot. Its mutex serializes every operation for the
// user; the shard lock is only held to find or create the record.
// sync.Mutex does not hand off in arrival order, so concurrent writers for
// one user are applied one at a time but not strictly first-come. The last
// write applied wins.
type record struct {
	mu        sync.Mutex
	accountID string
}

type shard struct {
	mu      sync.RWMutex
	records map[string]*record
}

// Memory is an in-process Store. It loses all selections on restart and is
// intended for single-replica deployments and tests.
type Memory struct {
	shards [memoryShards]shard
	closed atomic.Bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{}
	for i := range m.shards {
		m.shards[i].records = make(map[string]*record)
	}
	return m
}

func (m *Memory) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &m.shards[h.Sum32()%memoryShards]
}

func (m *Memory) lookup(userID string, create bool) *record {
	s := m.shardFor(userID)

	s.mu.RLock()
	r, ok := s.records[userID]
	s.mu.RUnlock()
	if ok || !create {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.records[userID]; !ok {
		r = &record{}
		s.records[userID] = r
	}
	return r
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, userID string) (string, bool, error) {
	if err := validateUserID(userID); err != nil {
		return "", false, err
	}
	if m.closed.Load() {
		return "", false, unavailable(BackendMemory, "get", ErrClosed)
	}

	r := m.lookup(userID, false)
	if r == nil {
		return "", false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accountID, r.accountID != "", nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, userID, accountID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if accountID == "" {
		return ErrEmptyAccountID
	}
	if m.closed.Load() {
		return unavailable(BackendMemory, "set", ErrClosed)
	}

	r := m.lookup(userID, true)
	r.mu.Lock()
	r.accountID = accountID
	r.mu.Unlock()
	return nil
}

// Ping implements Store.
func (m *Memory) Ping(context.Context) error {
	if m.closed.Load() {
		return unavailable(BackendMemory, "ping", ErrClosed)
	}
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

// Len returns the number of users with a selection.
func (m *Memory) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.records)
		s.mu.RUnlock()
	}
	return n
}
