package accountstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOp struct {
	backend, operation, result string
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeRecorder) RecordStoreOperation(_ context.Context, backend, operation, result string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{backend, operation, result})
}

// failingStore returns err from every operation.
type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error         { return f.err }
func (f failingStore) Ping(context.Context) error                        { return f.err }
func (f failingStore) Close() error                                      { return nil }

func TestInstrument_RecordsResults(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	s := Instrument(NewMemory(), BackendMemory, rec, nil)

	_, _, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "user-1", "acct-a"))
	_, _, err = s.Get(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, []recordedOp{
		{BackendMemory, "get", ResultMiss},
		{BackendMemory, "set", ResultOK},
		{BackendMemory, "get", ResultHit},
	}, rec.ops)
}

func TestInstrument_LogsUnavailable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &fakeRecorder{}

	backendErr := unavailable(BackendRedis, "get", errors.New("connection refused"))
	s := Instrument(failingStore{err: backendErr}, BackendRedis, rec, logger)

	_, _, err := s.Get(context.Background(), "7c5dae5552338874e5053f2534d2767a")
	require.ErrorIs(t, err, ErrUnavailable)

	out := buf.String()
	assert.Contains(t, out, "Active account store operation failed")
	assert.Contains(t, out, "user_hash=user:")
	assert.NotContains(t, out, "7c5dae5552338874e5053f2534d2767a")
	assert.Equal(t, []recordedOp{{BackendRedis, "get", ResultError}}, rec.ops)
}

func TestInstrument_ValidationErrorsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := Instrument(NewMemory(), BackendMemory, nil, logger)

	err := s.Set(context.Background(), "user-1", "")
	require.ErrorIs(t, err, ErrEmptyAccountID)
	assert.NotContains(t, buf.String(), "operation failed")
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := unavailable(BackendPostgres, "set", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "postgres store set: dial tcp: refused", err.Error())

	var ue *UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "set", ue.Op)
}
