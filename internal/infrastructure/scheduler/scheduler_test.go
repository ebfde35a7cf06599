package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/surblend-api/internal/infrastructure/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	batch atomic.Int32
	err   error
}

func (f *fakeExpirer) ExpireDue(_ context.Context, batch int) (int, error) {
	f.calls.Add(1)
	f.batch.Store(int32(batch))
	return 2, f.err
}

func TestExpireQuotes_UsesBatch(t *testing.T) {
	f := &fakeExpirer{}
	s := scheduler.New(scheduler.Config{Batch: 50}, f, zerolog.Nop())

	s.ExpireQuotes()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, int32(50), f.batch.Load())
}

func TestExpireQuotes_ErrorIsLogged(t *testing.T) {
	f := &fakeExpirer{err: errors.New("db caída")}
	s := scheduler.New(scheduler.Config{}, f, zerolog.Nop())

	assert.NotPanics(t, s.ExpireQuotes)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := scheduler.New(scheduler.Config{Schedule: "no es cron"}, &fakeExpirer{}, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	f := &fakeExpirer{}
	s := scheduler.New(scheduler.Config{Schedule: "@every 1s"}, f, zerolog.Nop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := scheduler.New(scheduler.Config{}, &fakeExpirer{}, zerolog.Nop())
	assert.NoError(t, s.AddJob("limpieza", "@every 5m", func() {}))
	assert.Error(t, s.AddJob("limpieza", "cada rato", func() {}))
}
