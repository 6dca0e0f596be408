package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefresher counts refreshes and reports a configurable cache state
type fakeRefresher struct {
	refreshes atomic.Int32
	empty     bool
	emptyErr  error
	delay     time.Duration
}

func (f *fakeRefresher) Refresh(ctx context.Context) (Outcome, error) {
	f.refreshes.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return Outcome{}, errors.New("refresh errors are only logged")
}

func (f *fakeRefresher) Empty(context.Context) (bool, error) {
	return f.empty, f.emptyErr
}

func TestNewScheduler(t *testing.T) {
	tbl := []struct {
		spec    string
		wantErr bool
	}{
		{"", false},
		{"@every 30m", false},
		{"@hourly", false},
		{"*/5 * * * *", false},
		{"every 5 minutes", true},
		{"* * *", true},
	}
	for _, tt := range tbl {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := NewScheduler(&fakeRefresher{}, Config{RefreshCron: tt.spec})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "parse refresh schedule")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.spec != "", s.schedule != nil)
		})
	}
}

func TestScheduler_InitialRefresh(t *testing.T) {
	t.Run("empty cache is filled on start", func(t *testing.T) {
		r := &fakeRefresher{empty: true}
		s, err := NewScheduler(r, Config{})
		require.NoError(t, err)
		s.Start(context.Background())
		require.Eventually(t, func() bool { return r.refreshes.Load() == 1 }, time.Second, 5*time.Millisecond)
		s.Stop()
		assert.Equal(t, int32(1), r.refreshes.Load())
	})

	t.Run("cached items skip refresh", func(t *testing.T) {
		r := &fakeRefresher{empty: false}
		s, err := NewScheduler(r, Config{})
		require.NoError(t, err)
		s.Start(context.Background())
		s.Stop()
		assert.Zero(t, r.refreshes.Load())
	})

	t.Run("disabled by config", func(t *testing.T) {
		r := &fakeRefresher{empty: true}
		s, err := NewScheduler(r, Config{SkipInitialRefresh: true})
		require.NoError(t, err)
		s.Start(context.Background())
		s.Stop()
		assert.Zero(t, r.refreshes.Load())
	})

	t.Run("cache check error skips refresh", func(t *testing.T) {
		r := &fakeRefresher{empty: true, emptyErr: errors.New("db closed")}
		s, err := NewScheduler(r, Config{})
		require.NoError(t, err)
		s.Start(context.Background())
		s.Stop()
		assert.Zero(t, r.refreshes.Load())
	})
}

func TestScheduler_Periodic(t *testing.T) {
	r := &fakeRefresher{}
	s, err := NewScheduler(r, Config{RefreshCron: "@every 1s", SkipInitialRefresh: true})
	require.NoError(t, err)
	s.Start(context.Background())

	require.Eventually(t, func() bool { return r.refreshes.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	s.Stop()

	after := r.refreshes.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, r.refreshes.Load(), "no refresh after stop")
}

func TestScheduler_StopWaitsForRunningRefresh(t *testing.T) {
	r := &fakeRefresher{empty: true, delay: 200 * time.Millisecond}
	s, err := NewScheduler(r, Config{})
	require.NoError(t, err)

	s.Start(context.Background())
	require.Eventually(t, func() bool { return r.refreshes.Load() == 1 }, time.Second, 5*time.Millisecond)
	st := time.Now()
	s.Stop()
	assert.Greater(t, time.Since(st), 100*time.Millisecond)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s, err := NewScheduler(&fakeRefresher{}, Config{})
	require.NoError(t, err)
	s.Stop()
}
