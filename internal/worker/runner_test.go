// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDo_ReturnsJobResult(t *testing.T) {
	r := NewRunner(nil)

	id, err := r.Do(context.Background(), "install", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	want := errors.New("boom")
	id2, err := r.Do(context.Background(), "install", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
	assert.NotEqual(t, id, id2)
}

func TestDo_SerializesJobs(t *testing.T) {
	r := NewRunner(nil)

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	job := func(context.Context) error {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Do(context.Background(), "job", job)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxRunning, "jobs must never overlap")
}

func TestDo_CancelledWhileQueued(t *testing.T) {
	r := NewRunner(nil)

	blocker := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Do(context.Background(), "long", func(context.Context) error {
			<-blocker
			return nil
		})
	}()

	// Wait until the first job holds the runner.
	require.Eventually(t, func() bool { return r.Current() == "long" }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	_, err := r.Do(ctx, "queued", func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran, "cancelled job must not run")

	close(blocker)
	<-done

	// The runner is usable after the cancelled acquisition.
	_, err = r.Do(context.Background(), "after", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestCurrent(t *testing.T) {
	r := NewRunner(nil)
	assert.Empty(t, r.Current())

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Do(context.Background(), "install", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.Equal(t, "install", r.Current())
	close(release)
	<-done
	assert.Empty(t, r.Current())
}
