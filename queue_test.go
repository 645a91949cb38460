/*
Copyright 2024 Vigil Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package vigil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilhq/vigil/model"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q := NewQueue("test-queue", time.Millisecond)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = q.Shutdown(ctx)
	})
	return q
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestQueueFIFOOrder(t *testing.T) {
	q := newTestQueue(t)

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		mu.Lock()
		order = append(order, job.Payload.MessageID)
		finished := len(order) == 3
		mu.Unlock()
		if finished {
			close(done)
		}
		return nil
	})

	q.Enqueue("moderate", model.JobPayload{MessageID: "A"})
	q.Enqueue("moderate", model.JobPayload{MessageID: "B"})
	q.Enqueue("moderate", model.JobPayload{MessageID: "C"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs were not processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestQueueSingleInFlight(t *testing.T) {
	q := newTestQueue(t)

	var inFlight, maxInFlight int32
	var processed int32

	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			max := atomic.LoadInt32(&maxInFlight)
			if current <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&processed, 1)
		return nil
	})

	for i := 0; i < 5; i++ {
		q.Enqueue("moderate", model.JobPayload{MessageID: "m"})
	}

	waitFor(t, 3*time.Second, func() bool {
		return atomic.LoadInt32(&processed) == 5
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestQueueUnknownKindIsConsumed(t *testing.T) {
	q := newTestQueue(t)

	processed := make(chan string, 1)
	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		processed <- job.Payload.MessageID
		return nil
	})

	// A kind with no processor must not block the job behind it.
	orphan := q.Enqueue("unknown-kind", model.JobPayload{MessageID: "orphan"})
	q.Enqueue("moderate", model.JobPayload{MessageID: "next"})

	select {
	case id := <-processed:
		assert.Equal(t, "next", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job behind unknown kind was never processed")
	}
	assert.Equal(t, model.JobDone, orphan.State)
}

func TestQueueHandlerErrorDoesNotStallQueue(t *testing.T) {
	q := newTestQueue(t)

	processed := make(chan string, 2)
	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		processed <- job.Payload.MessageID
		if job.Payload.MessageID == "bad" {
			return errors.New("classification blew up")
		}
		return nil
	})

	bad := q.Enqueue("moderate", model.JobPayload{MessageID: "bad"})
	good := q.Enqueue("moderate", model.JobPayload{MessageID: "good"})

	waitFor(t, 2*time.Second, func() bool { return len(processed) == 2 })

	// Drain the dispatcher before inspecting terminal states.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))

	assert.Equal(t, model.JobFailed, bad.State)
	assert.Equal(t, model.JobDone, good.State)
}

func TestQueueHandlerPanicIsContained(t *testing.T) {
	q := newTestQueue(t)

	processed := make(chan struct{}, 1)
	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		if job.Payload.MessageID == "boom" {
			panic("handler exploded")
		}
		processed <- struct{}{}
		return nil
	})

	boom := q.Enqueue("moderate", model.JobPayload{MessageID: "boom"})
	q.Enqueue("moderate", model.JobPayload{MessageID: "after"})

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("job after panic was never processed")
	}
	assert.Equal(t, model.JobFailed, boom.State)
}

func TestQueueEnqueueReturnsImmediately(t *testing.T) {
	q := newTestQueue(t)

	q.RegisterProcessor("moderate", func(ctx context.Context, job *model.Job) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	start := time.Now()
	job := q.Enqueue("moderate", model.JobPayload{MessageID: "slow"})
	require.NotNil(t, job)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestQueueShutdown(t *testing.T) {
	q := NewQueue("shutdown-queue", time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, q.Shutdown(ctx))
}
