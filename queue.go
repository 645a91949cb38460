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
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vigilhq/vigil/model"
)

// ProcessorFunc handles one job of a registered kind.
type ProcessorFunc func(ctx context.Context, job *model.Job) error

// Queue is an in-process, FIFO, single-consumer job queue. Jobs are dequeued
// strictly in enqueue order and at most one job is in flight at any time.
// Delivery is at-most-once and best-effort: a failed job is logged and
// dropped, and the queue moves on. Durable, multi-instance delivery is the
// job of an external broker, not this queue.
type Queue struct {
	name  string
	yield time.Duration

	mu         sync.Mutex
	jobs       []*model.Job
	processors map[string]ProcessorFunc

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewQueue creates a queue and starts its dispatcher. The dispatcher yields
// for the given duration between jobs so other work gets a chance to run.
func NewQueue(name string, yield time.Duration) *Queue {
	if yield <= 0 {
		yield = 100 * time.Millisecond
	}
	q := &Queue{
		name:       name,
		yield:      yield,
		processors: make(map[string]ProcessorFunc),
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go q.dispatch()
	return q
}

// RegisterProcessor binds a handler to a job kind. Registering the same kind
// twice replaces the previous handler.
func (q *Queue) RegisterProcessor(kind string, handler ProcessorFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[kind] = handler
}

// Enqueue appends a job to the queue and returns it immediately. It is safe
// to call concurrently with an in-flight dequeue.
func (q *Queue) Enqueue(kind string, payload model.JobPayload) *model.Job {
	job := &model.Job{
		JobID:   model.GenerateUUIDWithSuffix("job"),
		Kind:    kind,
		Payload: payload,
		State:   model.JobQueued,
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	logrus.Infof("job %s added to %s queue", job.JobID, q.name)

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return job
}

// Pending returns the number of jobs waiting to be processed.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Shutdown stops the dispatcher after the in-flight job (if any) completes.
// Jobs still queued are dropped. Shutdown is safe to call more than once.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.quitOnce.Do(func() { close(q.quit) })
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch is the sequencer loop: it drains the queue one job at a time,
// yielding between jobs, and sleeps until woken when the queue is empty.
func (q *Queue) dispatch() {
	defer close(q.done)
	for {
		job := q.pop()
		if job == nil {
			select {
			case <-q.wake:
				continue
			case <-q.quit:
				return
			}
		}

		q.process(job)

		select {
		case <-q.quit:
			return
		case <-time.After(q.yield):
		}
	}
}

// pop removes and returns the oldest queued job, or nil when the queue is empty.
func (q *Queue) pop() *model.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job
}

// process runs a single job to a terminal state. Handler errors and panics
// are contained here so that no job can stall the queue.
func (q *Queue) process(job *model.Job) {
	q.mu.Lock()
	handler, ok := q.processors[job.Kind]
	q.mu.Unlock()

	job.State = model.JobProcessing

	if !ok {
		// No processor for this kind: consume the job so it cannot block
		// jobs of other kinds behind it.
		logrus.Warnf("job %s has no processor registered for kind %q, dropping", job.JobID, job.Kind)
		job.State = model.JobDone
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			job.State = model.JobFailed
			logrus.Errorf("job %s panicked: %v", job.JobID, rec)
		}
	}()

	logrus.Infof("processing job %s", job.JobID)
	if err := handler(context.Background(), job); err != nil {
		job.State = model.JobFailed
		logrus.Errorf("job %s failed: %v", job.JobID, fmt.Errorf("%s handler: %w", job.Kind, err))
		return
	}
	job.State = model.JobDone
	logrus.Infof("job %s completed", job.JobID)
}
