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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vigilhq/vigil/internal/notification"
	"github.com/vigilhq/vigil/model"
)

// EventMessageNew is the only chat transport event that produces moderation
// work; everything else is acknowledged and dropped.
const EventMessageNew = "message.new"

// dedupeTTL bounds how long an already-enqueued message ID suppresses
// redelivered webhook events.
const dedupeTTL = time.Hour

// EnqueueModeration turns a delivered chat message into a moderation job.
// It returns the created job and whether one was actually queued: redelivered
// messages are suppressed through the dedupe cache when Redis is configured.
// The call never blocks on classification; the webhook handler acknowledges
// the producer before any processing happens.
func (v *Vigil) EnqueueModeration(ctx context.Context, message model.Message) (*model.Job, bool) {
	if v.cache != nil {
		key := dedupeKey(message.ID)
		if v.cache.Has(ctx, key) {
			logrus.Infof("message %s already queued for moderation, skipping redelivery", message.ID)
			return nil, false
		}
		if err := v.cache.Set(ctx, key, true, dedupeTTL); err != nil {
			// A cache failure must not drop moderation work; worst case the
			// message is classified twice.
			logrus.Errorf("dedupe cache error for message %s: %v", message.ID, err)
		}
	}

	job := v.queue.Enqueue(JobKindModerate, model.JobPayload{
		MessageID:  message.ID,
		Text:       message.Text,
		AuthorID:   message.AuthorID,
		ChannelID:  message.ChannelID,
		EnqueuedAt: time.Now(),
	})
	return job, true
}

func dedupeKey(messageID string) string {
	return fmt.Sprintf("moderation:msg:%s", messageID)
}

// RegisterWorkers binds the moderation processor to the queue. It must be
// called once before webhook traffic is served.
func (v *Vigil) RegisterWorkers() {
	v.queue.RegisterProcessor(JobKindModerate, v.processModeration)
}

// processModeration classifies one delivered message and records the outcome.
// It is the async path's terminal handler: classification failures surface as
// a Failed job, audit failures are logged and swallowed.
func (v *Vigil) processModeration(ctx context.Context, job *model.Job) error {
	ctx, span := tracer.Start(ctx, "Processing moderation job")
	defer span.End()

	logrus.Infof("moderating message %s from %s", job.Payload.MessageID, job.Payload.AuthorID)

	verdict := v.moderator.Moderate(ctx, job.Payload.Text)

	record, err := v.RecordModeration(ctx, verdict, job.Payload)
	if err != nil {
		// Fail open: the verdict stands even when the audit write fails.
		span.RecordError(err)
		notification.NotifyError(err)
		return nil
	}

	if verdict.IsSuspicious {
		logrus.WithFields(logrus.Fields{
			"message_id":     job.Payload.MessageID,
			"classification": verdict.Classification,
			"action":         record.Action,
		}).Warn("suspicious content detected")
	}
	return nil
}
