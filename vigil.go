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
	"time"

	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/database"
	"github.com/vigilhq/vigil/internal/cache"
	"github.com/vigilhq/vigil/model"
)

const (
	// ModerationQueueName is the single queue instance draining async
	// moderation work.
	ModerationQueueName = "message-moderation"

	// JobKindModerate is the job kind produced by webhook ingestion.
	JobKindModerate = "moderate"
)

// Vigil is the main struct for the moderation service. It owns the queue, the
// hybrid moderator and the audit datasource.
type Vigil struct {
	queue      *Queue
	moderator  *Moderator
	datasource database.IDataSource
	cache      cache.Cache // nil when Redis is not configured
}

// NewVigil initializes a new Vigil instance with the provided datasource.
// The rule engine, AI classifier, moderator and queue are built from the
// loaded configuration. The webhook dedupe cache is only created when a Redis
// DNS is configured.
//
// Parameters:
// - db database.IDataSource: The datasource for audit record persistence.
//
// Returns:
// - *Vigil: A pointer to the newly created Vigil instance.
// - error: An error if any of the initialization steps fail.
func NewVigil(db database.IDataSource) (*Vigil, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	rules, err := NewRuleEngine(RuleSetFromConfig(configuration.Moderation.Rules), configuration.Moderation.MinMessageLength)
	if err != nil {
		return nil, err
	}

	ai := NewAIClassifier(configuration)
	moderator := NewModerator(rules, ai, configuration)
	queue := NewQueue(ModerationQueueName, time.Duration(configuration.Moderation.QueueYieldMs)*time.Millisecond)

	var dedupeCache cache.Cache
	if configuration.Redis.Dns != "" {
		dedupeCache, err = cache.NewCache(configuration.Redis.Dns)
		if err != nil {
			return nil, err
		}
	}

	return &Vigil{
		queue:      queue,
		moderator:  moderator,
		datasource: db,
		cache:      dedupeCache,
	}, nil
}

// Moderator exposes the hybrid classification service.
func (v *Vigil) Moderator() *Moderator {
	return v.moderator
}

// Queue exposes the moderation job queue.
func (v *Vigil) Queue() *Queue {
	return v.queue
}

// ValidateMessage is the inline pre-send check. It consults the lexical rule
// engine only, never the AI classifier or the queue, so callers get a
// synchronous answer within the inline latency budget.
func (v *Vigil) ValidateMessage(text string) model.Verdict {
	return v.moderator.VerdictFromRules(text)
}

// MinMessageLength returns the short-message threshold shared by the inline
// endpoint and the rule engine.
func (v *Vigil) MinMessageLength() int {
	return v.moderator.rules.MinLength()
}

// Shutdown drains the queue dispatcher.
func (v *Vigil) Shutdown(ctx context.Context) error {
	return v.queue.Shutdown(ctx)
}
