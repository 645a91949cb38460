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

package model

import "time"

// JobState tracks a job through the queue. Terminal states are never re-entered.
type JobState string

const (
	JobQueued     JobState = "QUEUED"
	JobProcessing JobState = "PROCESSING"
	JobDone       JobState = "DONE"
	JobFailed     JobState = "FAILED"
)

// JobPayload carries the message context a moderation job operates on.
type JobPayload struct {
	MessageID  string    `json:"message_id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"author_id"`
	ChannelID  string    `json:"channel_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Job is a unit of asynchronous work owned exclusively by the queue until a
// registered processor consumes it.
type Job struct {
	JobID   string     `json:"job_id"`
	Kind    string     `json:"kind"`
	Payload JobPayload `json:"payload"`
	State   JobState   `json:"state"`
}
