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

// Action is the corrective follow-up recorded against a moderation record.
// The actual delete/ban is carried out by the chat transport, not this service.
type Action string

const (
	ActionNone       Action = "none"
	ActionFlagged    Action = "flagged"
	ActionDeleted    Action = "deleted"
	ActionUserBanned Action = "user_banned"
)

// ModerationRecord is the canonical trust-and-safety audit trail entry.
// Records are append-only and never mutated after insertion.
type ModerationRecord struct {
	ID               int64          `json:"-"`
	RecordID         string         `json:"record_id"`
	MessageID        string         `json:"message_id"`
	MessageText      string         `json:"message_text"`
	AuthorID         string         `json:"author_id"`
	ChannelID        string         `json:"channel_id"`
	Classification   Classification `json:"classification"`
	RiskScore        int            `json:"risk_score"`
	Issues           []Issue        `json:"issues"`
	AIClassification string         `json:"ai_classification,omitempty"`
	AIReason         string         `json:"ai_reason,omitempty"`
	Action           Action         `json:"action"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ModerationFilter narrows moderation record listings.
type ModerationFilter struct {
	AuthorID       string         `json:"author_id"`
	Classification Classification `json:"classification"`
	Limit          int            `json:"limit"`
	Offset         int            `json:"offset"`
}
