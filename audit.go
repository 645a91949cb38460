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

	"github.com/sirupsen/logrus"

	"github.com/vigilhq/vigil/model"
)

// defaultAction picks the corrective follow-up recorded with a fresh audit
// record. Only the record is written here; executing a delete or ban against
// the chat transport is a separate, later step driven by the record.
func defaultAction(classification model.Classification) model.Action {
	switch classification {
	case model.ClassificationFraud, model.ClassificationHarassment:
		return model.ActionFlagged
	default:
		return model.ActionNone
	}
}

// RecordModeration appends one moderation record for a classified message.
// Storage errors are returned for the caller to log and swallow; they must
// never fail the moderation pipeline.
func (v *Vigil) RecordModeration(ctx context.Context, verdict model.Verdict, payload model.JobPayload) (*model.ModerationRecord, error) {
	record := &model.ModerationRecord{
		MessageID:        payload.MessageID,
		MessageText:      payload.Text,
		AuthorID:         payload.AuthorID,
		ChannelID:        payload.ChannelID,
		Classification:   verdict.Classification,
		RiskScore:        verdict.RiskScore,
		Issues:           verdict.Issues,
		AIClassification: verdict.AIClassification,
		AIReason:         verdict.AIReason,
		Action:           defaultAction(verdict.Classification),
	}

	saved, err := v.datasource.RecordModeration(ctx, record)
	if err != nil {
		logrus.Errorf("failed to record moderation for message %s: %v", payload.MessageID, err)
		return nil, err
	}
	return saved, nil
}

// GetModerationLogs lists moderation records for review, newest first.
func (v *Vigil) GetModerationLogs(ctx context.Context, filter model.ModerationFilter) ([]model.ModerationRecord, error) {
	return v.datasource.GetModerationRecords(ctx, filter)
}

// GetModerationLogByMessageID retrieves the audit record for a single message.
func (v *Vigil) GetModerationLogByMessageID(ctx context.Context, messageID string) (*model.ModerationRecord, error) {
	return v.datasource.GetModerationRecordByMessageID(ctx, messageID)
}
