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

package database

import (
	"context"

	"github.com/vigilhq/vigil/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	moderation // Interface for moderation audit-trail operations
}

// moderation defines methods for the append-only moderation audit trail.
type moderation interface {
	RecordModeration(ctx context.Context, record *model.ModerationRecord) (*model.ModerationRecord, error)   // Appends a new moderation record
	GetModerationRecords(ctx context.Context, filter model.ModerationFilter) ([]model.ModerationRecord, error) // Lists moderation records, newest first
	GetModerationRecordByMessageID(ctx context.Context, messageID string) (*model.ModerationRecord, error)   // Retrieves the record for one message
}
