package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/vigilhq/vigil/internal/apierror"
	"github.com/vigilhq/vigil/model"
)

// RecordModeration appends one moderation record. Records are append-only:
// there is no update path by design.
func (d Datasource) RecordModeration(ctx context.Context, record *model.ModerationRecord) (*model.ModerationRecord, error) {
	ctx, span := otel.Tracer("moderation.audit").Start(ctx, "Saving moderation record to db")
	defer span.End()

	issuesJSON, err := json.Marshal(record.Issues)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal issues", err)
	}

	record.RecordID = model.GenerateUUIDWithSuffix("mod")
	record.CreatedAt = time.Now()

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO moderation_records (record_id, message_id, message_text, author_id, channel_id, classification, risk_score, issues, ai_classification, ai_reason, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, record.RecordID, record.MessageID, record.MessageText, record.AuthorID, record.ChannelID, record.Classification, record.RiskScore, issuesJSON, record.AIClassification, record.AIReason, record.Action, record.CreatedAt)

	if err != nil {
		span.RecordError(err)
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Moderation record with this ID already exists", err)
			default:
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record moderation", err)
	}

	return record, nil
}

// GetModerationRecords lists moderation records, newest first, narrowed by
// the optional filter fields.
func (d Datasource) GetModerationRecords(ctx context.Context, filter model.ModerationFilter) ([]model.ModerationRecord, error) {
	ctx, span := otel.Tracer("moderation.audit").Start(ctx, "Fetching moderation records from db")
	defer span.End()

	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT record_id, message_id, message_text, author_id, channel_id, classification, risk_score, issues, ai_classification, ai_reason, action, created_at
		FROM moderation_records
		WHERE ($1 = '' OR author_id = $1)
		  AND ($2 = '' OR classification = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, filter.AuthorID, string(filter.Classification), filter.Limit, filter.Offset)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve moderation records", err)
	}
	defer rows.Close()

	records := []model.ModerationRecord{}

	for rows.Next() {
		record, err := scanModerationRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over moderation records", err)
	}

	return records, nil
}

// GetModerationRecordByMessageID retrieves the most recent record for one message.
func (d Datasource) GetModerationRecordByMessageID(ctx context.Context, messageID string) (*model.ModerationRecord, error) {
	ctx, span := otel.Tracer("moderation.audit").Start(ctx, "Fetching moderation record from db by message ID")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT record_id, message_id, message_text, author_id, channel_id, classification, risk_score, issues, ai_classification, ai_reason, action, created_at
		FROM moderation_records
		WHERE message_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, messageID)

	record, err := scanModerationRecord(row)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return record, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModerationRecord(row rowScanner) (*model.ModerationRecord, error) {
	record := model.ModerationRecord{}
	var issuesJSON []byte
	var aiClassification, aiReason sql.NullString

	err := row.Scan(&record.RecordID, &record.MessageID, &record.MessageText, &record.AuthorID, &record.ChannelID, &record.Classification, &record.RiskScore, &issuesJSON, &aiClassification, &aiReason, &record.Action, &record.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Moderation record not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan moderation record", err)
	}

	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &record.Issues); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal issues", err)
		}
	}
	record.AIClassification = aiClassification.String
	record.AIReason = aiReason.String

	return &record, nil
}
