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
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vigilhq/vigil/internal/apierror"
	"github.com/vigilhq/vigil/model"

	"github.com/gin-gonic/gin"
)

// GetModerationLogs lists persisted moderation records, most recent first.
// Supported query parameters: author_id, classification, limit, offset.
func (a Api) GetModerationLogs(c *gin.Context) {
	filter := model.ModerationFilter{
		AuthorID:       c.Query("author_id"),
		Classification: model.Classification(strings.ToUpper(c.Query("classification"))),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		filter.Offset = offset
	}

	records, err := a.vigil.GetModerationLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderation_logs": records})
}

// GetModerationLogByMessageID fetches the moderation record for one message.
func (a Api) GetModerationLogByMessageID(c *gin.Context) {
	messageID := c.Param("message_id")
	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_id is required"})
		return
	}

	record, err := a.vigil.GetModerationLogByMessageID(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}
