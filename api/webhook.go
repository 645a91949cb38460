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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vigilhq/vigil"

	model2 "github.com/vigilhq/vigil/api/model"

	"github.com/gin-gonic/gin"
)

// ChatWebhook receives chat-platform events. The endpoint acknowledges every
// well-formed event immediately; moderation itself happens later on the
// in-process queue, so the chat platform is never blocked on classification.
func (a Api) ChatWebhook(c *gin.Context) {
	var event model2.ChatEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"received": false, "error": "invalid event payload"})
		return
	}

	if err := event.ValidateEvent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"received": false, "error": err.Error()})
		return
	}

	if event.Type != vigil.EventMessageNew {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	msg := event.ToMessage()
	if strings.TrimSpace(msg.Text) == "" || msg.Type == "system" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	job, queued := a.vigil.EnqueueModeration(c.Request.Context(), msg)
	if !queued {
		c.JSON(http.StatusOK, gin.H{"received": true, "queued": false})
		return
	}

	logrus.WithFields(logrus.Fields{
		"job_id":     job.JobID,
		"message_id": msg.ID,
	}).Info("message queued for moderation")

	c.JSON(http.StatusOK, gin.H{"received": true, "queued": true, "job_id": job.JobID})
}
