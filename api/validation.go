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

	"github.com/sirupsen/logrus"

	model2 "github.com/vigilhq/vigil/api/model"

	"github.com/gin-gonic/gin"
)

// ValidateMessage is the inline pre-send check. It answers synchronously from
// the lexical rule engine alone; the AI-assisted path is reserved for the
// asynchronous audit flow. On any internal error the endpoint fails open and
// reports the message as safe, because availability of the messaging feature
// outranks moderation strictness here.
func (a Api) ValidateMessage(c *gin.Context) {
	var body model2.ValidateMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message is required and must be a string"})
		return
	}

	if err := body.ValidateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	trimmed := body.Trimmed()
	if trimmed == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message cannot be empty"})
		return
	}

	// Short messages are out-of-policy: skip classification entirely.
	if len(trimmed) < a.vigil.MinMessageLength() {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"is_suspicious": false,
			"message":       "Message is safe to send",
		})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("inline validation error: %v", rec)
			c.JSON(http.StatusOK, gin.H{
				"success":       true,
				"is_suspicious": false,
				"message":       "Message is safe to send",
			})
		}
	}()

	verdict := a.vigil.ValidateMessage(trimmed)

	if verdict.IsSuspicious {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"is_suspicious": true,
			"alert":         "This message contains suspicious content",
			"issues":        verdict.Issues,
			"message":       "Please review your message before sending",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"is_suspicious": false,
		"message":       "Message is safe to send",
	})
}
