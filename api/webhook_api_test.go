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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/vigilhq/vigil"
	model2 "github.com/vigilhq/vigil/api/model"
	"github.com/vigilhq/vigil/model"
)

func chatEvent(eventType, msgType, text string) model2.ChatEvent {
	var event model2.ChatEvent
	event.Type = eventType
	event.Message.ID = gofakeit.UUID()
	event.Message.Text = text
	event.Message.Type = msgType
	event.User.ID = gofakeit.Username()
	event.ChannelID = gofakeit.UUID()
	event.ChannelType = "messaging"
	return event
}

func TestChatWebhook(t *testing.T) {
	router, _, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	tests := []struct {
		name       string
		event      model2.ChatEvent
		wantQueued bool
	}{
		{
			name:       "New Message Is Queued",
			event:      chatEvent("message.new", "regular", gofakeit.Sentence(8)),
			wantQueued: true,
		},
		{
			name:       "Unrelated Event Is Acked And Dropped",
			event:      chatEvent("message.updated", "regular", gofakeit.Sentence(8)),
			wantQueued: false,
		},
		{
			name:       "System Message Is Acked And Dropped",
			event:      chatEvent("message.new", "system", "user joined the channel"),
			wantQueued: false,
		},
		{
			name:       "Empty Text Is Acked And Dropped",
			event:      chatEvent("message.new", "regular", "   "),
			wantQueued: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, _ := json.Marshal(tt.event)

			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  bytes.NewBuffer(payloadBytes),
				Response: &response,
				Method:   "POST",
				Route:    "/webhooks/chat",
				Router:   router,
			})
			assert.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, true, response["received"])

			if tt.wantQueued {
				assert.Equal(t, true, response["queued"])
				assert.NotEmpty(t, response["job_id"])
			} else {
				assert.Nil(t, response["queued"])
			}
		})
	}
}

func TestChatWebhookMissingType(t *testing.T) {
	router, _, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBufferString(`{"message": {"id": "m1", "text": "hello there"}}`),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/chat",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, false, response["received"])
}

// The webhook must acknowledge the chat transport before moderation runs.
func TestChatWebhookAcksBeforeProcessing(t *testing.T) {
	router, newVigil, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	release := make(chan struct{})
	processed := make(chan string, 1)
	newVigil.Queue().RegisterProcessor(vigil.JobKindModerate, func(ctx context.Context, job *model.Job) error {
		<-release
		processed <- job.Payload.MessageID
		return nil
	})

	event := chatEvent("message.new", "regular", "urgent, transfer money before the account locked notice expires")
	payloadBytes, _ := json.Marshal(event)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(payloadBytes),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/chat",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, response["queued"])

	// The ack arrived while the processor was still blocked.
	select {
	case id := <-processed:
		t.Fatalf("job %s processed before the webhook was acknowledged", id)
	default:
	}

	close(release)
	select {
	case id := <-processed:
		assert.Equal(t, event.Message.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("moderation job was never processed")
	}
}
