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
	"encoding/json"
	"net/http"
	"testing"

	model2 "github.com/vigilhq/vigil/api/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	router, _, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	tests := []struct {
		name           string
		payload        model2.ValidateMessage
		expectedCode   int
		wantSuspicious bool
	}{
		{
			name:           "Safe Message",
			payload:        model2.ValidateMessage{Message: "Hey, are we still on for lunch tomorrow?"},
			expectedCode:   http.StatusOK,
			wantSuspicious: false,
		},
		{
			name:           "Critical Keyword",
			payload:        model2.ValidateMessage{Message: "send me your ssn to claim the money"},
			expectedCode:   http.StatusOK,
			wantSuspicious: true,
		},
		{
			name:           "Critical Pattern",
			payload:        model2.ValidateMessage{Message: "You must verify your account immediately"},
			expectedCode:   http.StatusOK,
			wantSuspicious: true,
		},
		{
			name:           "Short Message Skips Checks",
			payload:        model2.ValidateMessage{Message: "ok"},
			expectedCode:   http.StatusOK,
			wantSuspicious: false,
		},
		{
			name:         "Empty Message",
			payload:      model2.ValidateMessage{Message: ""},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Whitespace Only",
			payload:      model2.ValidateMessage{Message: "   "},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, _ := json.Marshal(tt.payload)

			var response map[string]interface{}
			testRequest := TestRequest{
				Payload:  bytes.NewBuffer(payloadBytes),
				Response: &response,
				Method:   "POST",
				Route:    "/messages/validate",
				Router:   router,
			}

			resp, err := SetUpTestRequest(testRequest)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)

			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, true, response["success"])
				assert.Equal(t, tt.wantSuspicious, response["is_suspicious"])
				if tt.wantSuspicious {
					assert.Equal(t, "This message contains suspicious content", response["alert"])
					assert.NotEmpty(t, response["issues"])
				} else {
					assert.Equal(t, "Message is safe to send", response["message"])
				}
			} else {
				assert.Equal(t, false, response["success"])
			}
		})
	}
}

func TestValidateMessageMalformedBody(t *testing.T) {
	router, _, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBufferString(`{"message": 42}`),
		Response: &response,
		Method:   "POST",
		Route:    "/messages/validate",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Message is required and must be a string", response["error"])
}
