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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/internal/request"
	"github.com/vigilhq/vigil/model"
)

const (
	// AILabelDisabled is returned when no credential is configured. Callers
	// must treat it as a neutral, zero-risk result, not an error.
	AILabelDisabled = "disabled"

	// AILabelError is returned when the external service fails. The adapter
	// fails open: the result carries zero risk and the failure is logged.
	AILabelError = "error"
)

// aiSystemPrompt is the fixed classification instruction sent with every call.
const aiSystemPrompt = `You are a content moderation AI. Classify messages as:
- SAFE: Normal conversation
- SUSPICIOUS: Potentially problematic but unclear
- FRAUD: Scams, phishing, UPI fraud, OTP scams
- HARASSMENT: Threats, abuse, hate speech
- SPAM: Unwanted promotional content

Respond in JSON: {"classification": "SAFE|SUSPICIOUS|FRAUD|HARASSMENT|SPAM", "confidence": 0-100, "reason": "brief explanation"}`

// aiRiskContributions maps each AI label to its fixed numeric risk
// contribution. This is a policy table owned by this service, not part of the
// model's output.
var aiRiskContributions = map[model.Classification]int{
	model.ClassificationSafe:       0,
	model.ClassificationSuspicious: 40,
	model.ClassificationSpam:       50,
	model.ClassificationFraud:      90,
	model.ClassificationHarassment: 95,
}

// AIRiskContribution returns the policy risk contribution for an AI label.
// Unknown labels contribute zero risk.
func AIRiskContribution(label model.Classification) int {
	return aiRiskContributions[label]
}

// AIResult is the adapter's verdict contribution for one message.
type AIResult struct {
	Label      string `json:"label"`
	RiskScore  int    `json:"risk_score"`
	Reason     string `json:"reason"`
	Confidence int    `json:"confidence"`
}

// AIClassifier calls an external OpenAI-compatible chat-completions service
// to classify message text. Without an API key the classifier is permanently
// disabled and returns a neutral result.
type AIClassifier struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

// NewAIClassifier builds an AIClassifier from the service configuration.
func NewAIClassifier(conf *config.Configuration) *AIClassifier {
	return &AIClassifier{
		apiKey:  conf.AI.APIKey,
		baseURL: conf.AI.BaseURL,
		model:   conf.AI.Model,
		timeout: time.Duration(conf.AI.TimeoutSec) * time.Second,
	}
}

// Enabled reports whether a credential is configured.
func (a *AIClassifier) Enabled() bool {
	return a.apiKey != ""
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiClassification struct {
	Classification string `json:"classification"`
	Confidence     int    `json:"confidence"`
	Reason         string `json:"reason"`
}

// Classify sends the message text to the external classification service and
// maps the returned label to its policy risk contribution. Any transport,
// service or parse failure yields a zero-risk "error" result; failures are
// never propagated to the caller.
func (a *AIClassifier) Classify(ctx context.Context, text string) AIResult {
	if !a.Enabled() {
		return AIResult{Label: AILabelDisabled, Reason: "AI disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body := chatCompletionRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: aiSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Classify this message: %q", text)},
		},
		Temperature: 0.3,
		MaxTokens:   150,
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := request.ToJsonReq(&body)
	if err != nil {
		return a.failOpen(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, payload)
	if err != nil {
		return a.failOpen(err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	var response chatCompletionResponse
	resp, err := request.Call(req, &response)
	if err != nil {
		return a.failOpen(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return a.failOpen(fmt.Errorf("classification service returned status %d", resp.StatusCode))
	}
	if response.Error != nil {
		return a.failOpen(fmt.Errorf("classification service error: %s", response.Error.Message))
	}
	if len(response.Choices) == 0 {
		return a.failOpen(fmt.Errorf("classification service returned no choices"))
	}

	var result aiClassification
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &result); err != nil {
		return a.failOpen(err)
	}

	label := model.Classification(result.Classification)
	return AIResult{
		Label:      result.Classification,
		RiskScore:  AIRiskContribution(label),
		Reason:     result.Reason,
		Confidence: result.Confidence,
	}
}

func (a *AIClassifier) failOpen(err error) AIResult {
	logrus.Errorf("AI moderation error: %v", err)
	return AIResult{Label: AILabelError, Reason: err.Error()}
}
