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
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/model"
)

var tracer = otel.Tracer("moderation.pipeline")

// Moderator combines the lexical rule engine with the optional AI classifier
// into a single verdict. Rules always run first; the AI classifier is
// consulted when the rule score signals real uncertainty, or on a small random
// sample of clean traffic to gather a calibration signal.
type Moderator struct {
	rules *RuleEngine
	ai    *AIClassifier

	fraudThreshold      int
	suspiciousThreshold int
	escalationThreshold int
	samplingProbability float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewModerator wires a Moderator from its collaborators and the configured
// policy constants.
func NewModerator(rules *RuleEngine, ai *AIClassifier, conf *config.Configuration) *Moderator {
	return &Moderator{
		rules:               rules,
		ai:                  ai,
		fraudThreshold:      conf.Moderation.FraudThreshold,
		suspiciousThreshold: conf.Moderation.SuspiciousThreshold,
		escalationThreshold: conf.AI.EscalationThreshold,
		samplingProbability: conf.AI.SamplingProbability,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandSource replaces the sampling random source. Tests use a seeded
// source to make AI escalation deterministic.
func (m *Moderator) SetRandSource(rng *rand.Rand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rng = rng
}

// combineScores merges the rule and AI risk scores. The more alarming signal
// wins; neither source can lower the other's alarm.
func combineScores(ruleScore, aiScore int) int {
	if aiScore > ruleScore {
		return aiScore
	}
	return ruleScore
}

// classify maps a final risk score onto the classification thresholds.
func (m *Moderator) classify(score int) model.Classification {
	switch {
	case score >= m.fraudThreshold:
		return model.ClassificationFraud
	case score >= m.suspiciousThreshold:
		return model.ClassificationSuspicious
	default:
		return model.ClassificationSafe
	}
}

// shouldEscalate decides whether the AI classifier is worth a network call.
func (m *Moderator) shouldEscalate(ruleScore int) bool {
	if ruleScore > m.escalationThreshold {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.samplingProbability
}

// Moderate runs the full hybrid classification for one message and returns a
// fresh Verdict. It never returns an error: every internal failure degrades
// to the rule-based result.
func (m *Moderator) Moderate(ctx context.Context, text string) model.Verdict {
	ctx, span := tracer.Start(ctx, "Moderating message")
	defer span.End()

	issues, ruleScore := m.rules.Check(text)

	aiResult := AIResult{Label: AILabelDisabled}
	if m.shouldEscalate(ruleScore) {
		aiResult = m.ai.Classify(ctx, text)
	}

	finalScore := combineScores(ruleScore, aiResult.RiskScore)
	classification := m.classify(finalScore)

	verdict := model.Verdict{
		IsSuspicious:     len(issues) > 0 || finalScore >= m.suspiciousThreshold,
		Classification:   classification,
		RiskScore:        finalScore,
		Issues:           issues,
		AIClassification: aiResult.Label,
		AIReason:         aiResult.Reason,
	}

	logrus.WithFields(logrus.Fields{
		"classification": verdict.Classification,
		"risk_score":     verdict.RiskScore,
		"issues":         len(verdict.Issues),
		"ai_label":       aiResult.Label,
	}).Info("message moderated")

	return verdict
}

// VerdictFromRules builds an inline-path verdict from the rule engine alone.
// The inline path never consults the AI classifier or the queue, which keeps
// its latency bound deterministic.
func (m *Moderator) VerdictFromRules(text string) model.Verdict {
	issues, ruleScore := m.rules.Check(text)
	return model.Verdict{
		IsSuspicious:   len(issues) > 0,
		Classification: m.classify(ruleScore),
		RiskScore:      ruleScore,
		Issues:         issues,
	}
}
