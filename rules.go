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
	"regexp"
	"strings"

	"github.com/vigilhq/vigil/config"
	"github.com/vigilhq/vigil/model"
)

const (
	// maxRiskScore is the ceiling for any rule-based score. A single
	// critical match forces it.
	maxRiskScore = 100

	// highSeverityWeight is the score contribution of one high-severity match.
	highSeverityWeight = 30
)

// RuleSet is the raw, configurable content of the lexical rule engine.
// The tiering structure (critical short-circuits, high accumulates) is the
// contract; the literal word lists are product policy and can be overridden
// from configuration.
type RuleSet struct {
	CriticalKeywords []string
	HighKeywords     []string
	CriticalPatterns []string
	SuspiciousLinks  []string
	HighPhrases      []string
}

// DefaultRuleSet returns the built-in tiered keyword lists.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		CriticalKeywords: []string{
			// Identity theft
			"ssn", "verify your ssn",
			// Single-token phishing and scam markers
			"clicktoverify", "pay-now",
			// Financial scams
			"send money", "transfer money", "wire money", "send payment",
			"make payment", "pay now", "urgent payment", "immediate payment",
			// Investment scams
			"double your money", "guaranteed returns", "risk-free investment",
			"get rich quick", "make money fast",
			// Account compromise
			"verify your account", "account suspended", "account locked",
			"account closed", "verify now", "confirm your identity",
			// Phishing
			"click this link", "open this link", "click here", "follow this link",
			// Urgency tactics
			"act now", "limited time", "expires today", "urgent action",
			"immediate action", "final notice",
			// Lottery scams
			"you have won", "claim your prize", "claim your reward",
		},
		HighKeywords: []string{
			// Financial channels
			"upi", "paypal", "venmo", "cashapp", "moneygram", "lottery",
			"jackpot", "investment", "crypto", "cryptocurrency", "bitcoin",
			"ethereum", "nft",
			// Urgency
			"urgent", "asap", "immediately", "emergency",
			// Verification codes
			"otp",
		},
		CriticalPatterns: []string{
			`send\s+money`,
			`transfer\s+money`,
			`wire\s+money`,
			`make\s+payment`,
			`pay\s+now`,
			`verify\s+your\s+account`,
			`account\s+(suspended|locked|closed)`,
			`click\s+(this\s+)?link`,
			`open\s+(this\s+)?link`,
			`you\s+have\s+won`,
			`claim\s+your\s+(prize|reward)`,
			`double\s+your\s+money`,
			`guaranteed\s+returns`,
			`risk-free\s+investment`,
			`act\s+now`,
			`limited\s+time`,
			`expires\s+(today|soon)`,
			`urgent\s+action`,
			`immediate\s+action`,
			`final\s+notice`,
		},
		SuspiciousLinks: []string{
			".xyz", ".tk", ".ml", ".ga", ".cf",
			"tinyurl", "bit.ly", "short.link", "t.co", "goo.gl", "ow.ly",
			"is.gd", "v.gd",
			"click-now", "clickhere", "verify-now", "update-now",
			"secure-link", "safe-link",
		},
		HighPhrases: []string{
			"free gift", "free cash", "free money", "free prize",
			"upi id", "bank details", "account number",
			"verification code", "security code",
			"work from home", "easy money", "no experience needed",
			"i need money", "send me money",
		},
	}
}

// RuleSetFromConfig builds a RuleSet from the configured overrides, falling
// back to the built-in lists for any tier left empty.
func RuleSetFromConfig(rules config.RuleListsConfig) RuleSet {
	set := DefaultRuleSet()
	if len(rules.CriticalKeywords) > 0 {
		set.CriticalKeywords = rules.CriticalKeywords
	}
	if len(rules.HighKeywords) > 0 {
		set.HighKeywords = rules.HighKeywords
	}
	if len(rules.CriticalPatterns) > 0 {
		set.CriticalPatterns = rules.CriticalPatterns
	}
	if len(rules.SuspiciousLinks) > 0 {
		set.SuspiciousLinks = rules.SuspiciousLinks
	}
	if len(rules.HighPhrases) > 0 {
		set.HighPhrases = rules.HighPhrases
	}
	return set
}

// RuleEngine is the deterministic, I/O-free lexical classifier. All state is
// read-only after construction, so a single engine is safely shared across
// callers without locking.
type RuleEngine struct {
	critical  map[string]struct{}
	high      map[string]struct{}
	patterns  []*regexp.Regexp
	links     []string
	phrases   []string
	minLength int
}

// NewRuleEngine compiles a RuleSet into a RuleEngine. Messages shorter than
// minLength are considered out-of-policy and always safe.
func NewRuleEngine(set RuleSet, minLength int) (*RuleEngine, error) {
	if minLength <= 0 {
		minLength = config.DefaultMinMessageLength
	}

	critical := make(map[string]struct{}, len(set.CriticalKeywords))
	for _, keyword := range set.CriticalKeywords {
		critical[strings.ToLower(keyword)] = struct{}{}
	}

	high := make(map[string]struct{}, len(set.HighKeywords))
	for _, keyword := range set.HighKeywords {
		high[strings.ToLower(keyword)] = struct{}{}
	}

	patterns := make([]*regexp.Regexp, 0, len(set.CriticalPatterns))
	for _, pattern := range set.CriticalPatterns {
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, compiled)
	}

	links := make([]string, 0, len(set.SuspiciousLinks))
	for _, link := range set.SuspiciousLinks {
		links = append(links, strings.ToLower(link))
	}

	phrases := make([]string, 0, len(set.HighPhrases))
	for _, phrase := range set.HighPhrases {
		phrases = append(phrases, strings.ToLower(phrase))
	}

	return &RuleEngine{
		critical:  critical,
		high:      high,
		patterns:  patterns,
		links:     links,
		phrases:   phrases,
		minLength: minLength,
	}, nil
}

// MinLength returns the short-circuit length threshold.
func (r *RuleEngine) MinLength() int {
	return r.minLength
}

// Check classifies a message body against the tiered rule lists and returns
// the matched issues together with the rule risk score.
//
// Scan order: critical keywords by token (first match stops the scan), then
// critical multi-word patterns (first match stops the scan), then
// high-severity keywords, suspicious link substrings and high-severity
// phrases, all of which accumulate. A critical match forces the maximum
// score; each high-severity issue adds a fixed weight.
func (r *RuleEngine) Check(text string) ([]model.Issue, int) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if len(normalized) < r.minLength {
		return nil, 0
	}

	tokens := strings.Fields(normalized)

	// Critical keywords first: the fastest path to the worst classification.
	for _, token := range tokens {
		if _, ok := r.critical[token]; ok {
			return []model.Issue{{
				Kind:         model.IssueLexicalMatch,
				MatchedToken: token,
				Severity:     model.SeverityCritical,
			}}, maxRiskScore
		}
	}

	// Critical multi-word patterns against the whole message.
	for _, pattern := range r.patterns {
		if match := pattern.FindString(normalized); match != "" {
			return []model.Issue{{
				Kind:         model.IssuePatternMatch,
				MatchedToken: match,
				Severity:     model.SeverityCritical,
			}}, maxRiskScore
		}
	}

	var issues []model.Issue

	for _, token := range tokens {
		if _, ok := r.high[token]; ok {
			issues = append(issues, model.Issue{
				Kind:         model.IssueLexicalMatch,
				MatchedToken: token,
				Severity:     model.SeverityHigh,
			})
		}
	}

	for _, link := range r.links {
		if strings.Contains(normalized, link) {
			issues = append(issues, model.Issue{
				Kind:         model.IssueSuspiciousLink,
				MatchedToken: link,
				Severity:     model.SeverityHigh,
			})
		}
	}

	for _, phrase := range r.phrases {
		if strings.Contains(normalized, phrase) {
			issues = append(issues, model.Issue{
				Kind:         model.IssueLexicalMatch,
				MatchedToken: phrase,
				Severity:     model.SeverityHigh,
			})
		}
	}

	score := len(issues) * highSeverityWeight
	if score > maxRiskScore {
		score = maxRiskScore
	}
	return issues, score
}
