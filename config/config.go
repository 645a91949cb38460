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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// DefaultMinMessageLength is the length below which a message is
	// considered out-of-policy and safe without classification.
	DefaultMinMessageLength = 3

	// DefaultFraudThreshold and DefaultSuspiciousThreshold are the final
	// risk-score boundaries for classification.
	DefaultFraudThreshold      = 80
	DefaultSuspiciousThreshold = 50

	// DefaultEscalationThreshold is the rule score above which the AI
	// classifier is consulted on the async path.
	DefaultEscalationThreshold = 20

	// DefaultSamplingProbability is the chance a clean rule result is still
	// sent to the AI classifier for calibration.
	DefaultSamplingProbability = 0.05
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"VIGIL_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"VIGIL_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"VIGIL_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"VIGIL_DATA_SOURCE_DNS"`
}

// RedisConfig is optional. An empty DNS disables the webhook dedupe cache.
type RedisConfig struct {
	Dns string `json:"dns" envconfig:"VIGIL_REDIS_DNS"`
}

// AIConfig configures the external AI classification service. An empty APIKey
// permanently disables the adapter; this is not an error.
type AIConfig struct {
	APIKey              string  `json:"api_key" envconfig:"VIGIL_AI_API_KEY"`
	BaseURL             string  `json:"base_url" envconfig:"VIGIL_AI_BASE_URL"`
	Model               string  `json:"model" envconfig:"VIGIL_AI_MODEL"`
	TimeoutSec          int     `json:"timeout_sec" envconfig:"VIGIL_AI_TIMEOUT_SEC"`
	SamplingProbability float64 `json:"sampling_probability" envconfig:"VIGIL_AI_SAMPLING_PROBABILITY"`
	EscalationThreshold int     `json:"escalation_threshold" envconfig:"VIGIL_AI_ESCALATION_THRESHOLD"`
}

// RuleListsConfig overrides the built-in tiered keyword lists. The lists are
// product policy; only the tiering structure is part of the contract.
type RuleListsConfig struct {
	CriticalKeywords []string `json:"critical_keywords"`
	HighKeywords     []string `json:"high_keywords"`
	CriticalPatterns []string `json:"critical_patterns"`
	SuspiciousLinks  []string `json:"suspicious_links"`
	HighPhrases      []string `json:"high_phrases"`
}

type ModerationConfig struct {
	FraudThreshold      int             `json:"fraud_threshold" envconfig:"VIGIL_MODERATION_FRAUD_THRESHOLD"`
	SuspiciousThreshold int             `json:"suspicious_threshold" envconfig:"VIGIL_MODERATION_SUSPICIOUS_THRESHOLD"`
	MinMessageLength    int             `json:"min_message_length" envconfig:"VIGIL_MODERATION_MIN_MESSAGE_LENGTH"`
	QueueYieldMs        int             `json:"queue_yield_ms" envconfig:"VIGIL_MODERATION_QUEUE_YIELD_MS"`
	Rules               RuleListsConfig `json:"rules"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"VIGIL_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"VIGIL_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"VIGIL_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"VIGIL_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	AI           AIConfig         `json:"ai"`
	Moderation   ModerationConfig `json:"moderation"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("vigil", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called vigil.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Moderation.SuspiciousThreshold > 0 && cnf.Moderation.FraudThreshold > 0 &&
		cnf.Moderation.SuspiciousThreshold > cnf.Moderation.FraudThreshold {
		log.Println("Error: suspicious threshold cannot exceed fraud threshold.")
		return errors.New("suspicious threshold cannot exceed fraud threshold")
	}

	cnf.applyDefaults()
	return nil
}

func (cnf *Configuration) applyDefaults() {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Vigil Server"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.AI.BaseURL == "" {
		cnf.AI.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cnf.AI.Model == "" {
		cnf.AI.Model = "gpt-4o-mini"
	}
	if cnf.AI.TimeoutSec <= 0 {
		cnf.AI.TimeoutSec = 10
	}
	if cnf.AI.SamplingProbability <= 0 || cnf.AI.SamplingProbability > 1 {
		cnf.AI.SamplingProbability = DefaultSamplingProbability
	}
	if cnf.AI.EscalationThreshold <= 0 {
		cnf.AI.EscalationThreshold = DefaultEscalationThreshold
	}

	if cnf.Moderation.FraudThreshold <= 0 {
		cnf.Moderation.FraudThreshold = DefaultFraudThreshold
	}
	if cnf.Moderation.SuspiciousThreshold <= 0 {
		cnf.Moderation.SuspiciousThreshold = DefaultSuspiciousThreshold
	}
	if cnf.Moderation.MinMessageLength <= 0 {
		cnf.Moderation.MinMessageLength = DefaultMinMessageLength
	}
	if cnf.Moderation.QueueYieldMs <= 0 {
		cnf.Moderation.QueueYieldMs = 100
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.applyDefaults()
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
