package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Test case with empty ProjectName and DataSource DNS
	cnf := Configuration{
		ProjectName: "",
		DataSource: DataSourceConfig{
			Dns: "",
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	// Test case with all required fields filled, expect no error
	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource: DataSourceConfig{
			Dns: "some-dns",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
}

func TestValidateAndAddDefaults_PolicyDefaults(t *testing.T) {
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: "some-dns"},
	}

	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cnf.Moderation.FraudThreshold != DefaultFraudThreshold {
		t.Errorf("Expected fraud threshold %d, got %d", DefaultFraudThreshold, cnf.Moderation.FraudThreshold)
	}
	if cnf.Moderation.SuspiciousThreshold != DefaultSuspiciousThreshold {
		t.Errorf("Expected suspicious threshold %d, got %d", DefaultSuspiciousThreshold, cnf.Moderation.SuspiciousThreshold)
	}
	if cnf.Moderation.MinMessageLength != DefaultMinMessageLength {
		t.Errorf("Expected min message length %d, got %d", DefaultMinMessageLength, cnf.Moderation.MinMessageLength)
	}
	if cnf.AI.SamplingProbability != DefaultSamplingProbability {
		t.Errorf("Expected sampling probability %f, got %f", DefaultSamplingProbability, cnf.AI.SamplingProbability)
	}
	if cnf.AI.EscalationThreshold != DefaultEscalationThreshold {
		t.Errorf("Expected escalation threshold %d, got %d", DefaultEscalationThreshold, cnf.AI.EscalationThreshold)
	}
	if cnf.AI.Model != "gpt-4o-mini" {
		t.Errorf("Expected default model, got %s", cnf.AI.Model)
	}
	if cnf.Moderation.QueueYieldMs != 100 {
		t.Errorf("Expected default queue yield of 100ms, got %d", cnf.Moderation.QueueYieldMs)
	}
}

func TestValidateAndAddDefaults_ThresholdOrdering(t *testing.T) {
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: "some-dns"},
		Moderation: ModerationConfig{
			FraudThreshold:      50,
			SuspiciousThreshold: 80,
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "suspicious threshold cannot exceed fraud threshold" {
		t.Errorf("Expected threshold ordering error, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "vigil.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up after the test

	// Sample configuration to write to the temp file
	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource: DataSourceConfig{
			Dns: "temp-dns",
		},
		AI: AIConfig{
			APIKey:              "sk-test",
			SamplingProbability: 0.1,
		},
	}

	data, err := json.Marshal(sampleConfig)
	if err != nil {
		t.Fatalf("Unable to marshal sample config: %v", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Unable to close temporary file: %v", err)
	}

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile returned error: %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if loaded.ProjectName != "Temp Project" {
		t.Errorf("Expected project name from file, got %s", loaded.ProjectName)
	}
	if loaded.AI.SamplingProbability != 0.1 {
		t.Errorf("Expected sampling probability from file, got %f", loaded.AI.SamplingProbability)
	}
	if loaded.AI.BaseURL == "" {
		t.Error("Expected default AI base URL to be applied")
	}
}
