/*
Copyright 2026 the Overcast Authors.

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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/overcast-qa/overcast/pkg/features"
)

// Auth strategies understood by the harness.
const (
	AuthStrategyTempAuth = "tempauth"
	AuthStrategyKeystone = "keystone"
)

type TestConfig struct {
	ImageBaseURL        string
	IdentityBaseURL     string
	StorageURL          string
	AuthToken           string
	AuthStrategy        string
	AuthUser            string
	AuthKey             string
	TenantName          string
	IdentityServiceName string
	Region              string
	Features            features.Set
	ExcludedFeatures    features.Set
	UseLiveFeatures     bool
	BaseContainerName   string
	BaseObjectName      string
	RequestTimeout      time.Duration
	TestTimeout         time.Duration
	SkipIntegration     bool
	LogRequests         bool
	LogResponses        bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{
		ImageBaseURL:        os.Getenv("IMAGE_BASE_URL"),
		IdentityBaseURL:     os.Getenv("IDENTITY_BASE_URL"),
		StorageURL:          os.Getenv("STORAGE_URL"),
		AuthToken:           os.Getenv("API_AUTH_TOKEN"),
		AuthStrategy:        getStringWithDefault("AUTH_STRATEGY", AuthStrategyKeystone),
		AuthUser:            os.Getenv("AUTH_USER"),
		AuthKey:             os.Getenv("AUTH_KEY"),
		TenantName:          os.Getenv("AUTH_TENANT"),
		IdentityServiceName: getStringWithDefault("IDENTITY_SERVICE_NAME", "swift"),
		Region:              os.Getenv("IDENTITY_REGION"),
		Features:            features.Parse(os.Getenv("FEATURES")),
		ExcludedFeatures:    features.Parse(os.Getenv("EXCLUDED_FEATURES")),
		UseLiveFeatures:     getBoolWithDefault("USE_LIVE_FEATURES", false),
		BaseContainerName:   getStringWithDefault("BASE_CONTAINER_NAME", "overcast"),
		BaseObjectName:      getStringWithDefault("BASE_OBJECT_NAME", "overcast"),
		RequestTimeout:      getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		TestTimeout:         getDurationWithDefault("TEST_TIMEOUT", 10*time.Minute),
		SkipIntegration:     getBoolWithDefault("SKIP_INTEGRATION", false),
		LogRequests:         getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:        getBoolWithDefault("LOG_RESPONSES", false),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// IntegrationEnabled reports whether enough configuration is present to
// talk to a live deployment. Suites skip rather than fail when it is
// false.
func (c *TestConfig) IntegrationEnabled() bool {
	if c.SkipIntegration {
		return false
	}

	return c.IdentityBaseURL != "" || c.StorageURL != ""
}

// getStringWithDefault gets a string from environment variable or returns default.
func getStringWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func loadEnvFile() {
	envPaths := []string{
		"../../../test/.env", // From test/api/suites directory
		"../../test/.env",    // From test/api directory
	}

	var envPath string
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateConfig checks strategy-dependent required values. Nothing is
// required when integration is disabled so unit tests run anywhere.
func validateConfig(config *TestConfig) error {
	if config.AuthStrategy != AuthStrategyTempAuth && config.AuthStrategy != AuthStrategyKeystone {
		return fmt.Errorf("unknown AUTH_STRATEGY %q", config.AuthStrategy)
	}

	if !config.IntegrationEnabled() {
		return nil
	}

	var missing []string

	// A pre-issued token together with an explicit storage URL stands in
	// for the whole auth exchange.
	if config.AuthToken != "" && config.StorageURL != "" {
		return nil
	}

	required := map[string]string{
		"IDENTITY_BASE_URL": config.IdentityBaseURL,
		"AUTH_USER":         config.AuthUser,
		"AUTH_KEY":          config.AuthKey,
	}

	if config.AuthStrategy == AuthStrategyKeystone {
		required["IDENTITY_REGION"] = config.Region
	}

	for envVar, value := range required {
		if value == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s. Please set these environment variables or add them to a .env file", strings.Join(missing, ", "))
	}

	return nil
}
