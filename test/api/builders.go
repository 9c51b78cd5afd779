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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateRandomName appends random hex to a prefix so concurrent runs
// never collide on resource names.
func GenerateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	rand.Read(bytes)

	if prefix == "" {
		prefix = "test"
	}

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

// GenerateContainerName builds a unique container name from the
// configured base prefix plus an optional descriptor.
func GenerateContainerName(config *TestConfig, descriptor string) string {
	parts := []string{config.BaseContainerName}
	if descriptor != "" {
		parts = append(parts, descriptor)
	}

	return GenerateRandomName(strings.Join(parts, "-"))
}

// GenerateObjectName builds a unique object name from the configured
// base prefix.
func GenerateObjectName(config *TestConfig) string {
	return GenerateRandomName(config.BaseObjectName)
}
