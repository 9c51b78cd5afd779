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

// Package features resolves the effective set of optional service
// capabilities used to gate functional tests. A deployment advertises
// capabilities through its info endpoint, operators pin or exclude
// capabilities through configuration, and the resolver merges the two
// into a single set tests can query.
package features

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Sentinel literals accepted on the configuration surface. Internally a
// Set is a tagged variant, never a magic string.
const (
	AllToken  = "__ALL__"
	NoneToken = "__NONE__"
)

type kind int

const (
	kindSubset kind = iota
	kindAll
	kindNone
)

// Set is the effective capability set: every capability, no capability,
// or an explicit subset of tokens.
type Set struct {
	kind   kind
	tokens map[string]struct{}
}

// All returns the set matching every capability.
func All() Set {
	return Set{kind: kindAll}
}

// None returns the empty-by-fiat set; every gated test skips.
func None() Set {
	return Set{kind: kindNone}
}

// Subset returns an explicit capability set. The tokens are copied.
func Subset(tokens ...string) Set {
	set := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		if token != "" {
			set[token] = struct{}{}
		}
	}

	return Set{kind: kindSubset, tokens: set}
}

// Parse converts the external representation into a Set. The sentinel
// literals map to All and None, anything else is whitespace-split.
func Parse(s string) Set {
	switch strings.TrimSpace(s) {
	case AllToken:
		return All()
	case NoneToken:
		return None()
	default:
		return Subset(strings.Fields(s)...)
	}
}

// IsAll reports whether the set matches every capability.
func (s Set) IsAll() bool {
	return s.kind == kindAll
}

// IsNone reports whether the set is the always-skip set.
func (s Set) IsNone() bool {
	return s.kind == kindNone
}

// Contains reports whether the set includes the token. All contains
// everything, None nothing.
func (s Set) Contains(token string) bool {
	switch s.kind {
	case kindAll:
		return true
	case kindNone:
		return false
	default:
		_, ok := s.tokens[token]
		return ok
	}
}

// Tokens returns the sorted member tokens of a subset. Sentinels have
// no members.
func (s Set) Tokens() []string {
	if s.kind != kindSubset {
		return nil
	}

	tokens := make([]string, 0, len(s.tokens))
	for token := range s.tokens {
		tokens = append(tokens, token)
	}

	sort.Strings(tokens)

	return tokens
}

// Missing returns the required tokens absent from the set, preserving
// argument order. All is never missing anything, None is missing
// everything.
func (s Set) Missing(required ...string) []string {
	switch s.kind {
	case kindAll:
		return nil
	case kindNone:
		missing := make([]string, len(required))
		copy(missing, required)

		return missing
	default:
		var missing []string

		for _, token := range required {
			if _, ok := s.tokens[token]; !ok {
				missing = append(missing, token)
			}
		}

		return missing
	}
}

// String renders the canonical external representation: a sentinel
// literal, or the sorted tokens joined with spaces.
func (s Set) String() string {
	switch s.kind {
	case kindAll:
		return AllToken
	case kindNone:
		return NoneToken
	default:
		return strings.Join(s.Tokens(), " ")
	}
}

// DiscoverFunc fetches the whitespace-separated capability string a
// live deployment reports. A nil DiscoverFunc disables discovery.
type DiscoverFunc func(ctx context.Context) (string, error)

// DiscoveryError wraps a live capability discovery failure. Callers
// must surface it as an error, never as a skip.
type DiscoveryError struct {
	err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("capability discovery failed: %v", e.err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.err
}

// Resolve computes the effective capability set from the configured
// set, the configured exclusions, and optionally the capabilities a
// live deployment reports:
//
//   - configured All wins outright,
//   - excluded All collapses the result to None,
//   - otherwise the result is (reported ∪ configured) − excluded.
//
// Excluding a token that is not present is permitted and ignored.
// Discovery runs before the short-circuits so a broken info endpoint is
// always reported.
func Resolve(ctx context.Context, configured, excluded Set, discover DiscoverFunc) (Set, error) {
	var reported []string

	if discover != nil {
		raw, err := discover(ctx)
		if err != nil {
			return Set{}, &DiscoveryError{err: err}
		}

		reported = strings.Fields(raw)
	}

	if configured.IsAll() {
		return All(), nil
	}

	if excluded.IsAll() {
		return None(), nil
	}

	merged := make(map[string]struct{})

	for _, token := range reported {
		merged[token] = struct{}{}
	}

	for token := range configured.tokens {
		merged[token] = struct{}{}
	}

	for token := range excluded.tokens {
		delete(merged, token)
	}

	result := make([]string, 0, len(merged))
	for token := range merged {
		result = append(result, token)
	}

	return Subset(result...), nil
}

// SkipReason implements the required-capabilities gate. It returns a
// human-readable reason and true when the calling test must be skipped.
func SkipReason(resolved Set, required ...string) (string, bool) {
	if resolved.IsAll() {
		return "", false
	}

	if resolved.IsNone() {
		return "all capabilities are excluded by configuration", true
	}

	if missing := resolved.Missing(required...); len(missing) > 0 {
		return fmt.Sprintf("requires capabilities: %s", strings.Join(missing, ", ")), true
	}

	return "", false
}
