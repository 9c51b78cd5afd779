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

// Package api provides integration test utilities for OpenStack-style
// image and object-storage services.
//
// # Separate Client Implementation
//
// This package intentionally maintains thin hand-rolled HTTP clients
// instead of pulling in an SDK for the services under test. An
// independent client implementation serves as a form of triangulation
// on API correctness: a legitimate change to the service API must have
// a compensating change here, making evolution explicit and
// reviewable. The clients also carry test-specific features an SDK
// would hide:
//
//   - W3C trace context propagation for request correlation
//   - detailed error logging with trace IDs for debugging
//   - direct access to HTTP status codes and response bodies
//   - flexible authentication token management
//
// # Capability Gating
//
// Object-storage deployments differ in which optional middlewares are
// enabled. Suites declare the capabilities they need through
// RequireFeatures, and the resolver in pkg/features merges configured,
// reported and excluded capabilities into the effective set. The
// resolved set and the authentication exchange are both memoized for
// the process lifetime: resolved once, first access wins.
package api
