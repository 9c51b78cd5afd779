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
	"net/url"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Image service (v2) endpoints.
func (e *Endpoints) CreateImage() string {
	return "/v2/images"
}

func (e *Endpoints) GetImage(imageID string) string {
	return fmt.Sprintf("/v2/images/%s", url.PathEscape(imageID))
}

func (e *Endpoints) UpdateImage(imageID string) string {
	return fmt.Sprintf("/v2/images/%s", url.PathEscape(imageID))
}

func (e *Endpoints) DeleteImage(imageID string) string {
	return fmt.Sprintf("/v2/images/%s", url.PathEscape(imageID))
}

// Object storage endpoints, relative to the account storage URL.
func (e *Endpoints) Container(name string) string {
	return fmt.Sprintf("/%s", url.PathEscape(name))
}

func (e *Endpoints) Object(container, object string) string {
	return fmt.Sprintf("/%s/%s", url.PathEscape(container), url.PathEscape(object))
}

// Identity endpoints, relative to the identity base URL.
func (e *Endpoints) TempAuth() string {
	return "/auth/v1.0"
}

func (e *Endpoints) Tokens() string {
	return "/v2.0/tokens"
}
