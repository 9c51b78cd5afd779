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

//nolint:err113 // dynamic errors acceptable in test code
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// AccessData is the result of a successful authentication exchange: the
// object-storage endpoint plus the token to present on every request.
type AccessData struct {
	StorageURL string
	AuthToken  string
}

// AuthClient performs the authentication exchange for the configured
// strategy. It is deliberately a thin hand-rolled client, for the same
// reasons as the rest of the harness (see doc.go).
type AuthClient struct {
	config    *TestConfig
	client    *http.Client
	endpoints *Endpoints
}

func NewAuthClient(config *TestConfig) *AuthClient {
	return &AuthClient{
		config: config,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		endpoints: NewEndpoints(),
	}
}

// GetAccessData authenticates with the identity service and returns the
// storage endpoint and token. Failures are terminal; there is no retry.
func (a *AuthClient) GetAccessData(ctx context.Context) (*AccessData, error) {
	// A pre-issued token short-circuits the exchange entirely.
	if a.config.AuthToken != "" && a.config.StorageURL != "" {
		return &AccessData{
			StorageURL: a.config.StorageURL,
			AuthToken:  a.config.AuthToken,
		}, nil
	}

	switch a.config.AuthStrategy {
	case AuthStrategyTempAuth:
		return a.tempAuth(ctx)
	case AuthStrategyKeystone:
		return a.keystoneAuth(ctx)
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", a.config.AuthStrategy)
	}
}

// tempAuth implements the swift-all-in-one tempauth exchange: a GET
// with credential headers, endpoint and token come back as headers.
func (a *AuthClient) tempAuth(ctx context.Context) (*AccessData, error) {
	fullURL := strings.TrimSuffix(a.config.IdentityBaseURL, "/") + a.endpoints.TempAuth()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating tempauth request: %w", err)
	}

	req.Header.Set("X-Auth-User", a.config.AuthUser)
	req.Header.Set("X-Auth-Key", a.config.AuthKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tempauth request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return nil, fmt.Errorf("tempauth failed with status %d", resp.StatusCode)
	}

	access := &AccessData{
		StorageURL: resp.Header.Get("X-Storage-Url"),
		AuthToken:  resp.Header.Get("X-Auth-Token"),
	}

	if access.StorageURL == "" || access.AuthToken == "" {
		return nil, fmt.Errorf("tempauth response missing X-Storage-Url or X-Auth-Token headers")
	}

	return access, nil
}

// Keystone v2 token response, reduced to the fields the harness needs.
type keystoneAccess struct {
	Access struct {
		Token struct {
			ID string `json:"id"`
		} `json:"token"`
		ServiceCatalog []struct {
			Name      string `json:"name"`
			Type      string `json:"type"`
			Endpoints []struct {
				Region    string `json:"region"`
				PublicURL string `json:"publicURL"`
			} `json:"endpoints"`
		} `json:"serviceCatalog"`
	} `json:"access"`
}

// keystoneAuth issues a token with password credentials and looks up
// the storage endpoint in the service catalog by configured service
// name and region.
func (a *AuthClient) keystoneAuth(ctx context.Context) (*AccessData, error) {
	reqBody := map[string]any{
		"auth": map[string]any{
			"passwordCredentials": map[string]string{
				"username": a.config.AuthUser,
				"password": a.config.AuthKey,
			},
		},
	}

	if a.config.TenantName != "" {
		reqBody["auth"].(map[string]any)["tenantName"] = a.config.TenantName //nolint:forcetypeassert // safe: we control payload structure
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling token request: %w", err)
	}

	fullURL := strings.TrimSuffix(a.config.IdentityBaseURL, "/") + a.endpoints.Tokens()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var access keystoneAccess
	if err := json.NewDecoder(resp.Body).Decode(&access); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if access.Access.Token.ID == "" {
		return nil, fmt.Errorf("token response contained no token")
	}

	storageURL, err := a.catalogEndpoint(&access)
	if err != nil {
		return nil, err
	}

	return &AccessData{
		StorageURL: storageURL,
		AuthToken:  access.Access.Token.ID,
	}, nil
}

// catalogEndpoint finds the public endpoint for the configured service
// name and region in the catalog.
func (a *AuthClient) catalogEndpoint(access *keystoneAccess) (string, error) {
	for _, service := range access.Access.ServiceCatalog {
		if service.Name != a.config.IdentityServiceName {
			continue
		}

		for _, endpoint := range service.Endpoints {
			if a.config.Region == "" || endpoint.Region == a.config.Region {
				return endpoint.PublicURL, nil
			}
		}

		return "", fmt.Errorf("service %q has no endpoint in region %q", a.config.IdentityServiceName, a.config.Region)
	}

	return "", fmt.Errorf("service %q not present in catalog", a.config.IdentityServiceName)
}

// Process-wide auth memoization. The exchange runs once, first caller
// wins, everyone else reads the cached result.
var authCache struct { //nolint:gochecknoglobals
	once sync.Once
	data *AccessData
	err  error
}

// Authenticate is the memoized entry point fixtures use. Repeated calls
// return the first result regardless of the config passed later.
func Authenticate(ctx context.Context, config *TestConfig) (*AccessData, error) {
	authCache.once.Do(func() {
		authCache.data, authCache.err = NewAuthClient(config).GetAccessData(ctx)
	})

	if authCache.err != nil {
		return nil, fmt.Errorf("authentication failed in setup: %w", authCache.err)
	}

	return authCache.data, nil
}
