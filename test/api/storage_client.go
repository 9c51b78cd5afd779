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
	"net/url"
	"sort"
	"strings"

	"github.com/onsi/ginkgo/v2"
)

// StorageClient exercises the object-storage API. The base URL is the
// account storage URL returned by authentication.
type StorageClient struct {
	*APIClient
}

func NewStorageClient(config *TestConfig, storageURL, authToken string) *StorageClient {
	return &StorageClient{
		APIClient: NewAPIClient(config, storageURL, authToken),
	}
}

// CreateContainer creates a container, returning the HTTP status so
// scenarios can distinguish created (201) from already-present (202).
func (c *StorageClient) CreateContainer(ctx context.Context, name string, headers http.Header) (int, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodPut, c.endpoints.Container(name), headers, nil, 0)
	if err != nil {
		return 0, fmt.Errorf("creating container: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return resp.StatusCode, fmt.Errorf("creating container '%s' failed (status: %d, body: %s)", name, resp.StatusCode, string(respBody))
	}

	return resp.StatusCode, nil
}

// HeadContainer returns the container's metadata headers and status.
func (c *StorageClient) HeadContainer(ctx context.Context, name string) (http.Header, int, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, _, err := c.doRequest(ctx, http.MethodHead, c.endpoints.Container(name), nil, nil, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("heading container: %w", err)
	}

	return resp.Header, resp.StatusCode, nil
}

// DeleteContainer deletes an empty container. Missing containers are
// not an error so cleanup stays idempotent.
func (c *StorageClient) DeleteContainer(ctx context.Context, name string) error {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodDelete, c.endpoints.Container(name), nil, nil, 0)
	if err != nil {
		return fmt.Errorf("deleting container: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("deleting container '%s' failed (status: %d, body: %s)", name, resp.StatusCode, string(respBody))
	}
}

// CreateObject uploads an object into a container.
func (c *StorageClient) CreateObject(ctx context.Context, container, object string, data []byte, headers http.Header) error {
	//nolint:bodyclose // response body is closed in doRequest
	_, _, err := c.doRequest(ctx, http.MethodPut, c.endpoints.Object(container, object), headers, bytes.NewReader(data), http.StatusCreated)
	if err != nil {
		return fmt.Errorf("creating object: %w", err)
	}

	return nil
}

// DeleteObject removes an object. Missing objects are not an error.
func (c *StorageClient) DeleteObject(ctx context.Context, container, object string) error {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodDelete, c.endpoints.Object(container, object), nil, nil, 0)
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("deleting object '%s/%s' failed (status: %d, body: %s)", container, object, resp.StatusCode, string(respBody))
	}
}

// ListObjectNames returns the names of the objects in a container. An
// absent container lists as empty.
func (c *StorageClient) ListObjectNames(ctx context.Context, container string) ([]string, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodGet, c.endpoints.Container(container), nil, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("listing container: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return strings.Fields(string(respBody)), nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("listing container '%s' failed (status: %d)", container, resp.StatusCode)
	}
}

// ForceDeleteContainers empties and deletes the named containers.
// Failures are logged and swallowed: cleanup is best effort and must
// never mask the outcome of the test that registered it.
func (c *StorageClient) ForceDeleteContainers(ctx context.Context, names []string) {
	for _, name := range names {
		objects, err := c.ListObjectNames(ctx, name)
		if err != nil {
			ginkgo.GinkgoWriter.Printf("Warning: failed to list container %s during cleanup: %v\n", name, err)
			continue
		}

		for _, object := range objects {
			if err := c.DeleteObject(ctx, name, object); err != nil {
				ginkgo.GinkgoWriter.Printf("Warning: failed to delete object %s/%s during cleanup: %v\n", name, object, err)
			}
		}

		if err := c.DeleteContainer(ctx, name); err != nil {
			ginkgo.GinkgoWriter.Printf("Warning: failed to delete container %s during cleanup: %v\n", name, err)
		}
	}
}

// Capabilities fetches the deployment's info document and returns the
// advertised capability names as a whitespace-joined string, the form
// features.Resolve consumes. The info endpoint hangs off the host root,
// not the account path.
func (c *StorageClient) Capabilities(ctx context.Context) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing storage URL: %w", err)
	}

	infoURL := fmt.Sprintf("%s://%s/info", base.Scheme, base.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating info request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("info request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("info request failed with status %d", resp.StatusCode)
	}

	var info map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding info response: %w", err)
	}

	capabilities := make([]string, 0, len(info))
	for name := range info {
		capabilities = append(capabilities, name)
	}

	sort.Strings(capabilities)

	return strings.Join(capabilities, " "), nil
}
