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
	"sort"
)

// imagePatchContentType is the image service v2.1 JSON patch media type.
const imagePatchContentType = "application/openstack-images-v2.1-json-patch"

// ImagesClient exercises the image service v2 API.
type ImagesClient struct {
	*APIClient
}

func NewImagesClient(config *TestConfig, authToken string) *ImagesClient {
	return &ImagesClient{
		APIClient: NewAPIClient(config, config.ImageBaseURL, authToken),
	}
}

// Image is an image service v2 entity. Keys the schema does not define
// land in AdditionalProperties, which is where the update scenarios
// make their assertions.
type Image struct {
	ID                   string
	Name                 string
	Status               string
	Visibility           string
	Protected            bool
	ContainerFormat      string
	DiskFormat           string
	MinDisk              int
	MinRAM               int
	Owner                string
	Checksum             string
	Size                 int64
	Tags                 []string
	CreatedAt            string
	UpdatedAt            string
	Self                 string
	File                 string
	Schema               string
	AdditionalProperties map[string]string
}

// schemaKeys are the image keys defined by the v2 schema; anything else
// is an additional property.
//
//nolint:gochecknoglobals
var schemaKeys = map[string]struct{}{
	"id": {}, "name": {}, "status": {}, "visibility": {}, "protected": {},
	"container_format": {}, "disk_format": {}, "min_disk": {}, "min_ram": {},
	"owner": {}, "checksum": {}, "size": {}, "virtual_size": {}, "tags": {},
	"created_at": {}, "updated_at": {}, "self": {}, "file": {}, "schema": {},
	"direct_url": {}, "locations": {}, "os_hash_algo": {}, "os_hash_value": {},
	"os_hidden": {},
}

func (i *Image) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decode := func(key string, target any) error {
		value, ok := raw[key]
		if !ok || string(value) == "null" {
			return nil
		}

		return json.Unmarshal(value, target)
	}

	fields := map[string]any{
		"id": &i.ID, "name": &i.Name, "status": &i.Status,
		"visibility": &i.Visibility, "protected": &i.Protected,
		"container_format": &i.ContainerFormat, "disk_format": &i.DiskFormat,
		"min_disk": &i.MinDisk, "min_ram": &i.MinRAM, "owner": &i.Owner,
		"checksum": &i.Checksum, "size": &i.Size, "tags": &i.Tags,
		"created_at": &i.CreatedAt, "updated_at": &i.UpdatedAt,
		"self": &i.Self, "file": &i.File, "schema": &i.Schema,
	}

	for key, target := range fields {
		if err := decode(key, target); err != nil {
			return fmt.Errorf("decoding image field %q: %w", key, err)
		}
	}

	i.AdditionalProperties = map[string]string{}

	for key, value := range raw {
		if _, ok := schemaKeys[key]; ok {
			continue
		}

		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			// Non-string extra properties keep their raw JSON form.
			s = string(value)
		}

		i.AdditionalProperties[key] = s
	}

	return nil
}

// CreateImageRequest is the minimal image creation payload.
type CreateImageRequest struct {
	Name            string `json:"name"`
	ContainerFormat string `json:"container_format"`
	DiskFormat      string `json:"disk_format"`
	Visibility      string `json:"visibility,omitempty"`
}

// CreateImage registers a new image record.
func (c *ImagesClient) CreateImage(ctx context.Context, request CreateImageRequest) (*Image, error) {
	bodyBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshaling image body: %w", err)
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodPost, c.endpoints.CreateImage(), nil, bytes.NewReader(bodyBytes), http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}

	image := &Image{}
	if err := json.Unmarshal(respBody, image); err != nil {
		return nil, fmt.Errorf("unmarshaling image response: %w", err)
	}

	return image, nil
}

// GetImage retrieves a specific image.
func (c *ImagesClient) GetImage(ctx context.Context, imageID string) (*Image, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodGet, c.endpoints.GetImage(imageID), nil, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		image := &Image{}
		if err := json.Unmarshal(respBody, image); err != nil {
			return nil, fmt.Errorf("unmarshaling image response: %w", err)
		}

		return image, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("image '%s' not found (status: %d)", imageID, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}
}

// DeleteImage removes an image record.
func (c *ImagesClient) DeleteImage(ctx context.Context, imageID string) error {
	//nolint:bodyclose // response body is closed in doRequest
	_, _, err := c.doRequest(ctx, http.MethodDelete, c.endpoints.DeleteImage(imageID), nil, nil, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	return nil
}

// ImagePatch collects add/remove/replace mutations of an image's
// extensible property mapping.
type ImagePatch struct {
	Add     map[string]string
	Replace map[string]string
	Remove  []string
}

// operations renders the patch as an images-v2.1 JSON patch document,
// in deterministic order: adds, then replaces, then removes.
func (p ImagePatch) operations() []map[string]string {
	var ops []map[string]string

	for _, key := range sortedKeys(p.Add) {
		ops = append(ops, map[string]string{"op": "add", "path": "/" + key, "value": p.Add[key]})
	}

	for _, key := range sortedKeys(p.Replace) {
		ops = append(ops, map[string]string{"op": "replace", "path": "/" + key, "value": p.Replace[key]})
	}

	removes := make([]string, len(p.Remove))
	copy(removes, p.Remove)
	sort.Strings(removes)

	for _, key := range removes {
		ops = append(ops, map[string]string{"op": "remove", "path": "/" + key})
	}

	return ops
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// UpdateImageResponse carries the raw status code alongside the decoded
// entity so scenarios can assert on both.
type UpdateImageResponse struct {
	StatusCode int
	Image      *Image
}

// UpdateImage applies a property patch to an image. The returned
// response is non-nil whenever the server answered; the entity is only
// decoded on 200.
func (c *ImagesClient) UpdateImage(ctx context.Context, imageID string, patch ImagePatch) (*UpdateImageResponse, error) {
	bodyBytes, err := json.Marshal(patch.operations())
	if err != nil {
		return nil, fmt.Errorf("marshaling image patch: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", imagePatchContentType)

	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodPatch, c.endpoints.UpdateImage(imageID), headers, bytes.NewReader(bodyBytes), 0)
	if err != nil {
		return nil, fmt.Errorf("updating image: %w", err)
	}

	response := &UpdateImageResponse{
		StatusCode: resp.StatusCode,
	}

	if resp.StatusCode == http.StatusOK {
		image := &Image{}
		if err := json.Unmarshal(respBody, image); err != nil {
			return nil, fmt.Errorf("unmarshaling image response: %w", err)
		}

		response.Image = image
	}

	return response, nil
}
