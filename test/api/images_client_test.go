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

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/overcast-qa/overcast/test/api"
)

// newImageServer is an in-memory image service v2 stub implementing
// just enough of the create/get/patch/delete surface for the client.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	var mu sync.Mutex

	store := map[string]map[string]any{}

	router := chi.NewRouter()

	router.Post("/v2/images", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		image := map[string]any{
			"id":               api.GenerateRandomName("img"),
			"name":             req["name"],
			"status":           "queued",
			"visibility":       "shared",
			"container_format": req["container_format"],
			"disk_format":      req["disk_format"],
		}

		mu.Lock()
		store[image["id"].(string)] = image
		mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(image)
	})

	router.Get("/v2/images/{imageID}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		image, ok := store[chi.URLParam(r, "imageID")]
		mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_ = json.NewEncoder(w).Encode(image)
	})

	router.Patch("/v2/images/{imageID}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		image, ok := store[chi.URLParam(r, "imageID")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var ops []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		for _, op := range ops {
			key := op["path"][1:]

			switch op["op"] {
			case "add", "replace":
				image[key] = op["value"]
			case "remove":
				delete(image, key)
			}
		}

		_ = json.NewEncoder(w).Encode(image)
	})

	router.Delete("/v2/images/{imageID}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delete(store, chi.URLParam(r, "imageID"))
		mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func newImagesClient(t *testing.T, server *httptest.Server) *api.ImagesClient {
	t.Helper()

	config := &api.TestConfig{
		ImageBaseURL:   server.URL,
		RequestTimeout: 5 * time.Second,
	}

	return api.NewImagesClient(config, "stub-token")
}

func TestUpdateImageAddProperty(t *testing.T) {
	t.Parallel()

	client := newImagesClient(t, newImageServer(t))
	ctx := context.Background()

	image, err := client.CreateImage(ctx, api.CreateImageRequest{
		Name:            "add-prop-test",
		ContainerFormat: "bare",
		DiskFormat:      "raw",
	})
	require.NoError(t, err)

	propValue := api.GenerateRandomName("new_prop_value")

	response, err := client.UpdateImage(ctx, image.ID, api.ImagePatch{
		Add: map[string]string{"user_prop": propValue},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, propValue, response.Image.AdditionalProperties["user_prop"])
}

func TestUpdateImageRemoveProperty(t *testing.T) {
	t.Parallel()

	client := newImagesClient(t, newImageServer(t))
	ctx := context.Background()

	image, err := client.CreateImage(ctx, api.CreateImageRequest{
		Name:            "remove-prop-test",
		ContainerFormat: "bare",
		DiskFormat:      "raw",
	})
	require.NoError(t, err)

	response, err := client.UpdateImage(ctx, image.ID, api.ImagePatch{
		Add: map[string]string{"user_prop": "value"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	response, err = client.UpdateImage(ctx, image.ID, api.ImagePatch{
		Remove: []string{"user_prop"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NotContains(t, response.Image.AdditionalProperties, "user_prop")
}

func TestUpdateImageReplaceProperty(t *testing.T) {
	t.Parallel()

	client := newImagesClient(t, newImageServer(t))
	ctx := context.Background()

	image, err := client.CreateImage(ctx, api.CreateImageRequest{
		Name:            "replace-prop-test",
		ContainerFormat: "bare",
		DiskFormat:      "raw",
	})
	require.NoError(t, err)

	response, err := client.UpdateImage(ctx, image.ID, api.ImagePatch{
		Add: map[string]string{"user_prop": "before"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	response, err = client.UpdateImage(ctx, image.ID, api.ImagePatch{
		Replace: map[string]string{"user_prop": "after"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, "after", response.Image.AdditionalProperties["user_prop"])
}

func TestUpdateImageNotFound(t *testing.T) {
	t.Parallel()

	client := newImagesClient(t, newImageServer(t))

	response, err := client.UpdateImage(context.Background(), "no-such-image", api.ImagePatch{
		Add: map[string]string{"user_prop": "value"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	require.Nil(t, response.Image)
}

func TestImageDecodingSeparatesAdditionalProperties(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "abc",
		"name": "cirros",
		"status": "active",
		"min_disk": 1,
		"tags": ["a"],
		"user_prop": "v1",
		"numeric_prop": 42
	}`)

	image := &api.Image{}
	require.NoError(t, json.Unmarshal(raw, image))

	require.Equal(t, "abc", image.ID)
	require.Equal(t, "cirros", image.Name)
	require.Equal(t, 1, image.MinDisk)
	require.Equal(t, []string{"a"}, image.Tags)
	require.Equal(t, "v1", image.AdditionalProperties["user_prop"])
	require.Equal(t, "42", image.AdditionalProperties["numeric_prop"])
	require.NotContains(t, image.AdditionalProperties, "name")
}
