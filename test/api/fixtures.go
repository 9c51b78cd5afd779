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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	. "github.com/onsi/ginkgo/v2"

	"github.com/overcast-qa/overcast/pkg/features"
)

// Resolved feature cache, write-once for the process lifetime. First
// resolution wins, matching the auth cache contract.
var featureCache struct { //nolint:gochecknoglobals
	once sync.Once
	set  features.Set
	err  error
}

// ResolvedFeatures computes the effective capability set for the
// deployment under test, memoized for the process lifetime. Live
// discovery through the storage info endpoint is only wired up when
// configuration asks for it.
func ResolvedFeatures(ctx context.Context, config *TestConfig, storage *StorageClient) (features.Set, error) {
	featureCache.once.Do(func() {
		var discover features.DiscoverFunc

		if config.UseLiveFeatures {
			discover = storage.Capabilities
		}

		featureCache.set, featureCache.err = features.Resolve(ctx, config.Features, config.ExcludedFeatures, discover)
	})

	return featureCache.set, featureCache.err
}

// RequireFeatures skips the calling spec unless every required
// capability is present in the resolved set. Discovery failures fail
// the spec outright; they are never converted into skips.
func RequireFeatures(ctx context.Context, config *TestConfig, storage *StorageClient, required ...string) {
	GinkgoHelper()

	resolved, err := ResolvedFeatures(ctx, config, storage)
	if err != nil {
		Fail(fmt.Sprintf("resolving capabilities: %v", err))
	}

	if reason, skip := features.SkipReason(resolved, required...); skip {
		Skip(reason)
	}
}

// NewStorageFixture authenticates (memoized) and returns a storage
// client bound to the account endpoint. Auth failure fails the suite
// immediately; there is nothing to retry.
func NewStorageFixture(ctx context.Context, config *TestConfig) *StorageClient {
	GinkgoHelper()

	access, err := Authenticate(ctx, config)
	if err != nil {
		Fail(err.Error())
	}

	return NewStorageClient(config, access.StorageURL, access.AuthToken)
}

// NewImagesFixture authenticates (memoized) and returns an image
// service client.
func NewImagesFixture(ctx context.Context, config *TestConfig) *ImagesClient {
	GinkgoHelper()

	access, err := Authenticate(ctx, config)
	if err != nil {
		Fail(err.Error())
	}

	return NewImagesClient(config, access.AuthToken)
}

// CreateTempContainer creates a temporary container and registers its
// force deletion before returning, so cleanup runs whether the test
// passes or fails.
func CreateTempContainer(ctx context.Context, client *StorageClient, config *TestConfig, descriptor string, headers http.Header) string {
	GinkgoHelper()

	name := GenerateContainerName(config, descriptor)

	// Register cleanup first: even a half-created container gets
	// best-effort deletion.
	DeferCleanup(func(cleanupCtx context.Context) {
		GinkgoWriter.Printf("Cleaning up container: %s\n", name)
		client.ForceDeleteContainers(cleanupCtx, []string{name})
	})

	status, err := client.CreateContainer(ctx, name, headers)
	if err != nil {
		Fail(fmt.Sprintf("creating temp container: %v", err))
	}

	GinkgoWriter.Printf("Created container %s (status %d)\n", name, status)

	return name
}

// CreateImageWithCleanup registers a minimal image record and schedules
// its deletion.
func CreateImageWithCleanup(ctx context.Context, client *ImagesClient, config *TestConfig) *Image {
	GinkgoHelper()

	image, err := client.CreateImage(ctx, CreateImageRequest{
		Name:            GenerateRandomName("image"),
		ContainerFormat: "bare",
		DiskFormat:      "raw",
	})
	if err != nil {
		Fail(fmt.Sprintf("creating image: %v", err))
	}

	GinkgoWriter.Printf("Created image with ID: %s\n", image.ID)

	DeferCleanup(func(cleanupCtx context.Context) {
		GinkgoWriter.Printf("Cleaning up image: %s\n", image.ID)

		if err := client.DeleteImage(cleanupCtx, image.ID); err != nil {
			GinkgoWriter.Printf("Warning: failed to delete image %s: %v\n", image.ID, err)
		}
	})

	return image
}
