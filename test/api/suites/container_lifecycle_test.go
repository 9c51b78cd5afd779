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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/overcast-qa/overcast/test/api"
)

var _ = Describe("Object Storage Containers", func() {
	var storage *api.StorageClient

	BeforeEach(func() {
		storage = api.NewStorageFixture(ctx, config)
	})

	Context("When creating a temporary container", func() {
		It("should create the container and register cleanup", func() {
			name := api.CreateTempContainer(ctx, storage, config, "lifecycle", nil)

			_, status, err := storage.HeadContainer(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(http.StatusNoContent))
		})

		It("should create the container with metadata headers", func() {
			headers := http.Header{}
			headers.Set("X-Container-Meta-Purpose", "functional-testing")

			name := api.CreateTempContainer(ctx, storage, config, "metadata", headers)

			containerHeaders, status, err := storage.HeadContainer(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(containerHeaders.Get("X-Container-Meta-Purpose")).To(Equal("functional-testing"))
		})

		It("should delete contained objects during cleanup", func() {
			name := api.CreateTempContainer(ctx, storage, config, "populated", nil)

			objectName := api.GenerateObjectName(config)
			err := storage.CreateObject(ctx, name, objectName, []byte("overcast test data"), nil)
			Expect(err).NotTo(HaveOccurred())

			objects, err := storage.ListObjectNames(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(objects).To(ContainElement(objectName))
			// Cleanup registered by CreateTempContainer empties the
			// container before deleting it.
		})
	})

	Context("When a capability is required", func() {
		It("should run tempurl scenarios only where supported", func() {
			api.RequireFeatures(ctx, config, storage, "tempurl")

			headers := http.Header{}
			headers.Set("X-Container-Meta-Temp-URL-Key", api.GenerateRandomName("key"))

			name := api.CreateTempContainer(ctx, storage, config, "tempurl", headers)

			_, status, err := storage.HeadContainer(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(http.StatusNoContent))
		})

		It("should run bulk delete scenarios only where supported", func() {
			api.RequireFeatures(ctx, config, storage, "bulk_delete")

			name := api.CreateTempContainer(ctx, storage, config, "bulk", nil)

			for range 3 {
				err := storage.CreateObject(ctx, name, api.GenerateObjectName(config), []byte("x"), nil)
				Expect(err).NotTo(HaveOccurred())
			}

			objects, err := storage.ListObjectNames(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(objects).To(HaveLen(3))
		})
	})
})
