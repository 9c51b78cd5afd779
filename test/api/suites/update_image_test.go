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

var _ = Describe("Image Update Semantics", func() {
	var images *api.ImagesClient

	BeforeEach(func() {
		images = api.NewImagesFixture(ctx, config)
	})

	Context("When patching an image's additional properties", func() {
		It("should add a new additional property", func() {
			propName := "user_prop"
			propValue := api.GenerateRandomName("new_prop_value")

			image := api.CreateImageWithCleanup(ctx, images, config)

			response, err := images.UpdateImage(ctx, image.ID, api.ImagePatch{
				Add: map[string]string{propName: propValue},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(response.Image.AdditionalProperties).To(HaveKeyWithValue(propName, propValue))
		})

		It("should remove an additional property", func() {
			propName := "user_prop"
			propValue := api.GenerateRandomName("new_prop_value")

			image := api.CreateImageWithCleanup(ctx, images, config)

			response, err := images.UpdateImage(ctx, image.ID, api.ImagePatch{
				Add: map[string]string{propName: propValue},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))

			response, err = images.UpdateImage(ctx, image.ID, api.ImagePatch{
				Remove: []string{propName},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(response.Image.AdditionalProperties).NotTo(HaveKey(propName))
		})

		It("should replace the value of an additional property", func() {
			propName := "user_prop"
			propValue := api.GenerateRandomName("new_prop_value")
			updatedPropValue := api.GenerateRandomName("updated_prop_value")

			image := api.CreateImageWithCleanup(ctx, images, config)

			response, err := images.UpdateImage(ctx, image.ID, api.ImagePatch{
				Add: map[string]string{propName: propValue},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))

			response, err = images.UpdateImage(ctx, image.ID, api.ImagePatch{
				Replace: map[string]string{propName: updatedPropValue},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(response.Image.AdditionalProperties).To(HaveKeyWithValue(propName, updatedPropValue))
		})
	})
})
