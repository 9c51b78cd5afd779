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

// overcast-capabilities resolves the effective capability set of a
// deployment from the same environment surface the test suites read,
// and reports which gated suites would run. Useful for debugging why a
// CI run skipped more than expected.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/overcast-qa/overcast/pkg/features"
	"github.com/overcast-qa/overcast/test/api"
)

func main() {
	live := pflag.Bool("live", false, "force live capability discovery regardless of USE_LIVE_FEATURES")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [required-capability ...]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if err := run(*live, pflag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(live bool, required []string) error {
	config, err := api.LoadTestConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var discover features.DiscoverFunc

	if live || config.UseLiveFeatures {
		access, err := api.NewAuthClient(config).GetAccessData(ctx)
		if err != nil {
			return err
		}

		storage := api.NewStorageClient(config, access.StorageURL, access.AuthToken)
		discover = storage.Capabilities
	}

	resolved, err := features.Resolve(ctx, config.Features, config.ExcludedFeatures, discover)
	if err != nil {
		return err
	}

	fmt.Printf("effective capabilities: %s\n", resolved)

	if len(required) == 0 {
		return nil
	}

	if reason, skip := features.SkipReason(resolved, required...); skip {
		fmt.Printf("verdict: skip (%s)\n", reason)
		os.Exit(2)
	}

	fmt.Printf("verdict: run (%s present)\n", strings.Join(required, ", "))

	return nil
}
