// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opsctl/control/internal/paths"
)

// maxConcurrentMetaLookups bounds how many descriptor files status/check
// read at once, the same way the teacher bounds concurrent trace work.
const maxConcurrentMetaLookups = 8

// GetMetaBatch computes Meta for every name concurrently, preserving the
// input order in the result. Each lookup only touches its own files, so
// there is no cross-goroutine state beyond the bounded worker pool.
func GetMetaBatch(p paths.Policy, names []string) []Meta {
	metas := make([]Meta, len(names))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(maxConcurrentMetaLookups)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			metas[i] = GetMeta(p, name)
			return nil
		})
	}
	_ = g.Wait()

	return metas
}
