// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package robinhood

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFillByIndex concurrently computes fn(i) for every i in [0, n),
// partitioning the range into contiguous per-goroutine chunks the way
// matrixorigin/matrixone's concurrent.ThreadPoolExecutor.Execute partitions
// its workload across an errgroup.Group. It is the "black-box parallel fill
// by index" primitive AsyncMap and AsyncFilter are specified against: the
// rest of this package's core (table.go, iterator.go) makes no assumption
// about how it is implemented, sequentially or otherwise.
//
// The caller must not mutate the Table that fn closes over until
// parallelFillByIndex returns; doing so is undefined behavior, same as any
// other re-entrant mutation from inside a callback, and is not detected here
// (unlike Each, there is no single generation counter a background goroutine
// could consult mid-flight without introducing its own synchronization).
func parallelFillByIndex(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(ctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// AsyncMap is Map, but computes f for every slot concurrently via
// parallelFillByIndex. Empty slots stay empty without calling f. The
// resulting table shares t's size and mask (the source layout is reused
// exactly; only the stored values change) and starts at a fresh generation.
func AsyncMap[K comparable, V comparable, V2 comparable](ctx context.Context, t *Table[K, V], f func(key K, value V) (V2, error), valueHash HashFunc[V2]) (*Table[K, V2], error) {
	newSlots := make([]slot[K, V2], len(t.slots))

	err := parallelFillByIndex(ctx, len(t.slots), func(ctx context.Context, i int) error {
		s := &t.slots[i]
		if s.empty() {
			return nil
		}
		v2, err := f(s.key, s.value)
		if err != nil {
			return err
		}
		newSlots[i] = slot[K, V2]{hash: s.hash, key: s.key, value: v2}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Table[K, V2]{
		slots:     newSlots,
		size:      t.size,
		mask:      t.mask,
		keyHash:   t.keyHash,
		valueHash: valueHash,
		strategy:  t.strategy,
	}, nil
}

// AsyncFilter is Filter, but computes p for every occupied slot concurrently
// via parallelFillByIndex, then counts matches and allocates the
// destination table exactly once before filling it sequentially (the
// sequential fill keeps the simple Robin-Hood insertion path; only the
// predicate evaluation is parallelized). If every occupied slot matches,
// AsyncFilter short-circuits and returns t itself.
func AsyncFilter[K comparable, V comparable](ctx context.Context, t *Table[K, V], p func(key K, value V) (bool, error)) (*Table[K, V], error) {
	matches := make([]bool, len(t.slots))

	err := parallelFillByIndex(ctx, len(t.slots), func(ctx context.Context, i int) error {
		s := &t.slots[i]
		if s.empty() {
			return nil
		}
		ok, err := p(s.key, s.value)
		if err != nil {
			return err
		}
		matches[i] = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	var matched, occupied uint64
	for i := range t.slots {
		if t.slots[i].empty() {
			continue
		}
		occupied++
		if matches[i] {
			matched++
		}
	}
	if matched == occupied {
		return t, nil
	}

	dst := New(t.keyHash, t.valueHash, WithSizingStrategy[K, V](t.strategy), WithCapacityHint[K, V](int(matched)))
	for i := range t.slots {
		if !matches[i] {
			continue
		}
		s := &t.slots[i]
		dst.Set(s.key, s.value)
	}
	return dst, nil
}
