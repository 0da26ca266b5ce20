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

// TableOption configures a Table at construction time. Options are applied
// in order, and a later option of the same kind overrides an earlier one.
// WithCapacityHint only records a hint consumed once, after every option has
// run, so it always sees the final sizing strategy wherever it appears.
type TableOption[K comparable, V comparable] interface {
	apply(t *Table[K, V])
}

type sizingOption[K comparable, V comparable] struct {
	strategy SizingStrategy
}

func (o sizingOption[K, V]) apply(t *Table[K, V]) {
	t.strategy = o.strategy
}

// WithSizingStrategy selects the load-factor policy a Table uses to decide
// when to grow. The default is AggressiveSizing.
func WithSizingStrategy[K comparable, V comparable](s SizingStrategy) TableOption[K, V] {
	return sizingOption[K, V]{s}
}

type capacityOption[K comparable, V comparable] struct {
	n int
}

func (o capacityOption[K, V]) apply(t *Table[K, V]) {
	t.pendingCapacity = o.n
}

// WithCapacityHint pre-sizes a new Table to hold at least n entries without
// needing to grow.
func WithCapacityHint[K comparable, V comparable](n int) TableOption[K, V] {
	return capacityOption[K, V]{n}
}
