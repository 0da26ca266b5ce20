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

// emptySentinel is the finalized-hash value reserved to mean "this slot holds
// no entry". No finalized hash is ever allowed to equal it, which is what
// lets a table test occupancy with a single comparison instead of a parallel
// bitmap.
const emptySentinel uint64 = 0

// finalizeMultiplier is a fixed, odd 64-bit constant chosen for its avalanche
// behavior. Users commonly hand us low-entropy hashes (small integers,
// pointer identity); without this step the low bits used for indexing would
// cluster badly.
const finalizeMultiplier uint64 = 0xc4ceb9fe1a85ec53

// HashFunc is the caller-supplied hash function for a key (or value) type.
// Go has no built-in Hashable trait, so this function value is how callers
// supply one; see the "bounded generics / capability bounds" note in
// SPEC_FULL.md for why this replaces a trait bound.
type HashFunc[K any] func(key K) uint64

// finalizeHash post-processes a user-supplied hash so that it (a) diffuses
// weak inputs and (b) can never equal emptySentinel. OR-ing in the sign bit
// guarantees non-zero unconditionally and for free.
func finalizeHash(h uint64) uint64 {
	h *= finalizeMultiplier
	return h | (1 << 63)
}
