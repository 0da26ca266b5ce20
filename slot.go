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

// slot holds one table entry. A slot is empty iff hash == emptySentinel; key
// and value must not be read in that state even though Go zero-initializes
// them for us.
type slot[K comparable, V comparable] struct {
	hash  uint64
	key   K
	value V
}

func (s *slot[K, V]) empty() bool {
	return s.hash == emptySentinel
}

func (s *slot[K, V]) clear() {
	*s = slot[K, V]{}
}

// probeDistance is (physicalIndex - idealSlot(hash)) & mask, the number of
// steps this entry has been displaced from the slot its hash maps to.
func probeDistance(mask, physicalIndex, hash uint64) uint64 {
	return (physicalIndex - (hash & mask)) & mask
}
