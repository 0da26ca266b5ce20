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
	"fmt"
	"math/bits"
	"strings"
)

// Each calls f for every entry in t, in physical slot order, stopping early
// if f returns false. It returns ErrContainerChanged if f re-entrantly
// performs a structural mutation of t (inserting a new key, removing a key,
// Clear, or any bulk rebuild) during the scan; a value-only Set does not
// trigger this.
func (t *Table[K, V]) Each(f func(key K, value V) bool) error {
	core := newIterCore(t)
	for {
		idx, ok, err := core.advance()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		s := &core.slots[idx]
		if !f(s.key, s.value) {
			return nil
		}
	}
}

// Find returns the value of the first entry (in physical slot order) for
// which p returns true, and true; or the zero value and false if none does.
func (t *Table[K, V]) Find(p func(key K, value V) bool) (V, bool) {
	var found V
	var ok bool
	_ = t.Each(func(k K, v V) bool {
		if p(k, v) {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// FindItem is like Find but also returns the matching key.
func (t *Table[K, V]) FindItem(p func(key K, value V) bool) (K, V, bool) {
	var foundK K
	var foundV V
	var ok bool
	_ = t.Each(func(k K, v V) bool {
		if p(k, v) {
			foundK, foundV, ok = k, v, true
			return false
		}
		return true
	})
	return foundK, foundV, ok
}

// Filter returns a new Table containing only the entries for which p
// returns true. It starts small and grows as needed, exactly like building
// up the table by hand with repeated Set calls.
func (t *Table[K, V]) Filter(p func(key K, value V) bool) *Table[K, V] {
	dst := New(t.keyHash, t.valueHash, WithSizingStrategy[K, V](t.strategy))
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		if p(s.key, s.value) {
			dst.Set(s.key, s.value)
		}
	}
	return dst
}

// Map applies f to every entry of t and returns a new table of the results,
// keeping the same keys. It is a free function, not a method, because Go
// forbids a method from introducing a type parameter (V2) beyond those
// already bound by its receiver.
func Map[K comparable, V comparable, V2 comparable](t *Table[K, V], f func(key K, value V) V2, valueHash HashFunc[V2]) *Table[K, V2] {
	dst := New(t.keyHash, valueHash, WithSizingStrategy[K, V2](t.strategy))
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		dst.Set(s.key, f(s.key, s.value))
	}
	return dst
}

// MapItems applies f to every entry of t and returns a new table built from
// the resulting (key, value) pairs. Because f may map distinct source keys
// to the same destination key, MapItems reinserts through the full Set path
// (last writer for a colliding destination key wins, in physical source
// slot order) rather than the grow-only fast path used internally by Clone
// and growTo.
func MapItems[K comparable, V comparable, K2 comparable, V2 comparable](t *Table[K, V], f func(key K, value V) (K2, V2), keyHash HashFunc[K2], valueHash HashFunc[V2]) *Table[K2, V2] {
	dst := New(keyHash, valueHash, WithCapacityHint[K2, V2](t.Len()))
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		k2, v2 := f(s.key, s.value)
		dst.Set(k2, v2)
	}
	return dst
}

// FilterNone returns a new table containing only the entries of t whose
// value is Present, with the Maybe wrapper stripped.
func FilterNone[K comparable, V comparable](t *Table[K, Maybe[V]], valueHash HashFunc[V]) *Table[K, V] {
	dst := New(t.keyHash, valueHash, WithSizingStrategy[K, V](t.strategy))
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		if s.value.Present {
			dst.Set(s.key, s.value.Value)
		}
	}
	return dst
}

// Equal reports whether t and other contain the same entries (compared with
// ==, not by pointer identity). This is an intentionally asymmetric scan:
// the size check first rules out other having any extra entries, so only
// t's occupied slots need to be looked up in other.
func (t *Table[K, V]) Equal(other *Table[K, V]) bool {
	if t.size != other.size {
		return false
	}
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		v, ok := other.MaybeGet(s.key)
		if !ok || v != s.value {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of t's contents: the per-slot
// value hash, rotated left by bits taken from that slot's finalized key
// hash, summed across all occupied slots. Rotating by the key's bits before
// combining means swapping two keys' values changes the result, even though
// the combine itself (addition) is commutative across slots.
//
// valueHash must have been supplied to New/FromItems (it is only needed by
// Hash, so a nil valueHash is otherwise tolerated); Hash panics if it is
// nil.
func (t *Table[K, V]) Hash() uint64 {
	if t.valueHash == nil {
		panic("robinhood: Hash called on a Table constructed with a nil valueHash")
	}
	var acc uint64
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		rot := int(s.hash & 63)
		acc += bits.RotateLeft64(t.valueHash(s.value), rot)
	}
	return acc
}

// String renders t as "{k => v, k => v, ...}" in physical slot order (an
// unspecified, non-canonical order, like iteration).
func (t *Table[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v => %v", s.key, s.value)
	}
	sb.WriteByte('}')
	return sb.String()
}
