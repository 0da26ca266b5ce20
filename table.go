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

// Package robinhood implements an in-memory associative container as an
// open-addressing hash table using Robin-Hood linear probing with
// backward-shift deletion. See https://en.wikipedia.org/wiki/Hash_table#Robin_Hood_hashing
// and https://cs.uwaterloo.ca/research/tr/1986/CS-86-14.pdf for background.
//
// Robin-Hood hashing keeps probe-sequence length variance low by having an
// entry being inserted displace ("steal from the rich") any entry it
// encounters that is currently closer to its own ideal slot than the
// incoming entry is to its own. Maintaining that ordering invariant lets
// lookups terminate early: once a lookup walks past an entry whose probe
// distance is less than its own current distance, the sought key cannot be
// present (it would have displaced that entry on insertion).
//
// A Table is NOT goroutine-safe. "Concurrent modification" in this package
// means re-entrant mutation of a Table from within a callback passed to one
// of its iteration or bulk operations; it is detected (via a generation
// counter) but not prevented.
package robinhood

const debug = false

// generationSkip is added to Table.generation on every structural mutation.
// It is large enough that index_minus_generation + generation rockets past
// any realistic slots length on an iterator's next advance, which moves the
// cost of invalidation detection to the (cold) loop-termination check
// instead of every single step.
const generationSkip = uint64(1) << 32

// Table is an unordered map from keys of type K to values of type V,
// implemented as an open-addressing hash table using Robin-Hood probing.
//
// Both K and V are constrained to comparable: K because the table must be
// able to test key equality on collision, and V because Equal/Hash need to
// compare/hash values too and Go has no separate user-definable Eq/Hashable
// trait to bound V with instead (see SPEC_FULL.md's design notes).
type Table[K comparable, V comparable] struct {
	slots      []slot[K, V]
	size       uint64
	mask       uint64
	generation uint64
	keyHash    HashFunc[K]
	valueHash  HashFunc[V]
	strategy   SizingStrategy

	pendingCapacity int
}

// New constructs an empty Table. keyHash is required; valueHash is required
// only by Hash (it may be nil if the caller never calls Hash).
func New[K comparable, V comparable](keyHash HashFunc[K], valueHash HashFunc[V], opts ...TableOption[K, V]) *Table[K, V] {
	if keyHash == nil {
		panic("robinhood: keyHash must not be nil")
	}
	t := &Table[K, V]{
		slots:     make([]slot[K, V], 1),
		mask:      0,
		keyHash:   keyHash,
		valueHash: valueHash,
		strategy:  AggressiveSizing{},
	}
	for _, opt := range opts {
		opt.apply(t)
	}
	if t.pendingCapacity > 0 {
		if err := t.EnsureCapacity(t.pendingCapacity); err != nil {
			panic(err)
		}
	}
	t.pendingCapacity = 0
	t.checkInvariants()
	return t
}

// Item is one key/value pair, used by FromItems.
type Item[K comparable, V comparable] struct {
	Key   K
	Value V
}

// FromItems constructs a Table pre-sized for len(items), then inserts each
// item in order (later duplicates win, matching Set's overwrite semantics).
func FromItems[K comparable, V comparable](items []Item[K, V], keyHash HashFunc[K], valueHash HashFunc[V], opts ...TableOption[K, V]) *Table[K, V] {
	opts = append(append([]TableOption[K, V]{}, opts...), WithCapacityHint[K, V](len(items)))
	t := New(keyHash, valueHash, opts...)
	for _, it := range items {
		t.Set(it.Key, it.Value)
	}
	return t
}

// Len returns the number of entries in the table.
func (t *Table[K, V]) Len() int { return int(t.size) }

// IsEmpty reports whether the table has no entries.
func (t *Table[K, V]) IsEmpty() bool { return t.size == 0 }

// Capacity returns the real (maximum live-entry) capacity at the table's
// current raw size.
func (t *Table[K, V]) Capacity() int { return int(t.realCapacity()) }

// RawCapacity returns the physical slot-array length.
func (t *Table[K, V]) RawCapacity() int { return len(t.slots) }

func (t *Table[K, V]) realCapacity() uint64 {
	return t.strategy.RealOfRaw(uint64(len(t.slots)))
}

func (t *Table[K, V]) bumpGeneration() {
	t.generation += generationSkip
}

// EnsureCapacity grows the table, if necessary, so that it can hold at least
// n entries without a subsequent resize. It returns ErrInvalidArgument if n
// is negative.
func (t *Table[K, V]) EnsureCapacity(n int) error {
	if n < 0 {
		return invalidCapacityError(n)
	}
	need := t.strategy.RawOfReal(uint64(n))
	if need < MinRawCapacity && n > 0 {
		need = MinRawCapacity
	}
	if need > uint64(len(t.slots)) {
		t.growTo(need)
	}
	return nil
}

// ensureRoomForInsert grows the table, if necessary, to make room for one
// more entry. It implements the sizing strategy's documented bootstrap
// exception: a brand-new table starts with a 1-slot array (RawOfReal(0) ==
// 1) and unconditionally grows to MinRawCapacity on its first insertion,
// rather than growing by doubling from 1.
func (t *Table[K, V]) ensureRoomForInsert() {
	if uint64(len(t.slots)) < MinRawCapacity {
		t.growTo(MinRawCapacity)
		return
	}
	if t.size >= t.realCapacity() {
		t.grow()
	}
}

func (t *Table[K, V]) grow() {
	newRaw := uint64(len(t.slots)) * 2
	if newRaw < MinRawCapacity {
		newRaw = MinRawCapacity
	}
	t.growTo(newRaw)
}

// growTo reallocates the slot array to newRaw slots (a power of two at least
// as large as the current one) and reinserts every live entry using the
// simplified grow-path insertion (growInsertHelper), which skips the
// rich/poor comparison: since the source is already in Robin-Hood order and
// the destination starts empty, placement reduces to "first empty slot at or
// after the ideal slot". To make the new layout deterministic, entries are
// replayed starting from an anchor slot whose probe distance is zero (if one
// exists), walking the source circularly from there.
func (t *Table[K, V]) growTo(newRaw uint64) {
	oldSlots := t.slots
	oldMask := t.mask
	oldSize := t.size
	n := uint64(len(oldSlots))

	newSlots := make([]slot[K, V], newRaw)
	newMask := newRaw - 1

	anchor := uint64(0)
	for idx := uint64(0); idx < n; idx++ {
		s := &oldSlots[idx]
		if !s.empty() && probeDistance(oldMask, idx, s.hash) == 0 {
			anchor = idx
			break
		}
	}

	for step := uint64(0); step < n; step++ {
		idx := (anchor + step) & oldMask
		s := &oldSlots[idx]
		if s.empty() {
			continue
		}
		growInsertHelper(newSlots, newMask, s.hash, s.key, s.value)
	}

	t.slots = newSlots
	t.mask = newMask
	if debug && t.size != oldSize {
		panic("robinhood: size changed across growTo")
	}
	t.bumpGeneration()
}

func growInsertHelper[K comparable, V comparable](slots []slot[K, V], mask, h uint64, key K, value V) {
	i := h & mask
	for !slots[i].empty() {
		i = (i + 1) & mask
	}
	slots[i] = slot[K, V]{hash: h, key: key, value: value}
}

// insertOutcome describes what Table.insert did.
type insertOutcome int

const (
	insertedNew insertOutcome = iota
	replacedExisting
	rejectedDuplicate
)

// insert is the single Robin-Hood insertion routine shared by Set, Add,
// MaybeSet, and GetOrAdd. If overwrite is false and the key is already
// present, the table is left unchanged and rejectedDuplicate is returned.
//
// The existence check runs before ensureRoomForInsert, not after: a
// value-only overwrite of an already-present key must never trigger a grow
// (and the generation bump that comes with it), even when the table is
// already at its load-factor limit, since no new entry is being added.
func (t *Table[K, V]) insert(key K, value V, overwrite bool) insertOutcome {
	h := finalizeHash(t.keyHash(key))

	if i, ok := t.findIndexWithHash(h, key); ok {
		if !overwrite {
			return rejectedDuplicate
		}
		t.slots[i].value = value
		// Value-only update: iterators are not invalidated.
		return replacedExisting
	}

	t.ensureRoomForInsert()

	i := h & t.mask
	dist := uint64(0)

	for {
		s := &t.slots[i]
		if s.empty() {
			*s = slot[K, V]{hash: h, key: key, value: value}
			t.size++
			t.bumpGeneration()
			t.checkInvariants()
			return insertedNew
		}
		entryDist := probeDistance(t.mask, i, s.hash)
		if entryDist < dist {
			h, key, value, s.hash, s.key, s.value = s.hash, s.key, s.value, h, key, value
			dist = entryDist
		}
		i = (i + 1) & t.mask
		dist++
	}
}

// Set inserts key/value, overwriting any existing value for key. Inserting a
// new key invalidates live iterators; overwriting an existing key's value
// does not.
func (t *Table[K, V]) Set(key K, value V) {
	t.insert(key, value, true)
}

// Add inserts key/value, failing with ErrDuplicate if key is already
// present (the table is left unchanged in that case).
func (t *Table[K, V]) Add(key K, value V) error {
	if t.insert(key, value, false) == rejectedDuplicate {
		return duplicateError(key)
	}
	return nil
}

// MaybeSet inserts key/value only if key is not already present. It reports
// true if the insertion happened.
func (t *Table[K, V]) MaybeSet(key K, value V) bool {
	return t.insert(key, value, false) == insertedNew
}

// GetOrAdd returns the value for key if present; otherwise it calls factory,
// inserts the result under key, and returns it.
func (t *Table[K, V]) GetOrAdd(key K, factory func() V) V {
	if v, ok := t.MaybeGet(key); ok {
		return v
	}
	value := factory()
	t.insert(key, value, false)
	return value
}

// findIndex locates key, returning its physical slot index and true, or
// (0, false) if absent. This implements the spec's early-exit Robin-Hood
// lookup: once a slot with a smaller probe distance than the sought key's
// current distance is found, the key cannot be present (it would have
// displaced that slot on insertion).
func (t *Table[K, V]) findIndex(key K) (uint64, bool) {
	return t.findIndexWithHash(finalizeHash(t.keyHash(key)), key)
}

// findIndexWithHash is findIndex for a caller that has already finalized
// key's hash (insert reuses it instead of hashing key twice).
func (t *Table[K, V]) findIndexWithHash(h uint64, key K) (uint64, bool) {
	i := h & t.mask
	dist := uint64(0)

	for {
		s := &t.slots[i]
		if s.empty() {
			return 0, false
		}
		if s.hash == h && s.key == key {
			return i, true
		}
		entryDist := probeDistance(t.mask, i, s.hash)
		if entryDist < dist {
			return 0, false
		}
		i = (i + 1) & t.mask
		dist++
	}
}

// Get returns the value for key, or ErrKeyNotFound if absent.
func (t *Table[K, V]) Get(key K) (V, error) {
	if i, ok := t.findIndex(key); ok {
		return t.slots[i].value, nil
	}
	var zero V
	return zero, keyNotFoundError(key)
}

// MaybeGet returns the value for key and true, or the zero value and false
// if key is absent.
func (t *Table[K, V]) MaybeGet(key K) (V, bool) {
	if i, ok := t.findIndex(key); ok {
		return t.slots[i].value, true
	}
	var zero V
	return zero, false
}

// GetItem returns the stored key (which compares equal to, but may not be
// identical to, the argument) and value, or ErrKeyNotFound if absent.
func (t *Table[K, V]) GetItem(key K) (K, V, error) {
	if i, ok := t.findIndex(key); ok {
		s := &t.slots[i]
		return s.key, s.value, nil
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, keyNotFoundError(key)
}

// ContainsKey reports whether key is present.
func (t *Table[K, V]) ContainsKey(key K) bool {
	_, ok := t.findIndex(key)
	return ok
}

// remove deletes key if present, restoring the Robin-Hood ordering invariant
// by backward-shifting subsequent displaced entries into the vacated slot
// (spec.md §4.6) instead of rehashing anything. It reports whether key was
// present.
func (t *Table[K, V]) remove(key K) bool {
	i, ok := t.findIndex(key)
	if !ok {
		return false
	}

	t.size--
	t.bumpGeneration()

	cur := i
	for {
		next := (cur + 1) & t.mask
		ns := &t.slots[next]
		if ns.empty() {
			break
		}
		if ns.hash&t.mask == next {
			// ns already sits at its ideal slot: it has probe distance 0
			// and must not be shifted back, or a future lookup for it would
			// stop one slot early.
			break
		}
		t.slots[cur] = *ns
		cur = next
	}
	t.slots[cur].clear()

	t.checkInvariants()
	return true
}

// Remove deletes key, failing with ErrKeyNotFound if key is absent.
func (t *Table[K, V]) Remove(key K) error {
	if !t.remove(key) {
		return keyNotFoundError(key)
	}
	return nil
}

// MaybeRemove deletes key if present, reporting whether it was present.
func (t *Table[K, V]) MaybeRemove(key K) bool {
	return t.remove(key)
}

// Clear removes all entries, keeping the current raw capacity.
func (t *Table[K, V]) Clear() {
	for i := range t.slots {
		t.slots[i].clear()
	}
	t.size = 0
	t.bumpGeneration()
}

// Clone returns an independent copy of t. If reserve > 0, the clone is
// pre-sized to hold at least reserve additional entries beyond its current
// size without needing to grow. Mutating the clone never affects t, and vice
// versa, because K and V are both comparable (value types under copy).
func (t *Table[K, V]) Clone(reserve int) *Table[K, V] {
	newRaw := uint64(len(t.slots))
	if reserve > 0 {
		need := t.strategy.RawOfReal(t.size + uint64(reserve))
		if need > newRaw {
			newRaw = need
		}
	}

	clone := &Table[K, V]{
		slots:     make([]slot[K, V], newRaw),
		mask:      newRaw - 1,
		size:      t.size,
		keyHash:   t.keyHash,
		valueHash: t.valueHash,
		strategy:  t.strategy,
	}

	if newRaw == uint64(len(t.slots)) {
		// Same physical size: the existing layout is already a valid
		// Robin-Hood arrangement for that size, so a straight copy is both
		// correct and cheaper than reinserting every entry.
		copy(clone.slots, t.slots)
	} else {
		n := uint64(len(t.slots))
		anchor := uint64(0)
		for idx := uint64(0); idx < n; idx++ {
			s := &t.slots[idx]
			if !s.empty() && probeDistance(t.mask, idx, s.hash) == 0 {
				anchor = idx
				break
			}
		}
		for step := uint64(0); step < n; step++ {
			idx := (anchor + step) & t.mask
			s := &t.slots[idx]
			if s.empty() {
				continue
			}
			growInsertHelper(clone.slots, clone.mask, s.hash, s.key, s.value)
		}
	}

	clone.checkInvariants()
	return clone
}

// checkInvariants re-verifies I1-I6 when debug is true. It is not run in
// production builds; flip the debug constant at the top of this file when
// diagnosing a suspected placement bug.
func (t *Table[K, V]) checkInvariants() {
	if !debug {
		return
	}
	if t.mask != uint64(len(t.slots))-1 {
		panic("robinhood: mask != len(slots)-1")
	}
	if t.size > 0 && uint64(len(t.slots)) < MinRawCapacity {
		panic("robinhood: non-empty table with raw capacity below MinRawCapacity")
	}
	if t.size > t.realCapacity() {
		panic("robinhood: size exceeds real capacity")
	}
	var counted uint64
	for i := range t.slots {
		s := &t.slots[i]
		if s.empty() {
			continue
		}
		counted++
		if s.hash&(uint64(1)<<63) == 0 {
			panic("robinhood: occupied slot has unset finalized-hash high bit")
		}
		ideal := s.hash & t.mask
		// Walk forward from ideal to i: no empty slot may appear, and every
		// entry passed must be at least as far from its own ideal slot as this
		// entry would be at that slot (I5), which is what makes the early exit
		// in findIndexWithHash correct.
		for j := ideal; ; j = (j + 1) & t.mask {
			js := &t.slots[j]
			if js.empty() {
				panic("robinhood: empty slot between ideal slot and occupied entry")
			}
			if probeDistance(t.mask, j, js.hash) < (j-ideal)&t.mask {
				panic("robinhood: entry on probe path is closer to its ideal slot than the probing entry")
			}
			if j == uint64(i) {
				break
			}
		}
	}
	if counted != t.size {
		panic("robinhood: size does not match occupied-slot count")
	}
}
