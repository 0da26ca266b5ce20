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

// iterCore is the shared skip-empty cursor driver behind Keys, Values, and
// Items. cursorBase is stored such that, at any point, the logical cursor is
// cursorBase + table.generation; the two are added with ordinary uint64
// wraparound, which is exactly the trick that makes a single generation bump
// invalidate every live iterator without each of them needing to poll a
// "changed" flag on every step.
type iterCore[K comparable, V comparable] struct {
	table      *Table[K, V]
	slots      []slot[K, V]
	cursorBase uint64
}

func newIterCore[K comparable, V comparable](t *Table[K, V]) iterCore[K, V] {
	return iterCore[K, V]{
		table: t,
		slots: t.slots,
		// cursorBase + t.generation must equal 0 right now, so cursorBase is
		// the unsigned negation of t.generation.
		cursorBase: -t.generation,
	}
}

// advance returns the index of the next occupied slot, or ok=false at the
// natural end of iteration, or ErrContainerChanged if a structural mutation
// was observed.
func (c *iterCore[K, V]) advance() (index uint64, ok bool, err error) {
	for {
		cursor := c.cursorBase + c.table.generation
		if cursor >= uint64(len(c.slots)) {
			if cursor >= generationSkip {
				return 0, false, ErrContainerChanged
			}
			return 0, false, nil
		}
		c.cursorBase++
		if !c.slots[cursor].empty() {
			return cursor, true, nil
		}
	}
}

// keysIter iterates the keys of a Table in physical slot order (unspecified
// across tables/resizes, stable within one between mutations).
type keysIter[K comparable, V comparable] struct{ core iterCore[K, V] }

// Keys returns an iterator over t's keys. The iterator is invalidated (its
// Next returns ErrContainerChanged) by any structural mutation of t made
// after the iterator was created; value-only Set calls do not invalidate it.
func (t *Table[K, V]) Keys() *keysIter[K, V] {
	return &keysIter[K, V]{core: newIterCore(t)}
}

func (it *keysIter[K, V]) Next() (K, bool, error) {
	idx, ok, err := it.core.advance()
	if err != nil || !ok {
		var zero K
		return zero, false, err
	}
	return it.core.slots[idx].key, true, nil
}

// valuesIter iterates the values of a Table in physical slot order.
type valuesIter[K comparable, V comparable] struct{ core iterCore[K, V] }

// Values returns an iterator over t's values; see Keys for invalidation
// semantics.
func (t *Table[K, V]) Values() *valuesIter[K, V] {
	return &valuesIter[K, V]{core: newIterCore(t)}
}

func (it *valuesIter[K, V]) Next() (V, bool, error) {
	idx, ok, err := it.core.advance()
	if err != nil || !ok {
		var zero V
		return zero, false, err
	}
	return it.core.slots[idx].value, true, nil
}

// itemsIter iterates the key/value pairs of a Table in physical slot order.
type itemsIter[K comparable, V comparable] struct{ core iterCore[K, V] }

// Items returns an iterator over t's key/value pairs; see Keys for
// invalidation semantics.
func (t *Table[K, V]) Items() *itemsIter[K, V] {
	return &itemsIter[K, V]{core: newIterCore(t)}
}

func (it *itemsIter[K, V]) Next() (K, V, bool, error) {
	idx, ok, err := it.core.advance()
	if err != nil || !ok {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false, err
	}
	s := &it.core.slots[idx]
	return s.key, s.value, true, nil
}
