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

// Maybe is this package's Option<T>: Go has no built-in optional-value type,
// so FilterNone (and anything else that needs to say "no value here" without
// removing a map entry) uses this shape, the same {value, presence-flag}
// pattern as the standard library's database/sql.NullString and friends.
type Maybe[T comparable] struct {
	Value   T
	Present bool
}

// Some wraps a present value.
func Some[T comparable](v T) Maybe[T] { return Maybe[T]{Value: v, Present: true} }

// None represents an absent value.
func None[T comparable]() Maybe[T] { return Maybe[T]{} }
