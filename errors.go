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
	"errors"
	"fmt"
)

// Sentinel errors. Callers should compare against these with errors.Is, not
// with ==, since Get/Remove/Add wrap them with the offending key.
var (
	ErrKeyNotFound      = errors.New("robinhood: key not found")
	ErrDuplicate        = errors.New("robinhood: duplicate key")
	ErrContainerChanged = errors.New("robinhood: container changed during iteration")
	ErrInvalidArgument  = errors.New("robinhood: invalid argument")
)

func keyNotFoundError[K any](key K) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}

func duplicateError[K any](key K) error {
	return fmt.Errorf("%w: %v", ErrDuplicate, key)
}

func invalidCapacityError(n int) error {
	return fmt.Errorf("%w: capacity %d must be >= 0", ErrInvalidArgument, n)
}
