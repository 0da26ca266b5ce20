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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizingRawOfRealZero(t *testing.T) {
	for _, s := range []SizingStrategy{AggressiveSizing{}, ModerateSizing{}, ConservativeSizing{}} {
		require.EqualValues(t, 1, s.RawOfReal(0), s.Name())
	}
}

func TestSizingRawOfRealNeverBelowMin(t *testing.T) {
	for _, s := range []SizingStrategy{AggressiveSizing{}, ModerateSizing{}, ConservativeSizing{}} {
		for real := uint64(1); real <= 4; real++ {
			raw := s.RawOfReal(real)
			require.GreaterOrEqual(t, raw, uint64(MinRawCapacity), "%s real=%d", s.Name(), real)
		}
	}
}

func TestSizingRoundTripHoldsAtLeastReal(t *testing.T) {
	for _, s := range []SizingStrategy{AggressiveSizing{}, ModerateSizing{}, ConservativeSizing{}} {
		for real := uint64(0); real <= 5000; real += 7 {
			raw := s.RawOfReal(real)
			require.GreaterOrEqual(t, s.RealOfRaw(raw), real, "%s real=%d raw=%d", s.Name(), real, raw)
			// raw must be a power of two.
			require.EqualValues(t, 0, raw&(raw-1), "%s raw=%d not a power of two", s.Name(), raw)
		}
	}
}

func TestSizingLoadFactors(t *testing.T) {
	require.EqualValues(t, 8, AggressiveSizing{}.RealOfRaw(8))
	require.EqualValues(t, 59, AggressiveSizing{}.RealOfRaw(64))

	require.EqualValues(t, 6, ModerateSizing{}.RealOfRaw(8))
	require.EqualValues(t, 51, ModerateSizing{}.RealOfRaw(64))

	require.EqualValues(t, 4, ConservativeSizing{}.RealOfRaw(8))
	require.EqualValues(t, 32, ConservativeSizing{}.RealOfRaw(64))
}

func TestSizingNames(t *testing.T) {
	require.Equal(t, "aggressive", AggressiveSizing{}.Name())
	require.Equal(t, "moderate", ModerateSizing{}.Name())
	require.Equal(t, "conservative", ConservativeSizing{}.Name())
}
