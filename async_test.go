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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsyncMapMatchesSequentialMap(t *testing.T) {
	tbl := newIntTable()
	for i := 0; i < 2000; i++ {
		tbl.Set(i, i)
	}

	want := Map(tbl, func(k, v int) int { return v * v }, intHash)

	got, err := AsyncMap(context.Background(), tbl, func(k, v int) (int, error) {
		return v * v, nil
	}, intHash)
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}

func TestAsyncMapPropagatesError(t *testing.T) {
	tbl := newIntTable()
	for i := 0; i < 100; i++ {
		tbl.Set(i, i)
	}
	sentinel := errors.New("boom")
	_, err := AsyncMap(context.Background(), tbl, func(k, v int) (int, error) {
		if k == 50 {
			return 0, sentinel
		}
		return v, nil
	}, intHash)
	require.ErrorIs(t, err, sentinel)
}

func TestAsyncFilterMatchesSequentialFilter(t *testing.T) {
	tbl := newIntTable()
	for i := 0; i < 2000; i++ {
		tbl.Set(i, i)
	}

	want := tbl.Filter(func(k, v int) bool { return v%3 == 0 })

	got, err := AsyncFilter(context.Background(), tbl, func(k, v int) (bool, error) {
		return v%3 == 0, nil
	})
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}

func TestAsyncFilterShortCircuitsWhenAllMatch(t *testing.T) {
	tbl := newIntTable()
	for i := 0; i < 100; i++ {
		tbl.Set(i, i)
	}
	got, err := AsyncFilter(context.Background(), tbl, func(k, v int) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	require.Same(t, tbl, got, "AsyncFilter must return the source table itself when every entry matches")
}

func TestAsyncFilterPropagatesError(t *testing.T) {
	tbl := newIntTable()
	for i := 0; i < 100; i++ {
		tbl.Set(i, i)
	}
	sentinel := errors.New("boom")
	_, err := AsyncFilter(context.Background(), tbl, func(k, v int) (bool, error) {
		if k == 10 {
			return false, sentinel
		}
		return true, nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestAsyncMapOnEmptyTable(t *testing.T) {
	tbl := newIntTable()
	got, err := AsyncMap(context.Background(), tbl, func(k, v int) (int, error) {
		return v, nil
	}, intHash)
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())
}
