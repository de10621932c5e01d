// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package pair

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndSplit(t *testing.T) {
	p := New(1, 2)
	prev, next := p.Split()
	require.Equal(t, 1, prev)
	require.Equal(t, 2, next)
}

func TestSwapped(t *testing.T) {
	p := New("a", "b").Swapped()
	require.Equal(t, "b", p.Previous)
	require.Equal(t, "a", p.Next)
}

func TestMap(t *testing.T) {
	p := Map(New(1, 2), func(i int) string { return strconv.Itoa(i * 10) })
	require.Equal(t, "10", p.Previous)
	require.Equal(t, "20", p.Next)
}

func TestInterleave(t *testing.T) {
	got := Interleave([]int{1, 2, 3}, []int{4, 5, 6})
	require.Equal(t, []Pair[int]{New(1, 4), New(2, 5), New(3, 6)}, got)
}

func TestInterleavePanicsOnMismatch(t *testing.T) {
	require.Panics(t, func() {
		Interleave([]int{1, 2}, []int{1})
	})
}

func TestInterleaveFunc(t *testing.T) {
	p := New([]int{1, 2}, []int{3, 4})
	got := InterleaveFunc(p, func(xs []int) []int { return xs })
	require.Equal(t, []Pair[int]{New(1, 3), New(2, 4)}, got)
}
