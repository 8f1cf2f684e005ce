/*
 *	Copyright 2024 The symgraph Authors
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package lowering_test

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/symgraph/symgraph/ir"
	. "github.com/symgraph/symgraph/lowering"
)

func TestPoolOutputExtents(t *testing.T) {
	tests := []struct {
		name               string
		in, kernel, stride int
		padHead, padTail   int
		ceilMode           bool
		want               int
	}{
		{"no-pad", 6, 3, 2, 0, 0, false, 2},
		{"padded", 6, 3, 2, 1, 1, false, 3},
		{"floor", 5, 2, 2, 0, 0, false, 2},
		{"ceil", 5, 2, 2, 0, 0, true, 3},
		{"ceil-divisible", 4, 2, 2, 0, 0, true, 2},
		{"stride-one", 4, 3, 1, 1, 1, false, 4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := ir.New()
			x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 2, test.in)...)
			_, pooled := Pool1d(x, []int{test.kernel}, []int{test.stride},
				[]int{test.padHead, test.padTail}, PoolMax, LayoutNCW,
				test.ceilMode, false, "pool_out")
			requireDim(t, pooled, 0, 1)
			requireDim(t, pooled, 1, 2)
			requireDim(t, pooled, 2, test.want)
		})
	}
}

func TestMaxPool2d(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)
	env := ir.NewEnv().BindInput(x, iotaData(16), 1, 1, 4, 4)

	padded, pooled := Pool2d(x, []int{2, 2}, []int{2, 2}, []int{0, 0, 0, 0},
		PoolMax, LayoutNCHW, false, false, "max_pool")
	// No padding requested: the intermediate is the input itself.
	require.Same(t, x, padded)
	requireDim(t, pooled, 2, 2)
	requireDim(t, pooled, 3, 2)
	want := [][]float64{{5, 7}, {13, 15}}
	for i := range want {
		for j := range want[i] {
			require.Equal(t, want[i][j], evalAt(t, pooled, env, 0, 0, i, j), "pooled[%d][%d]", i, j)
		}
	}
}

func TestMaxPool2dPadded(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)
	env := ir.NewEnv().BindInput(x, iotaData(16), 1, 1, 4, 4)

	padded, pooled := Pool2d(x, []int{3, 3}, []int{2, 2}, []int{1, 1, 1, 1},
		PoolMax, LayoutNCHW, false, false, "max_pool_padded")
	require.NotSame(t, x, padded)
	requireDim(t, padded, 2, 6)
	requireDim(t, pooled, 2, 3)
	// The lowest-value fill can never win a window, even in the corners.
	want := [][]float64{{5, 7, 7}, {13, 15, 15}, {13, 15, 15}}
	for i := range want {
		for j := range want[i] {
			require.Equal(t, want[i][j], evalAt(t, pooled, env, 0, 0, i, j), "pooled[%d][%d]", i, j)
		}
	}
}

func TestMaxPoolChannelsLast(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 4, 2)...)
	// Two channels interleaved: channel 0 holds 0..3, channel 1 holds
	// 10..13.
	env := ir.NewEnv().BindInput(x, []float64{0, 10, 1, 11, 2, 12, 3, 13}, 1, 4, 2)

	_, pooled := Pool1d(x, []int{2}, []int{2}, []int{0, 0},
		PoolMax, LayoutNWC, false, false, "nwc_pool")
	requireDim(t, pooled, 1, 2)
	requireDim(t, pooled, 2, 2)
	require.Equal(t, 1.0, evalAt(t, pooled, env, 0, 0, 0))
	require.Equal(t, 11.0, evalAt(t, pooled, env, 0, 0, 1))
	require.Equal(t, 3.0, evalAt(t, pooled, env, 0, 1, 0))
	require.Equal(t, 13.0, evalAt(t, pooled, env, 0, 1, 1))
}

func TestAvgPool2d(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)
	env := ir.NewEnv().BindInput(x, iotaData(16), 1, 1, 4, 4)

	_, pooled := Pool2d(x, []int{2, 2}, []int{2, 2}, []int{0, 0, 0, 0},
		PoolAvg, LayoutNCHW, false, false, "avg_pool")
	want := [][]float64{{2.5, 4.5}, {10.5, 12.5}}
	for i := range want {
		for j := range want[i] {
			require.Equal(t, want[i][j], evalAt(t, pooled, env, 0, 0, i, j), "pooled[%d][%d]", i, j)
		}
	}
}

func TestAvgPoolExclusiveVsInclusive(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)
	ones := make([]float64, 16)
	for i := range ones {
		ones[i] = 1
	}
	env := ir.NewEnv().BindInput(x, ones, 1, 1, 4, 4)

	_, inclusive := Pool2d(x, []int{3, 3}, []int{1, 1}, []int{1, 1, 1, 1},
		PoolAvg, LayoutNCHW, false, false, "avg_inclusive")
	_, exclusive := Pool2d(x, []int{3, 3}, []int{1, 1}, []int{1, 1, 1, 1},
		PoolAvg, LayoutNCHW, false, true, "avg_exclusive")

	// Fully interior windows: identical means.
	require.InDelta(t, 1.0, evalAt(t, inclusive, env, 0, 0, 1, 1), 1e-9)
	require.InDelta(t, 1.0, evalAt(t, exclusive, env, 0, 0, 1, 1), 1e-9)
	require.InDelta(t, 1.0, evalAt(t, exclusive, env, 0, 0, 2, 2), 1e-9)

	// Boundary-crossing windows diverge: the inclusive denominator counts
	// padding cells, the exclusive one does not.
	require.InDelta(t, 4.0/9.0, evalAt(t, inclusive, env, 0, 0, 0, 0), 1e-9)
	require.InDelta(t, 1.0, evalAt(t, exclusive, env, 0, 0, 0, 0), 1e-9)
	require.InDelta(t, 6.0/9.0, evalAt(t, inclusive, env, 0, 0, 0, 1), 1e-9)
	require.InDelta(t, 1.0, evalAt(t, exclusive, env, 0, 0, 0, 1), 1e-9)
}

func TestAvgPoolOnPrePaddedInput(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)
	ones := make([]float64, 16)
	for i := range ones {
		ones[i] = 1
	}
	env := ir.NewEnv().BindInput(x, ones, 1, 1, 4, 4)

	// Pooling a zero-filled pre-padded tensor with no pooling padding:
	// every window sits inside the padded extent, so the exclusive count is
	// the full kernel size and both averaging flavors agree — including
	// where the window crosses the original boundary.
	zero := ir.ConstInt(0)
	one := ir.ConstInt(1)
	prePadded := Pad(x, []*ir.Expr{zero, zero, one, one}, nil)
	_, inclusive := Pool2d(prePadded, []int{3, 3}, []int{1, 1}, []int{0, 0, 0, 0},
		PoolAvg, LayoutNCHW, false, false, "prepad_inclusive")
	_, exclusive := Pool2d(prePadded, []int{3, 3}, []int{1, 1}, []int{0, 0, 0, 0},
		PoolAvg, LayoutNCHW, false, true, "prepad_exclusive")
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t,
				evalAt(t, inclusive, env, 0, 0, i, j),
				evalAt(t, exclusive, env, 0, 0, i, j),
				1e-9, "position (%d, %d)", i, j)
		}
	}
	// But pooling the raw input with real padding and the exclusive flag
	// diverges from both at boundary-crossing windows.
	_, exclusiveOnRaw := Pool2d(x, []int{3, 3}, []int{1, 1}, []int{1, 1, 1, 1},
		PoolAvg, LayoutNCHW, false, true, "raw_exclusive")
	require.InDelta(t, 1.0, evalAt(t, exclusiveOnRaw, env, 0, 0, 0, 0), 1e-9)
	require.InDelta(t, 4.0/9.0, evalAt(t, inclusive, env, 0, 0, 0, 0), 1e-9)
	require.InDelta(t,
		evalAt(t, exclusiveOnRaw, env, 0, 0, 1, 1),
		evalAt(t, inclusive, env, 0, 0, 1, 1), 1e-9)
}

func TestPool3d(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 2, 2, 2)...)
	env := ir.NewEnv().BindInput(x, iotaData(8), 1, 1, 2, 2, 2)

	_, pooled := Pool3d(x, []int{2, 2, 2}, []int{2, 2, 2}, []int{0, 0, 0, 0, 0, 0},
		PoolMax, LayoutNCDHW, false, false, "pool3d")
	requireDim(t, pooled, 2, 1)
	requireDim(t, pooled, 3, 1)
	requireDim(t, pooled, 4, 1)
	require.Equal(t, 7.0, evalAt(t, pooled, env, 0, 0, 0, 0, 0))
}

func TestPoolCeilModePadsWithIdentity(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 5)...)
	env := ir.NewEnv().BindInput(x, []float64{1, 2, 3, 4, 5}, 1, 1, 5)

	// Ceil mode extends the tail so the last, partial window is computed;
	// the max over it must come from real data, not from the fill.
	padded, pooled := Pool1d(x, []int{2}, []int{2}, []int{0, 0},
		PoolMax, LayoutNCW, true, false, "ceil_pool")
	require.NotSame(t, x, padded)
	requireDim(t, pooled, 2, 3)
	require.Equal(t, 2.0, evalAt(t, pooled, env, 0, 0, 0))
	require.Equal(t, 4.0, evalAt(t, pooled, env, 0, 0, 1))
	require.Equal(t, 5.0, evalAt(t, pooled, env, 0, 0, 2))
}

func TestPoolInvalidArguments(t *testing.T) {
	g := ir.New()
	x := g.Placeholder("x", dtypes.Float32, ir.Dims(1, 1, 4, 4)...)

	require.Panics(t, func() {
		Pool(x, nil, nil, nil, PoolMax, nil, false, false, "p")
	}, "empty kernel")
	require.Panics(t, func() {
		Pool(x, []int{2, 2}, []int{2}, []int{0, 0, 0, 0}, PoolMax, []int{2, 3}, false, false, "p")
	}, "stride length mismatch")
	require.Panics(t, func() {
		Pool(x, []int{2, 2}, []int{2, 2}, []int{0, 0}, PoolMax, []int{2, 3}, false, false, "p")
	}, "padding length mismatch")
	require.Panics(t, func() {
		Pool(x, []int{2, 2}, []int{2, 2}, []int{0, 0, 0, 0}, PoolMax, []int{2}, false, false, "p")
	}, "axis length mismatch")
	require.Panics(t, func() {
		Pool(x, []int{2}, []int{2}, []int{0, 0}, PoolMax, []int{7}, false, false, "p")
	}, "axis out of range")
	require.Panics(t, func() {
		Pool(x, []int{2}, []int{2}, []int{0, 0}, PoolKind(42), []int{2}, false, false, "p")
	}, "unknown pooling kind")
	require.Panics(t, func() {
		Pool2d(x, []int{2}, []int{2}, []int{0, 0}, PoolMax, LayoutNCW, false, false, "p")
	}, "layout with wrong spatial count")
	require.Panics(t, func() {
		Pool2d(x, []int{2, 2}, []int{2, 2}, []int{0, 0, 0, 0}, PoolMax, Layout(42), false, false, "p")
	}, "unknown layout")

	y := g.Placeholder("y", dtypes.Float32, ir.Dims(1, 1, 4)...)
	require.Panics(t, func() {
		Pool2d(y, []int{2, 2}, []int{2, 2}, []int{0, 0, 0, 0}, PoolMax, LayoutNCHW, false, false, "p")
	}, "rank mismatch for layout")
}
