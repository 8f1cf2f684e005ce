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

package lowering

import (
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"k8s.io/klog/v2"

	"github.com/symgraph/symgraph/ir"
)

// PoolKind selects the pooling reduction.
type PoolKind int

const (
	// PoolMax takes the maximum of each window.
	PoolMax PoolKind = iota
	// PoolAvg takes the mean of each window.
	PoolAvg
)

//go:generate enumer -type=PoolKind -trimprefix=Pool -transform=lower pool.go

// Pool lowers max/average pooling over the given axes of x. kernel, strides
// and axes must have one entry per pooled axis; paddings holds the head
// margins of every pooled axis followed by the tail margins, in axis order.
//
// The output extent of a pooled axis is
// `(dim - kernel + padHead + padTail)/stride + 1` (floor division); with
// ceilMode the tail margin is first increased by stride-1, which turns the
// formula into a ceiling division. When any margin ends up non-zero the
// input is materialized as a padded intermediate first, filled with the
// dtype's lowest value for max-pooling (so padding never wins the maximum)
// or zero for average-pooling. With exclusive set, the averaging divisor
// counts only the kernel cells that fall inside the un-padded input;
// otherwise it is the static kernel-size product.
//
// It returns the (possibly padded) intermediate and the pooled tensor. If
// no padding was needed the intermediate is x itself.
func Pool(x *ir.Tensor, kernel, strides, paddings []int, kind PoolKind, axes []int,
	ceilMode, exclusive bool, name string) (padded, pooled *ir.Tensor) {
	g := graphFromInputs(x)
	numPooled := len(kernel)
	if numPooled == 0 {
		Panicf("Pool: kernel sizes must not be empty")
	}
	if len(strides) != numPooled {
		Panicf("Pool: got %d stride sizes for %d kernel sizes", len(strides), numPooled)
	}
	if len(paddings) != 2*numPooled {
		Panicf("Pool: got %d padding sizes, want 2x%d (head margins then tail margins)",
			len(paddings), numPooled)
	}
	if len(axes) != numPooled {
		Panicf("Pool: got %d axes for %d kernel sizes", len(axes), numPooled)
	}
	if !kind.IsAPoolKind() {
		Panicf("Pool: unsupported pooling kind %v", kind)
	}
	rank := x.Rank()
	for i, axis := range axes {
		if axis < 0 || axis >= rank {
			Panicf("Pool: axis %d out of range for rank-%d tensor %q", axis, rank, x.Name())
		}
		if kernel[i] <= 0 || strides[i] <= 0 {
			Panicf("Pool: kernel and stride sizes must be positive, got kernel=%d stride=%d for axis %d",
				kernel[i], strides[i], axis)
		}
		if paddings[i] < 0 || paddings[i+numPooled] < 0 {
			Panicf("Pool: padding sizes must be non-negative, got head=%d tail=%d for axis %d",
				paddings[i], paddings[i+numPooled], axis)
		}
	}
	if name == "" {
		name = g.UniqueName("pool_out")
	}

	kernelE := make([]*ir.Expr, numPooled)
	strideE := make([]*ir.Expr, numPooled)
	padHead := make([]*ir.Expr, numPooled)
	padTail := make([]*ir.Expr, numPooled)
	padBefore := make([]*ir.Expr, rank)
	padAfter := make([]*ir.Expr, rank)
	for i := range padBefore {
		padBefore[i] = ir.ConstInt(0)
		padAfter[i] = ir.ConstInt(0)
	}
	outShape := slices.Clone(x.Shape())
	reduceVars := make([]*ir.Var, numPooled)
	doPad := false
	for i, axis := range axes {
		kernelE[i] = ir.ConstInt(kernel[i])
		strideE[i] = ir.ConstInt(strides[i])
		padHead[i] = ir.ConstInt(paddings[i])
		padTail[i] = ir.ConstInt(paddings[i+numPooled])
		if ceilMode {
			// Increasing the tail margin by stride-1 turns the floor-based
			// output-extent formula below into a ceiling division.
			padTail[i] = ir.Simplify(ir.Add(padTail[i], ir.ConstInt(strides[i]-1)))
		}
		doPad = doPad || !ir.MathEqual(padHead[i], ir.ConstInt(0)) || !ir.MathEqual(padTail[i], ir.ConstInt(0))
		padBefore[axis] = padHead[i]
		padAfter[axis] = padTail[i]
		reduceVars[i] = g.ReduceVar(kernelE[i], g.UniqueName("kernel_idx"))
		outShape[axis] = ir.Simplify(ir.Add(
			ir.Div(ir.Add(ir.Sub(x.Dim(axis), kernelE[i]), ir.Add(padHead[i], padTail[i])), strideE[i]),
			ir.ConstInt(1)))
	}

	padded = x
	if doPad {
		fill := ir.Zero(x.DType())
		if kind == PoolMax {
			// Padding cells must never win the maximum.
			fill = ir.MinValue(x.DType())
		}
		padded = Pad(x, padBefore, padAfter,
			WithPadValue(fill), WithPadName(g.UniqueName("pad_temp")))
	}
	klog.V(2).Infof("lowering.Pool: %q -> %q kind=%s axes=%v padded=%t", x.Name(), name, kind, axes, doPad)

	body := &poolBody{
		src:        padded,
		in:         x,
		kind:       kind,
		axes:       axes,
		kernel:     kernelE,
		stride:     strideE,
		padHead:    padHead,
		reduceVars: reduceVars,
		exclusive:  exclusive,
		dtype:      x.DType(),
	}
	pooled = g.Compute(outShape, x.DType(), body, name, reduceVars...)
	return padded, pooled
}

// poolBody is the body rule of a pooled tensor. src is the (possibly
// padded) intermediate the windows read from; in is the original input,
// whose extents bound the exclusive-average divisor.
type poolBody struct {
	src, in    *ir.Tensor
	kind       PoolKind
	axes       []int
	kernel     []*ir.Expr
	stride     []*ir.Expr
	padHead    []*ir.Expr
	reduceVars []*ir.Var
	exclusive  bool
	dtype      dtypes.DType
}

func (p *poolBody) BuildAt(out []*ir.Expr) *ir.Expr {
	indices := slices.Clone(out)
	for i, axis := range p.axes {
		indices[axis] = ir.Add(ir.Mul(out[axis], p.stride[i]), p.reduceVars[i].Expr())
	}
	if p.kind == PoolMax {
		return ir.ReduceMax(p.src.At(indices...), ir.MinValue(p.dtype))
	}

	var divisor *ir.Expr
	if p.exclusive {
		// Count of kernel cells that land inside the un-padded input,
		// per axis: max(min(start+kernel, dim) - max(start, 0), 1) with
		// start = out*stride - padHead. The per-axis counts multiply because
		// padding is axis-aligned.
		count := ir.ConstInt(1)
		for i, axis := range p.axes {
			start := ir.Simplify(ir.Sub(ir.Mul(out[axis], p.stride[i]), p.padHead[i]))
			end := ir.Min(ir.Add(start, p.kernel[i]), p.in.Dim(axis))
			clamped := ir.Max(start, ir.ConstInt(0))
			count = ir.Mul(count, ir.Sub(end, clamped))
		}
		divisor = ir.Max(ir.Simplify(count), ir.ConstInt(1))
	} else {
		count := ir.ConstInt(1)
		for i := range p.axes {
			count = ir.Mul(count, p.kernel[i])
		}
		divisor = ir.Simplify(count)
	}
	// Division precedes the sum so the reduction yields a mean, not a
	// scaled sum.
	return ir.ReduceSum(
		ir.Div(p.src.At(indices...), ir.Cast(divisor, p.dtype)),
		ir.Zero(p.dtype))
}

// Pool1d pools the width axis of a rank-3 tensor laid out per layout
// (LayoutNCW or LayoutNWC). Parameters follow Pool.
func Pool1d(x *ir.Tensor, kernel, strides, paddings []int, kind PoolKind, layout Layout,
	ceilMode, exclusive bool, name string) (padded, pooled *ir.Tensor) {
	return poolAdapter(x, kernel, strides, paddings, kind, layout, 1, ceilMode, exclusive, name)
}

// Pool2d pools the height and width axes of a rank-4 tensor laid out per
// layout (LayoutNCHW or LayoutNHWC). Parameters follow Pool.
func Pool2d(x *ir.Tensor, kernel, strides, paddings []int, kind PoolKind, layout Layout,
	ceilMode, exclusive bool, name string) (padded, pooled *ir.Tensor) {
	return poolAdapter(x, kernel, strides, paddings, kind, layout, 2, ceilMode, exclusive, name)
}

// Pool3d pools the depth, height and width axes of a rank-5 tensor laid out
// per layout (LayoutNCDHW or LayoutNDHWC). Parameters follow Pool.
func Pool3d(x *ir.Tensor, kernel, strides, paddings []int, kind PoolKind, layout Layout,
	ceilMode, exclusive bool, name string) (padded, pooled *ir.Tensor) {
	return poolAdapter(x, kernel, strides, paddings, kind, layout, 3, ceilMode, exclusive, name)
}

func poolAdapter(x *ir.Tensor, kernel, strides, paddings []int, kind PoolKind, layout Layout,
	numSpatialDims int, ceilMode, exclusive bool, name string) (padded, pooled *ir.Tensor) {
	if !layout.IsALayout() || layout.NumSpatialDims() != numSpatialDims {
		Panicf("Pool%dd: unsupported data layout %v", numSpatialDims, layout)
	}
	if x.Rank() != layout.Rank() {
		Panicf("Pool%dd: %s layout requires a rank-%d tensor, got rank %d",
			numSpatialDims, layout, layout.Rank(), x.Rank())
	}
	return Pool(x, kernel, strides, paddings, kind, layout.SpatialAxes(), ceilMode, exclusive, name)
}
