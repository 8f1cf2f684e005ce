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
	. "github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/symgraph/symgraph/ir"
)

// Conv2dNCHW lowers a direct 2D convolution over a channel-first layout:
// x is shaped [batch, channel, height, width] and weights
// [outChannel, inChannel, kernelH, kernelW]. dilation applies to both
// spatial kernel dimensions. groups is accepted for interface parity with
// the operator definition layer; the direct lowering below does not change
// its indexing for it.
//
// It lowers as padding + weight dilation + a sum-reduction compute: the
// input is padded spatially with zeros, the weights are expanded to a
// dilated tensor that is the original weight where both dilated coordinates
// are divisible by dilation and zero elsewhere, and the result sums
// `padded[n, rc, y*strideH+ry, x*strideW+rx] * dilated[f, rc, ry, rx]` over
// reduction variables rc (input channels), ry and rx (dilated kernel).
//
// It returns the padded input, the dilated weights and the result tensor.
func Conv2dNCHW(x, weights *ir.Tensor, padH, padW, strideH, strideW, dilation, groups int,
	name string) (padded, dilated, out *ir.Tensor) {
	g := graphFromInputs(x, weights)
	if x.Rank() != 4 {
		Panicf("Conv2dNCHW: input must have rank 4 (NCHW), got rank %d", x.Rank())
	}
	if weights.Rank() != 4 {
		Panicf("Conv2dNCHW: weights must have rank 4 (OIHW), got rank %d", weights.Rank())
	}
	if x.DType() != weights.DType() {
		Panicf("Conv2dNCHW: input dtype %s does not match weights dtype %s", x.DType(), weights.DType())
	}
	if padH < 0 || padW < 0 {
		Panicf("Conv2dNCHW: paddings must be non-negative, got (%d, %d)", padH, padW)
	}
	if strideH <= 0 || strideW <= 0 {
		Panicf("Conv2dNCHW: strides must be positive, got (%d, %d)", strideH, strideW)
	}
	if dilation < 1 {
		Panicf("Conv2dNCHW: dilation must be >= 1, got %d", dilation)
	}
	if groups < 1 {
		Panicf("Conv2dNCHW: groups must be >= 1, got %d", groups)
	}
	if name == "" {
		name = g.UniqueName("conv2d_nchw_out")
	}

	zero := ir.ConstInt(0)
	one := ir.ConstInt(1)
	dilationE := ir.ConstInt(dilation)

	padded = Pad(x,
		[]*ir.Expr{zero, zero, ir.ConstInt(padH), ir.ConstInt(padW)}, nil,
		WithPadName(g.UniqueName("input_pad")))

	// Dilated kernel extent: dilation*(k-1)+1.
	dilatedShape := []*ir.Expr{
		weights.Dim(0),
		weights.Dim(1),
		ir.Simplify(ir.Add(ir.Mul(dilationE, ir.Sub(weights.Dim(2), one)), one)),
		ir.Simplify(ir.Add(ir.Mul(dilationE, ir.Sub(weights.Dim(3), one)), one)),
	}
	dilated = g.Compute(dilatedShape, weights.DType(),
		&dilateBody{weights: weights, dilation: dilationE},
		g.UniqueName("weights_dilation"))

	outShape := []*ir.Expr{
		x.Dim(0),
		weights.Dim(0),
		convOutDim(x.Dim(2), weights.Dim(2), padH, strideH, dilationE),
		convOutDim(x.Dim(3), weights.Dim(3), padW, strideW, dilationE),
	}
	rc := g.ReduceVar(padded.Dim(1), g.UniqueName("rc"))
	ry := g.ReduceVar(dilated.Dim(2), g.UniqueName("ry"))
	rx := g.ReduceVar(dilated.Dim(3), g.UniqueName("rx"))
	klog.V(2).Infof("lowering.Conv2dNCHW: %q * %q -> %q stride=(%d,%d) dilation=%d",
		x.Name(), weights.Name(), name, strideH, strideW, dilation)
	body := &convBody{
		padded:  padded,
		dilated: dilated,
		strideH: ir.ConstInt(strideH),
		strideW: ir.ConstInt(strideW),
		rc:      rc,
		ry:      ry,
		rx:      rx,
	}
	out = g.Compute(outShape, x.DType(), body, name, ry, rx, rc)
	return padded, dilated, out
}

// convOutDim builds `(in - (dilation*(k-1)+1) + 2*pad)/stride + 1`.
func convOutDim(in, kernel *ir.Expr, pad, stride int, dilation *ir.Expr) *ir.Expr {
	one := ir.ConstInt(1)
	window := ir.Add(ir.Mul(dilation, ir.Sub(kernel, one)), one)
	return ir.Simplify(ir.Add(
		ir.Div(ir.Add(ir.Sub(in, window), ir.ConstInt(2*pad)), ir.ConstInt(stride)),
		one))
}

// dilateBody expands weights with dilation-1 zeros between the original
// elements along both spatial kernel axes.
type dilateBody struct {
	weights  *ir.Tensor
	dilation *ir.Expr
}

func (d *dilateBody) BuildAt(index []*ir.Expr) *ir.Expr {
	zero := ir.ConstInt(0)
	cond := ir.And(
		ir.Eq(ir.Mod(index[3], d.dilation), zero),
		ir.Eq(ir.Mod(index[2], d.dilation), zero))
	// Simplified so a dilation of 1 collapses to a plain weight access.
	return ir.Simplify(ir.Select(cond,
		d.weights.At(index[0], index[1], ir.Div(index[2], d.dilation), ir.Div(index[3], d.dilation)),
		ir.Zero(d.weights.DType())))
}

// convBody is the sum-reduction body of the convolution result.
type convBody struct {
	padded, dilated  *ir.Tensor
	strideH, strideW *ir.Expr
	rc, ry, rx       *ir.Var
}

func (c *convBody) BuildAt(index []*ir.Expr) *ir.Expr {
	n, f, y, x := index[0], index[1], index[2], index[3]
	lhs := c.padded.At(n, c.rc.Expr(),
		ir.Add(ir.Mul(y, c.strideH), c.ry.Expr()),
		ir.Add(ir.Mul(x, c.strideW), c.rx.Expr()))
	rhs := c.dilated.At(f, c.rc.Expr(), c.ry.Expr(), c.rx.Expr())
	return ir.ReduceSum(ir.Mul(lhs, rhs), ir.Zero(c.padded.DType()))
}
