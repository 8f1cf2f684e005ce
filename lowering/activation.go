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

	"github.com/symgraph/symgraph/ir"
)

// leakyReluExpr is the shared scalar rule of the rectifier activations:
// value where value >= 0, else slope*value.
func leakyReluExpr(value, slope *ir.Expr) *ir.Expr {
	return ir.Select(ir.Ge(value, ir.Zero(value.DType())), value, ir.Mul(slope, value))
}

// LeakyRelu lowers the elementwise leaky rectifier: x where x >= 0, else
// alpha*x. No reduction is introduced.
func LeakyRelu(x *ir.Tensor, alpha float64, name string) *ir.Tensor {
	g := graphFromInputs(x)
	if !x.DType().IsFloat() {
		Panicf("LeakyRelu: requires a float dtype, got %s", x.DType())
	}
	if name == "" {
		name = g.UniqueName("leaky_relu_out")
	}
	body := &leakyReluBody{x: x, alpha: ir.Const(x.DType(), alpha)}
	return g.Compute(x.Shape(), x.DType(), body, name)
}

type leakyReluBody struct {
	x     *ir.Tensor
	alpha *ir.Expr
}

func (b *leakyReluBody) BuildAt(index []*ir.Expr) *ir.Expr {
	return leakyReluExpr(b.x.At(index...), b.alpha)
}

// PRelu lowers the parametric rectifier: the leaky-relu rule with a
// per-slice slope indexed by the element's coordinate along axis. slope must
// be a rank-1 tensor whose length matches x's extent along that axis.
func PRelu(x, slope *ir.Tensor, axis int, name string) *ir.Tensor {
	g := graphFromInputs(x, slope)
	if axis < 0 || axis >= x.Rank() {
		Panicf("PRelu: axis %d out of range for rank-%d tensor %q", axis, x.Rank(), x.Name())
	}
	if slope.Rank() != 1 {
		Panicf("PRelu: slope must have rank 1, got rank %d", slope.Rank())
	}
	if !ir.MathEqual(x.Dim(axis), slope.Dim(0)) {
		Panicf("PRelu: slope length %s does not match extent %s of axis %d",
			slope.Dim(0), x.Dim(axis), axis)
	}
	if x.DType() != slope.DType() {
		Panicf("PRelu: input dtype %s does not match slope dtype %s", x.DType(), slope.DType())
	}
	if name == "" {
		name = g.UniqueName("prelu_out")
	}
	body := &preluBody{x: x, slope: slope, axis: axis}
	return g.Compute(x.Shape(), x.DType(), body, name)
}

type preluBody struct {
	x, slope *ir.Tensor
	axis     int
}

func (b *preluBody) BuildAt(index []*ir.Expr) *ir.Expr {
	return leakyReluExpr(b.x.At(index...), b.slope.At(index[b.axis]))
}
