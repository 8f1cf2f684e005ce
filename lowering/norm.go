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

// BatchNormNCHW lowers the per-channel affine transform
// `(x - mean[c]) / sqrt(variance[c] + epsilon) * scale[c] + bias[c]` over a
// channel-first rank-4 input. weights is a rank-2 tensor stacking the four
// per-channel rows mean, variance, scale and bias, in that order. No
// reduction is introduced; it also serves as the normalizer of convolution
// or fully-connected results.
func BatchNormNCHW(x, weights *ir.Tensor, epsilon float32, name string) *ir.Tensor {
	g := graphFromInputs(x, weights)
	if x.Rank() != 4 {
		Panicf("BatchNormNCHW: input must have rank 4 (NCHW), got rank %d", x.Rank())
	}
	if weights.Rank() != 2 {
		Panicf("BatchNormNCHW: weights must have rank 2 (4 per-channel rows), got rank %d", weights.Rank())
	}
	if x.DType() != weights.DType() {
		Panicf("BatchNormNCHW: input dtype %s does not match weights dtype %s", x.DType(), weights.DType())
	}
	if !x.DType().IsFloat() {
		Panicf("BatchNormNCHW: requires a float dtype, got %s", x.DType())
	}
	if name == "" {
		name = g.UniqueName("batch_norm_out")
	}
	body := &batchNormBody{x: x, weights: weights, epsilon: ir.Const(x.DType(), epsilon)}
	return g.Compute(x.Shape(), x.DType(), body, name)
}

// batchNormBody holds the operands of the per-channel affine transform. Row
// r of weights holds mean (0), variance (1), scale (2) and bias (3).
type batchNormBody struct {
	x, weights *ir.Tensor
	epsilon    *ir.Expr
}

func (b *batchNormBody) BuildAt(index []*ir.Expr) *ir.Expr {
	c := index[1]
	row := func(r int) *ir.Expr { return b.weights.At(ir.ConstInt(r), c) }
	normalized := ir.Div(
		ir.Sub(b.x.At(index...), row(0)),
		ir.Sqrt(ir.Add(row(1), b.epsilon)))
	return ir.Add(ir.Mul(normalized, row(2)), row(3))
}
