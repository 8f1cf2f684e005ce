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

// PadMode selects what substitutes for out-of-bounds positions of a padded
// tensor.
type PadMode int

const (
	// PadConstant fills the margins with a constant value.
	PadConstant PadMode = iota
	// PadEdge replicates the edge elements of the source.
	PadEdge
	// PadReflect mirrors the source about its boundaries.
	PadReflect
)

//go:generate enumer -type=PadMode -trimprefix=Pad -transform=lower pad.go

// PadOption configures Pad.
type PadOption func(*padConfig)

type padConfig struct {
	value *ir.Expr
	name  string
	mode  PadMode
}

// WithPadValue sets the fill value for PadConstant mode. It defaults to the
// zero of the tensor's element type.
func WithPadValue(value *ir.Expr) PadOption {
	return func(cfg *padConfig) { cfg.value = value }
}

// WithPadName sets the name of the padded tensor. It defaults to a fresh
// "pad_out" name.
func WithPadName(name string) PadOption {
	return func(cfg *padConfig) { cfg.name = name }
}

// WithPadMode sets the boundary policy. It defaults to PadConstant.
func WithPadMode(mode PadMode) PadOption {
	return func(cfg *padConfig) { cfg.mode = mode }
}

// Pad allocates a tensor that rewrites x's index space with before/after
// margins per leading axis: the dimension of a padded axis grows to
// `dim + before + after` and each output element selects between the shifted
// source element and the boundary substitute of the configured PadMode.
//
// When after is shorter than before it is extended by repeating the before
// values (symmetric padding); axes beyond len(before) pass through unpadded.
// Margins must be Int32 expressions; axes whose margins are provably zero
// skip the boundary test entirely.
func Pad(x *ir.Tensor, before, after []*ir.Expr, opts ...PadOption) *ir.Tensor {
	g := graphFromInputs(x)
	cfg := padConfig{mode: PadConstant}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.mode.IsAPadMode() {
		Panicf("Pad: unsupported pad mode %v", cfg.mode)
	}
	before, after = normalizePadding(before, after)
	if len(before) == 0 {
		Panicf("Pad: before margins must not be empty")
	}
	if len(after) != len(before) {
		Panicf("Pad: got %d before and %d after margins after normalization", len(before), len(after))
	}
	if len(before) > x.Rank() {
		Panicf("Pad: got %d margin pairs for a rank-%d tensor", len(before), x.Rank())
	}
	for i := range before {
		if before[i] == nil || after[i] == nil {
			Panicf("Pad: nil margin for axis %d", i)
		}
		if before[i].DType() != dtypes.Int32 || after[i].DType() != dtypes.Int32 {
			Panicf("Pad: margins must be Int32, axis %d has %s/%s", i, before[i].DType(), after[i].DType())
		}
	}
	value := cfg.value
	if value == nil {
		value = ir.Zero(x.DType())
	}
	if value.DType() != x.DType() {
		Panicf("Pad: fill value dtype %s does not match tensor dtype %s", value.DType(), x.DType())
	}
	name := cfg.name
	if name == "" {
		name = g.UniqueName("pad_out")
	}

	shape := make([]*ir.Expr, x.Rank())
	for i := range shape {
		if i < len(before) {
			shape[i] = ir.Simplify(ir.Add(ir.Add(x.Dim(i), before[i]), after[i]))
		} else {
			shape[i] = x.Dim(i)
		}
	}
	klog.V(2).Infof("lowering.Pad: %q -> %q, %d padded axes, mode=%s", x.Name(), name, len(before), cfg.mode)
	body := &padBody{src: x, before: before, after: after, value: value, mode: cfg.mode}
	return g.Compute(shape, x.DType(), body, name)
}

// normalizePadding returns fully-specified margin sequences without mutating
// the caller's slices: a missing tail of after is filled from before.
func normalizePadding(before, after []*ir.Expr) ([]*ir.Expr, []*ir.Expr) {
	before = slices.Clone(before)
	after = slices.Clone(after)
	if len(after) < len(before) {
		after = append(after, before[len(after):]...)
	}
	return before, after
}

// padBody is the body rule of a padded tensor: it captures the source and
// the normalized margins.
type padBody struct {
	src           *ir.Tensor
	before, after []*ir.Expr
	value         *ir.Expr
	mode          PadMode
}

func (p *padBody) BuildAt(index []*ir.Expr) *ir.Expr {
	rank := p.src.Rank()
	zero := ir.ConstInt(0)
	one := ir.ConstInt(1)
	indices := make([]*ir.Expr, rank)
	padIdx := make([]*ir.Expr, rank)
	var conds []*ir.Expr
	for i := 0; i < rank; i++ {
		if i >= len(p.before) {
			indices[i] = index[i]
			padIdx[i] = index[i]
			continue
		}
		dim := p.src.Dim(i)
		beforeZero := ir.MathEqual(p.before[i], zero)
		afterZero := ir.MathEqual(p.after[i], zero)
		if beforeZero {
			indices[i] = index[i]
		} else {
			conds = append(conds, ir.Ge(index[i], p.before[i]))
			indices[i] = ir.Sub(index[i], p.before[i])
		}
		if !afterZero {
			conds = append(conds, ir.Simplify(ir.Lt(index[i], ir.Add(p.before[i], dim))))
		}
		if beforeZero && afterZero {
			padIdx[i] = index[i]
			continue
		}
		switch p.mode {
		case PadEdge:
			padIdx[i] = ir.Select(ir.Lt(index[i], p.before[i]),
				zero,
				ir.Select(ir.Ge(index[i], ir.Add(p.before[i], dim)),
					ir.Sub(dim, one),
					ir.Sub(index[i], p.before[i])))
		case PadReflect:
			// Mirrors about both boundaries: before-index on the low side,
			// 2*dim + before - index - 2 on the high side.
			high := ir.Sub(ir.Add(ir.Mul(dim, ir.ConstInt(2)), p.before[i]),
				ir.Add(index[i], ir.ConstInt(2)))
			padIdx[i] = ir.Select(ir.Lt(index[i], p.before[i]),
				ir.Sub(p.before[i], index[i]),
				ir.Select(ir.Ge(index[i], ir.Add(p.before[i], dim)),
					high,
					ir.Sub(index[i], p.before[i])))
		default:
			padIdx[i] = indices[i]
		}
	}
	if len(conds) == 0 {
		return p.src.At(indices...)
	}
	cond := ir.AndAll(conds)
	if p.mode == PadConstant {
		return ir.Select(cond, p.src.At(indices...), p.value)
	}
	return ir.Select(cond, p.src.At(indices...), p.src.At(padIdx...))
}
