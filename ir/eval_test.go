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

package ir_test

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	. "github.com/symgraph/symgraph/ir"
)

func TestEvalScalars(t *testing.T) {
	g := New()
	i := g.IterVar(ConstInt(10), "i")
	env := NewEnv().BindVar(i, 7)

	got, err := Eval(Add(VarRef(i), ConstInt(2)), env)
	require.NoError(t, err)
	require.Equal(t, 9.0, got)

	// Integer division floors; float division does not.
	got, err = Eval(Div(VarRef(i), ConstInt(2)), env)
	require.NoError(t, err)
	require.Equal(t, 3.0, got)
	got, err = Eval(Div(Const(dtypes.Float32, 7.0), Const(dtypes.Float32, 2.0)), env)
	require.NoError(t, err)
	require.Equal(t, 3.5, got)

	got, err = Eval(Select(Lt(VarRef(i), ConstInt(5)), ConstInt(1), ConstInt(0)), env)
	require.NoError(t, err)
	require.Equal(t, 0.0, got)

	// Unbound variables are reported, not guessed.
	j := g.IterVar(ConstInt(3), "j")
	_, err = Eval(VarRef(j), env)
	require.ErrorContains(t, err, "unbound variable")
}

func TestEvalTensorAccess(t *testing.T) {
	g := New()
	x := g.Placeholder("x", dtypes.Float32, Dims(2, 3)...)
	env := NewEnv().BindInput(x, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	got, err := EvalAt(x, env, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 6.0, got)

	_, err = EvalAt(x, env, 2, 0)
	require.ErrorContains(t, err, "out of range")

	// Computed tensors evaluate through their body rule.
	double := g.Compute(x.Shape(), x.DType(), ruleFunc(func(index []*Expr) *Expr {
		return Mul(x.At(index...), Const(dtypes.Float32, 2.0))
	}), "double")
	got, err = EvalAt(double, env, 0, 1)
	require.NoError(t, err)
	require.Equal(t, 4.0, got)

	unbound := g.Placeholder("unbound", dtypes.Float32, Dims(2)...)
	_, err = EvalAt(unbound, env, 0)
	require.ErrorContains(t, err, "no data bound")
}

func TestEvalReduce(t *testing.T) {
	g := New()
	x := g.Placeholder("x", dtypes.Float32, Dims(2, 4)...)
	env := NewEnv().BindInput(x, []float64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 4)

	// Row sums: reduce over the second axis.
	k := g.ReduceVar(ConstInt(4), "k")
	rowSum := g.Compute(Dims(2), x.DType(), ruleFunc(func(index []*Expr) *Expr {
		return ReduceSum(x.At(index[0], VarRef(k)), Zero(dtypes.Float32))
	}), "row_sum", k)
	got, err := EvalAt(rowSum, env, 0)
	require.NoError(t, err)
	require.Equal(t, 10.0, got)
	got, err = EvalAt(rowSum, env, 1)
	require.NoError(t, err)
	require.Equal(t, 26.0, got)

	// Max over both axes at once.
	k0 := g.ReduceVar(ConstInt(2), "k0")
	k1 := g.ReduceVar(ConstInt(4), "k1")
	total := g.Compute(Dims(1), x.DType(), ruleFunc(func(index []*Expr) *Expr {
		return ReduceMax(x.At(VarRef(k0), VarRef(k1)), MinValue(dtypes.Float32))
	}), "total_max", k0, k1)
	got, err = EvalAt(total, env, 0)
	require.NoError(t, err)
	require.Equal(t, 8.0, got)

	// Reduction variables stay scoped to the reduction: the environment is
	// unchanged afterwards.
	_, err = Eval(VarRef(k), env)
	require.ErrorContains(t, err, "unbound variable")
}
