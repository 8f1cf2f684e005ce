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
	"fmt"
	"sync"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	. "github.com/symgraph/symgraph/ir"
)

// ruleFunc adapts a plain function to the Body interface, for tests.
type ruleFunc func(index []*Expr) *Expr

func (f ruleFunc) BuildAt(index []*Expr) *Expr { return f(index) }

func TestConst(t *testing.T) {
	c := ConstInt(7)
	require.Equal(t, OpConst, c.Op())
	require.Equal(t, dtypes.Int32, c.DType())
	require.Equal(t, int64(7), c.ConstValue())

	f := Const(dtypes.Float32, float32(1.5))
	require.Equal(t, 1.5, f.ConstValue())

	h := Const(dtypes.Float16, float16.Fromfloat32(2.0))
	require.Equal(t, 2.0, h.ConstValue())

	b := Const(dtypes.Bool, true)
	require.Equal(t, true, b.ConstValue())

	// Integral floats are accepted for integer dtypes, fractional ones are
	// not.
	require.Equal(t, int64(3), Const(dtypes.Int32, 3.0).ConstValue())
	require.Panics(t, func() { Const(dtypes.Int32, 3.5) })
	require.Panics(t, func() { Const(dtypes.Float32, "nope") })
	require.Panics(t, func() { Const(dtypes.Float32, true) })
}

func TestMinValue(t *testing.T) {
	for _, dtype := range []dtypes.DType{dtypes.Float32, dtypes.Float64, dtypes.Float16, dtypes.Int32} {
		m := MinValue(dtype)
		require.Equal(t, dtype, m.DType(), "dtype %s", dtype)
		require.NotNil(t, m.ConstValue(), "dtype %s", dtype)
	}
}

func TestExprConstructors(t *testing.T) {
	g := New()
	i := g.IterVar(ConstInt(10), "i")
	x := VarRef(i)
	require.Equal(t, OpVar, x.Op())
	require.Equal(t, dtypes.Int32, x.DType())
	require.Same(t, i, x.BoundVar())

	sum := Add(x, ConstInt(1))
	require.Equal(t, OpAdd, sum.Op())
	require.Equal(t, dtypes.Int32, sum.DType())

	cmp := Lt(x, ConstInt(10))
	require.Equal(t, dtypes.Bool, cmp.DType())

	sel := Select(cmp, x, ConstInt(0))
	require.Equal(t, dtypes.Int32, sel.DType())

	// Mixed dtypes and malformed operands are rejected.
	require.Panics(t, func() { Add(x, Const(dtypes.Float32, 1.0)) })
	require.Panics(t, func() { Mod(Const(dtypes.Float32, 1.0), Const(dtypes.Float32, 1.0)) })
	require.Panics(t, func() { Sqrt(ConstInt(4)) })
	require.Panics(t, func() { And(cmp, x) })
	require.Panics(t, func() { Select(x, x, x) })
	require.Panics(t, func() { Select(cmp, x, Const(dtypes.Float32, 0.0)) })
	require.Panics(t, func() { ReduceSum(x, Const(dtypes.Float32, 0.0)) })
	require.Panics(t, func() { AndAll(nil) })
}

func TestGraphCompute(t *testing.T) {
	g := New()
	x := g.Placeholder("x", dtypes.Float32, Dims(2, 3)...)
	require.True(t, x.IsPlaceholder())
	require.Equal(t, 2, x.Rank())
	require.Equal(t, dtypes.Float32, x.DType())

	identity := ruleFunc(func(index []*Expr) *Expr { return x.At(index...) })
	y := g.Compute(x.Shape(), x.DType(), identity, "y")
	require.False(t, y.IsPlaceholder())
	require.Same(t, y, g.TensorByName("y"))

	vars := y.AxisVars()
	index := []*Expr{VarRef(vars[0]), VarRef(vars[1])}
	require.True(t, Equal(y.BodyAt(index), x.At(index...)))

	// Placeholders have no body rule.
	require.Panics(t, func() { x.BodyAt(index) })
	// Names are unique per graph.
	require.Panics(t, func() { g.Compute(x.Shape(), x.DType(), identity, "y") })
	// Shapes must be non-empty integer expressions.
	require.Panics(t, func() { g.Placeholder("empty", dtypes.Float32) })
	require.Panics(t, func() {
		g.Placeholder("bad", dtypes.Float32, Const(dtypes.Float32, 2.0))
	})
	// Reduction variables must be flagged as such.
	iter := g.IterVar(ConstInt(3), "iter")
	require.Panics(t, func() {
		g.Compute(x.Shape(), x.DType(), identity, "z", iter)
	})
	// Access with the wrong arity or dtype is rejected.
	require.Panics(t, func() { x.At(ConstInt(0)) })
	require.Panics(t, func() { x.At(ConstInt(0), Const(dtypes.Float32, 0.0)) })
}

func TestUniqueNameConcurrency(t *testing.T) {
	g := New()
	const perGoroutine = 200
	var wg sync.WaitGroup
	names := make([][]string, 4)
	for w := range names {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < perGoroutine; n++ {
				names[w] = append(names[w], g.UniqueName("t"))
			}
		}(w)
	}
	wg.Wait()
	seen := make(map[string]bool)
	for _, list := range names {
		for _, name := range list {
			require.False(t, seen[name], "name %q generated twice", name)
			seen[name] = true
		}
	}
	require.Len(t, seen, 4*perGoroutine)
}

func TestExprString(t *testing.T) {
	g := New()
	x := g.Placeholder("x", dtypes.Float32, Dims(4)...)
	i := g.IterVar(ConstInt(4), "i")
	e := Add(x.At(VarRef(i)), Const(dtypes.Float32, 1.0))
	require.Equal(t, "add(x(i), 1)", fmt.Sprintf("%s", e))
}
