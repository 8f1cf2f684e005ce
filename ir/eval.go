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

package ir

import (
	"math"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Env binds placeholder tensors to concrete data and bound variables to
// concrete values, for Eval. An Env is not safe for concurrent use.
type Env struct {
	vars   map[*Var]int64
	inputs map[*Tensor]*inputData
}

type inputData struct {
	data []float64
	dims []int
}

// NewEnv creates an empty evaluation environment.
func NewEnv() *Env {
	return &Env{
		vars:   make(map[*Var]int64),
		inputs: make(map[*Tensor]*inputData),
	}
}

// BindInput attaches row-major data with the given concrete dimensions to a
// placeholder tensor. It panics if the data length disagrees with the
// dimensions, or if a constant symbolic dimension disagrees with the
// corresponding concrete one. It returns the Env, so bindings can be
// cascaded.
func (env *Env) BindInput(t *Tensor, data []float64, dims ...int) *Env {
	if !t.IsPlaceholder() {
		Panicf("Env.BindInput: tensor %q is computed, only placeholders take data", t.Name())
	}
	if len(dims) != t.Rank() {
		Panicf("Env.BindInput: tensor %q has rank %d, got %d dimensions", t.Name(), t.Rank(), len(dims))
	}
	total := 1
	for i, dim := range dims {
		if symbolic, ok := constInt(t.Shape()[i]); ok && symbolic != int64(dim) {
			Panicf("Env.BindInput: tensor %q axis %d has symbolic dimension %d, got %d", t.Name(), i, symbolic, dim)
		}
		total *= dim
	}
	if total != len(data) {
		Panicf("Env.BindInput: tensor %q dimensions %v need %d values, got %d", t.Name(), dims, total, len(data))
	}
	env.inputs[t] = &inputData{data: data, dims: dims}
	return env
}

// BindVar binds a variable to a concrete value. It returns the Env, so
// bindings can be cascaded.
func (env *Env) BindVar(v *Var, value int) *Env {
	env.vars[v] = int64(value)
	return env
}

// Eval interprets the expression concretely: variables and placeholder data
// are resolved through env, computed tensors through their body rules, and
// reduction nodes by iterating their unbound reduction variables over the
// declared extents. Booleans evaluate to 0 or 1.
//
// Eval is an inspection and testing aid: the lowering operators never call
// it.
func Eval(e *Expr, env *Env) (float64, error) {
	return eval(e, env)
}

// EvalAt evaluates one element of a tensor at a concrete index tuple.
func EvalAt(t *Tensor, env *Env, indices ...int) (float64, error) {
	if len(indices) != t.Rank() {
		return 0, errors.Errorf("tensor %q has rank %d, got %d indices", t.Name(), t.Rank(), len(indices))
	}
	idx := make([]int64, len(indices))
	for i, v := range indices {
		idx[i] = int64(v)
	}
	return tensorAt(t, idx, env)
}

func eval(e *Expr, env *Env) (float64, error) {
	if e == nil {
		return 0, errors.New("cannot evaluate nil expression")
	}
	switch e.op {
	case OpConst:
		switch v := e.value.(type) {
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		}
		return 0, errors.Errorf("malformed constant %v (%T)", e.value, e.value)
	case OpVar:
		value, bound := env.vars[e.v]
		if !bound {
			return 0, errors.Errorf("unbound variable %q", e.v.Name())
		}
		return float64(value), nil
	case OpTensorAccess:
		idx := make([]int64, len(e.args))
		for i, arg := range e.args {
			v, err := evalInt(arg, env)
			if err != nil {
				return 0, errors.Wrapf(err, "index %d of access to tensor %q", i, e.tensor.Name())
			}
			idx[i] = v
		}
		return tensorAt(e.tensor, idx, env)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpMin, OpMax:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		b, err := eval(e.args[1], env)
		if err != nil {
			return 0, err
		}
		return evalArith(e, a, b)
	case OpSqrt:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		return math.Sqrt(a), nil
	case OpCast:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		if e.dtype.IsInt() {
			return float64(int64(a)), nil
		}
		if e.dtype == dtypes.Bool {
			if a != 0 {
				return 1, nil
			}
			return 0, nil
		}
		return a, nil
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		b, err := eval(e.args[1], env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(evalCompare(e.op, a, b)), nil
	case OpAnd:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		if a == 0 {
			return 0, nil
		}
		b, err := eval(e.args[1], env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(b != 0), nil
	case OpOr:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		if a != 0 {
			return 1, nil
		}
		b, err := eval(e.args[1], env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(b != 0), nil
	case OpNot:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(a == 0), nil
	case OpSelect:
		cond, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return eval(e.args[1], env)
		}
		return eval(e.args[2], env)
	case OpReduceSum, OpReduceMax:
		return evalReduce(e, env)
	}
	return 0, errors.Errorf("cannot evaluate %s expression", e.op)
}

func evalArith(e *Expr, a, b float64) (float64, error) {
	if e.dtype.IsInt() {
		x, y := int64(a), int64(b)
		switch e.op {
		case OpAdd:
			return float64(x + y), nil
		case OpSub:
			return float64(x - y), nil
		case OpMul:
			return float64(x * y), nil
		case OpDiv:
			if y == 0 {
				return 0, errors.New("integer division by zero")
			}
			return float64(floorDiv(x, y)), nil
		case OpMod:
			if y == 0 {
				return 0, errors.New("integer modulo by zero")
			}
			return float64(floorMod(x, y)), nil
		case OpMin:
			return float64(min(x, y)), nil
		case OpMax:
			return float64(max(x, y)), nil
		}
	}
	switch e.op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		return a / b, nil
	case OpMin:
		return math.Min(a, b), nil
	case OpMax:
		return math.Max(a, b), nil
	}
	return 0, errors.Errorf("%s not defined for dtype %s", e.op, e.dtype)
}

func evalCompare(op OpType, a, b float64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	}
	return false
}

func evalReduce(e *Expr, env *Env) (float64, error) {
	body, identity := e.args[0], e.args[1]
	var reduceVars []*Var
	collectUnboundReduceVars(body, env, &reduceVars)
	extents := make([]int64, len(reduceVars))
	for i, v := range reduceVars {
		extent, err := evalInt(v.Extent(), env)
		if err != nil {
			return 0, errors.Wrapf(err, "extent of reduction variable %q", v.Name())
		}
		extents[i] = extent
	}
	acc, err := eval(identity, env)
	if err != nil {
		return 0, err
	}
	for _, extent := range extents {
		if extent <= 0 {
			return acc, nil
		}
	}
	// Iterate the cartesian product of the reduction domains.
	idx := make([]int64, len(reduceVars))
	for {
		for i, v := range reduceVars {
			env.vars[v] = idx[i]
		}
		value, err := eval(body, env)
		if err != nil {
			for _, v := range reduceVars {
				delete(env.vars, v)
			}
			return 0, err
		}
		if e.op == OpReduceSum {
			acc += value
		} else {
			acc = math.Max(acc, value)
		}
		carry := len(idx) - 1
		for carry >= 0 {
			idx[carry]++
			if idx[carry] < extents[carry] {
				break
			}
			idx[carry] = 0
			carry--
		}
		if carry < 0 {
			break
		}
	}
	for _, v := range reduceVars {
		delete(env.vars, v)
	}
	return acc, nil
}

func collectUnboundReduceVars(e *Expr, env *Env, out *[]*Var) {
	if e == nil {
		return
	}
	if e.op == OpVar && e.v.IsReduce() {
		if _, bound := env.vars[e.v]; !bound {
			for _, seen := range *out {
				if seen == e.v {
					return
				}
			}
			*out = append(*out, e.v)
		}
		return
	}
	for _, arg := range e.args {
		collectUnboundReduceVars(arg, env, out)
	}
}

func tensorAt(t *Tensor, idx []int64, env *Env) (float64, error) {
	if t.IsPlaceholder() {
		input, bound := env.inputs[t]
		if !bound {
			return 0, errors.Errorf("no data bound for input tensor %q", t.Name())
		}
		flat := int64(0)
		for i, dim := range input.dims {
			if idx[i] < 0 || idx[i] >= int64(dim) {
				return 0, errors.Errorf("index %d out of range [0, %d) for axis %d of tensor %q", idx[i], dim, i, t.Name())
			}
			flat = flat*int64(dim) + idx[i]
		}
		return input.data[flat], nil
	}
	index := make([]*Expr, len(idx))
	for i, v := range idx {
		index[i] = ConstInt(v)
	}
	value, err := eval(t.BodyAt(index), env)
	if err != nil {
		return 0, errors.Wrapf(err, "evaluating tensor %q", t.Name())
	}
	return value, nil
}

func evalInt(e *Expr, env *Env) (int64, error) {
	v, err := eval(e, env)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
