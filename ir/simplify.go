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
)

// Simplify returns an algebraically simplified version of e: constants are
// folded and the usual identities applied (x+0, x*1, x*0, x/1, x%1,
// select on a constant condition, boolean short-circuits, casts to the same
// dtype). Sub-expressions that do not change are shared with the input, so
// simplifying an already-simple expression returns it unchanged.
func Simplify(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	args := e.args
	var simplified []*Expr
	for i, arg := range args {
		s := Simplify(arg)
		if s != arg && simplified == nil {
			simplified = make([]*Expr, len(args))
			copy(simplified, args[:i])
		}
		if simplified != nil {
			simplified[i] = s
		}
	}
	if simplified != nil {
		clone := *e
		clone.args = simplified
		e = &clone
	}
	return applyRules(e)
}

func applyRules(e *Expr) *Expr {
	switch e.op {
	case OpAdd:
		a, b := e.args[0], e.args[1]
		if folded, ok := foldArith(e); ok {
			return folded
		}
		if isZero(a) {
			return b
		}
		if isZero(b) {
			return a
		}
	case OpSub:
		a, b := e.args[0], e.args[1]
		if folded, ok := foldArith(e); ok {
			return folded
		}
		if isZero(b) {
			return a
		}
		if e.dtype.IsInt() && Equal(a, b) {
			return Zero(e.dtype)
		}
	case OpMul:
		a, b := e.args[0], e.args[1]
		if folded, ok := foldArith(e); ok {
			return folded
		}
		if isZero(a) || isZero(b) {
			return Zero(e.dtype)
		}
		if isOne(a) {
			return b
		}
		if isOne(b) {
			return a
		}
	case OpDiv:
		a, b := e.args[0], e.args[1]
		if isOne(b) {
			return a
		}
		if isConst(b) && !isZero(b) {
			if folded, ok := foldArith(e); ok {
				return folded
			}
			if isZero(a) {
				return Zero(e.dtype)
			}
		}
	case OpMod:
		a, b := e.args[0], e.args[1]
		if isOne(b) {
			return Zero(e.dtype)
		}
		if isConst(b) && !isZero(b) {
			if folded, ok := foldArith(e); ok {
				return folded
			}
			if isZero(a) {
				return Zero(e.dtype)
			}
		}
	case OpMin, OpMax:
		if folded, ok := foldArith(e); ok {
			return folded
		}
		if Equal(e.args[0], e.args[1]) {
			return e.args[0]
		}
	case OpSqrt:
		if f, ok := constFloat(e.args[0]); ok && f >= 0 {
			return Const(e.dtype, math.Sqrt(f))
		}
	case OpCast:
		arg := e.args[0]
		if arg.dtype == e.dtype {
			return arg
		}
		if isConst(arg) {
			return Const(e.dtype, arg.value)
		}
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		if folded, ok := foldCompare(e); ok {
			return folded
		}
	case OpAnd:
		a, b := e.args[0], e.args[1]
		if v, ok := constBool(a); ok {
			if !v {
				return Const(e.dtype, false)
			}
			return b
		}
		if v, ok := constBool(b); ok {
			if !v {
				return Const(e.dtype, false)
			}
			return a
		}
	case OpOr:
		a, b := e.args[0], e.args[1]
		if v, ok := constBool(a); ok {
			if v {
				return Const(e.dtype, true)
			}
			return b
		}
		if v, ok := constBool(b); ok {
			if v {
				return Const(e.dtype, true)
			}
			return a
		}
	case OpNot:
		arg := e.args[0]
		if v, ok := constBool(arg); ok {
			return Const(e.dtype, !v)
		}
		if arg.op == OpNot {
			return arg.args[0]
		}
	case OpSelect:
		cond, onTrue, onFalse := e.args[0], e.args[1], e.args[2]
		if v, ok := constBool(cond); ok {
			if v {
				return onTrue
			}
			return onFalse
		}
		if Equal(onTrue, onFalse) {
			return onTrue
		}
	}
	return e
}

func foldArith(e *Expr) (*Expr, bool) {
	a, b := e.args[0], e.args[1]
	if !isConst(a) || !isConst(b) {
		return nil, false
	}
	if e.dtype.IsInt() {
		x, _ := constInt(a)
		y, _ := constInt(b)
		var r int64
		switch e.op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpMul:
			r = x * y
		case OpDiv:
			r = floorDiv(x, y)
		case OpMod:
			r = floorMod(x, y)
		case OpMin:
			r = min(x, y)
		case OpMax:
			r = max(x, y)
		default:
			return nil, false
		}
		return Const(e.dtype, r), true
	}
	if e.dtype.IsFloat() {
		x, _ := constFloat(a)
		y, _ := constFloat(b)
		var r float64
		switch e.op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpMul:
			r = x * y
		case OpDiv:
			r = x / y
		case OpMin:
			r = math.Min(x, y)
		case OpMax:
			r = math.Max(x, y)
		default:
			return nil, false
		}
		return Const(e.dtype, r), true
	}
	return nil, false
}

func foldCompare(e *Expr) (*Expr, bool) {
	a, b := e.args[0], e.args[1]
	if !isConst(a) || !isConst(b) {
		// x==x, x<=x and friends hold for integer expressions (no NaN).
		if a.dtype.IsInt() && Equal(a, b) {
			switch e.op {
			case OpEq, OpLe, OpGe:
				return Const(e.dtype, true), true
			case OpNe, OpLt, OpGt:
				return Const(e.dtype, false), true
			}
		}
		return nil, false
	}
	var lt, eq bool
	switch {
	case a.dtype.IsInt():
		x, _ := constInt(a)
		y, _ := constInt(b)
		lt, eq = x < y, x == y
	case a.dtype.IsFloat():
		x, _ := constFloat(a)
		y, _ := constFloat(b)
		lt, eq = x < y, x == y
	default:
		return nil, false
	}
	var r bool
	switch e.op {
	case OpEq:
		r = eq
	case OpNe:
		r = !eq
	case OpLt:
		r = lt
	case OpLe:
		r = lt || eq
	case OpGt:
		r = !lt && !eq
	case OpGe:
		r = !lt
	}
	return Const(e.dtype, r), true
}

// Equal reports structural equality: same operators, dtypes, constants and
// operands, with bound variables and tensors compared by identity.
func Equal(a, b *Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.op != b.op || a.dtype != b.dtype || len(a.args) != len(b.args) {
		return false
	}
	if a.value != b.value || a.v != b.v || a.tensor != b.tensor {
		return false
	}
	for i := range a.args {
		if !Equal(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

// MathEqual reports whether a and b are symbolically equal: structurally
// equal after simplification, or — for same-dtype numeric expressions —
// whose simplified difference is the zero constant.
func MathEqual(a, b *Expr) bool {
	sa, sb := Simplify(a), Simplify(b)
	if Equal(sa, sb) {
		return true
	}
	if sa == nil || sb == nil || sa.dtype != sb.dtype {
		return false
	}
	if !sa.dtype.IsInt() && !sa.dtype.IsFloat() {
		return false
	}
	return isZero(Simplify(Sub(sa, sb)))
}

func isConst(e *Expr) bool { return e != nil && e.op == OpConst }

func constInt(e *Expr) (int64, bool) {
	if !isConst(e) {
		return 0, false
	}
	v, ok := e.value.(int64)
	return v, ok
}

func constFloat(e *Expr) (float64, bool) {
	if !isConst(e) {
		return 0, false
	}
	v, ok := e.value.(float64)
	return v, ok
}

func constBool(e *Expr) (bool, bool) {
	if !isConst(e) {
		return false, false
	}
	v, ok := e.value.(bool)
	return v, ok
}

func isZero(e *Expr) bool {
	if v, ok := constInt(e); ok {
		return v == 0
	}
	if v, ok := constFloat(e); ok {
		return v == 0
	}
	return false
}

func isOne(e *Expr) bool {
	if v, ok := constInt(e); ok {
		return v == 1
	}
	if v, ok := constFloat(e); ok {
		return v == 1
	}
	return false
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
