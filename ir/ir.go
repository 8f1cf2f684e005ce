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

// Package ir defines the symbolic expression substrate consumed by the
// lowering operators: scalar expression trees, bound iteration/reduction
// variables, lazy-bodied symbolic tensors and the Compute constructor that
// allocates them.
//
// Nothing in this package evaluates anything at construction time: an Expr
// is an immutable tree over constants, bound variables, arithmetic,
// comparison and logical operators, conditional selection, tensor-element
// access and reduction combinators. Tensors record a shape (a sequence of
// symbolic Int32 expressions), an element DType (see
// github.com/gomlx/gopjrt/dtypes) and a body rule mapping an index tuple to a
// scalar expression. Graphs of tensors are acyclic: a body may reference
// earlier tensors but never its own.
//
// Simplify implements the algebraic simplifier and MathEqual the symbolic
// equality predicate used by the lowering operators. Eval is a small concrete
// interpreter used for inspection and by tests — the lowering layer itself
// never evaluates.
//
// Invalid arguments (wrong dtype, rank mismatch, malformed constants) panic
// with an error, following github.com/gomlx/exceptions: recover them at an
// outer boundary with exceptions.TryCatch if needed.
package ir

import (
	"fmt"
	"strings"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// OpType identifies the operator at the root of an Expr.
type OpType int

const (
	OpInvalid OpType = iota
	OpConst
	OpVar
	OpTensorAccess
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpSqrt
	OpCast
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpSelect
	OpReduceSum
	OpReduceMax
)

//go:generate enumer -type=OpType -trimprefix=Op -transform=snake ir.go

// Expr is a node of a scalar symbolic expression tree. Exprs are immutable
// once built and structurally shared by every consumer that references them.
type Expr struct {
	op    OpType
	dtype dtypes.DType
	args  []*Expr

	// Leaf payloads. value is set for OpConst (canonicalized to int64,
	// float64 or bool), v for OpVar, tensor for OpTensorAccess (whose args
	// are the indices).
	value  any
	v      *Var
	tensor *Tensor
}

// Op returns the operator tag of the expression.
func (e *Expr) Op() OpType { return e.op }

// DType returns the element type the expression computes.
func (e *Expr) DType() dtypes.DType { return e.dtype }

// Args returns the operand expressions. The returned slice must not be
// modified.
func (e *Expr) Args() []*Expr { return e.args }

// ConstValue returns the canonicalized constant payload (int64, float64 or
// bool) of an OpConst expression, or nil for any other operator.
func (e *Expr) ConstValue() any {
	if e.op != OpConst {
		return nil
	}
	return e.value
}

// BoundVar returns the variable referenced by an OpVar expression, else nil.
func (e *Expr) BoundVar() *Var { return e.v }

// TensorOperand returns the tensor referenced by an OpTensorAccess
// expression, else nil. The access indices are in Args.
func (e *Expr) TensorOperand() *Tensor { return e.tensor }

// Const builds a constant expression of the given dtype. The value may be
// any Go integer or float type, bool, or a float16.Float16; it is
// canonicalized to the dtype's domain. It panics if the value cannot
// represent a constant of dtype.
func Const(dtype dtypes.DType, value any) *Expr {
	canonical, err := canonicalizeConst(dtype, value)
	if err != nil {
		Panicf("ir.Const(%s, %v (%T)): %v", dtype, value, value, err)
	}
	return &Expr{op: OpConst, dtype: dtype, value: canonical}
}

// ConstInt builds an Int32-typed constant, the type of all shape and index
// arithmetic.
func ConstInt[T constraints.Integer](value T) *Expr {
	return Const(dtypes.Int32, int64(value))
}

// Zero returns the zero constant of the given dtype.
func Zero(dtype dtypes.DType) *Expr {
	if dtype == dtypes.Bool {
		return Const(dtype, false)
	}
	return Const(dtype, 0)
}

// One returns the one constant of the given dtype.
func One(dtype dtypes.DType) *Expr {
	if dtype == dtypes.Bool {
		return Const(dtype, true)
	}
	return Const(dtype, 1)
}

// MinValue returns the lowest representable constant of the given dtype,
// e.g. the reduction identity for a max-reduction.
func MinValue(dtype dtypes.DType) *Expr {
	return Const(dtype, dtype.LowestValue())
}

func canonicalizeConst(dtype dtypes.DType, value any) (any, error) {
	var asInt int64
	var asFloat float64
	var isFloat bool
	switch v := value.(type) {
	case int:
		asInt = int64(v)
	case int8:
		asInt = int64(v)
	case int16:
		asInt = int64(v)
	case int32:
		asInt = int64(v)
	case int64:
		asInt = v
	case uint8:
		asInt = int64(v)
	case uint16:
		asInt = int64(v)
	case uint32:
		asInt = int64(v)
	case uint64:
		asInt = int64(v)
	case uint:
		asInt = int64(v)
	case float32:
		asFloat, isFloat = float64(v), true
	case float64:
		asFloat, isFloat = v, true
	case float16.Float16:
		asFloat, isFloat = float64(v.Float32()), true
	case bool:
		if dtype != dtypes.Bool {
			return nil, fmt.Errorf("bool value for non-bool dtype")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported constant type")
	}
	switch {
	case dtype == dtypes.Bool:
		if isFloat {
			return asFloat != 0, nil
		}
		return asInt != 0, nil
	case dtype.IsFloat():
		if !isFloat {
			return float64(asInt), nil
		}
		return asFloat, nil
	case dtype.IsInt():
		if isFloat {
			if asFloat != float64(int64(asFloat)) {
				return nil, fmt.Errorf("non-integral value for integer dtype")
			}
			return int64(asFloat), nil
		}
		return asInt, nil
	}
	return nil, fmt.Errorf("dtype %s not supported for constants", dtype)
}

// VarRef returns an expression referencing the bound variable v. Bound
// variables are Int32-typed, the type of all index arithmetic.
func VarRef(v *Var) *Expr {
	if v == nil {
		Panicf("ir.VarRef: nil variable")
	}
	return &Expr{op: OpVar, dtype: dtypes.Int32, v: v}
}

func binary(op OpType, dtype dtypes.DType, a, b *Expr) *Expr {
	if a == nil || b == nil {
		Panicf("ir: nil operand building %s expression", op)
	}
	return &Expr{op: op, dtype: dtype, args: []*Expr{a, b}}
}

func arith(op OpType, a, b *Expr) *Expr {
	if a == nil || b == nil {
		Panicf("ir: nil operand building %s expression", op)
	}
	if a.dtype != b.dtype {
		Panicf("ir: %s requires operands of the same dtype, got %s and %s", op, a.dtype, b.dtype)
	}
	return binary(op, a.dtype, a, b)
}

// Add returns a+b. Operands must share a dtype.
func Add(a, b *Expr) *Expr { return arith(OpAdd, a, b) }

// Sub returns a-b. Operands must share a dtype.
func Sub(a, b *Expr) *Expr { return arith(OpSub, a, b) }

// Mul returns a*b. Operands must share a dtype.
func Mul(a, b *Expr) *Expr { return arith(OpMul, a, b) }

// Div returns a/b — floor division for integer dtypes, following the
// semantics of the downstream loop emitter.
func Div(a, b *Expr) *Expr { return arith(OpDiv, a, b) }

// Mod returns a%b, defined for integer dtypes only.
func Mod(a, b *Expr) *Expr {
	if !a.DType().IsInt() {
		Panicf("ir.Mod: requires an integer dtype, got %s", a.DType())
	}
	return arith(OpMod, a, b)
}

// Min returns the smaller of a and b.
func Min(a, b *Expr) *Expr { return arith(OpMin, a, b) }

// Max returns the larger of a and b.
func Max(a, b *Expr) *Expr { return arith(OpMax, a, b) }

// Sqrt returns the square root of a, defined for float dtypes only.
func Sqrt(a *Expr) *Expr {
	if !a.DType().IsFloat() {
		Panicf("ir.Sqrt: requires a float dtype, got %s", a.DType())
	}
	return &Expr{op: OpSqrt, dtype: a.dtype, args: []*Expr{a}}
}

// Cast converts a to the given dtype.
func Cast(a *Expr, dtype dtypes.DType) *Expr {
	return &Expr{op: OpCast, dtype: dtype, args: []*Expr{a}}
}

func compare(op OpType, a, b *Expr) *Expr {
	if a == nil || b == nil {
		Panicf("ir: nil operand building %s expression", op)
	}
	if a.dtype != b.dtype {
		Panicf("ir: %s requires operands of the same dtype, got %s and %s", op, a.dtype, b.dtype)
	}
	return binary(op, dtypes.Bool, a, b)
}

// Eq returns the boolean expression a == b.
func Eq(a, b *Expr) *Expr { return compare(OpEq, a, b) }

// Ne returns the boolean expression a != b.
func Ne(a, b *Expr) *Expr { return compare(OpNe, a, b) }

// Lt returns the boolean expression a < b.
func Lt(a, b *Expr) *Expr { return compare(OpLt, a, b) }

// Le returns the boolean expression a <= b.
func Le(a, b *Expr) *Expr { return compare(OpLe, a, b) }

// Gt returns the boolean expression a > b.
func Gt(a, b *Expr) *Expr { return compare(OpGt, a, b) }

// Ge returns the boolean expression a >= b.
func Ge(a, b *Expr) *Expr { return compare(OpGe, a, b) }

func logical(op OpType, args ...*Expr) *Expr {
	for _, a := range args {
		if a == nil {
			Panicf("ir: nil operand building %s expression", op)
		}
		if a.dtype != dtypes.Bool {
			Panicf("ir: %s requires Bool operands, got %s", op, a.dtype)
		}
	}
	return &Expr{op: op, dtype: dtypes.Bool, args: args}
}

// And returns the boolean conjunction a && b.
func And(a, b *Expr) *Expr { return logical(OpAnd, a, b) }

// Or returns the boolean disjunction a || b.
func Or(a, b *Expr) *Expr { return logical(OpOr, a, b) }

// Not returns the boolean negation of a.
func Not(a *Expr) *Expr { return logical(OpNot, a) }

// AndAll folds the given conditions left to right with And. It panics if
// conds is empty.
func AndAll(conds []*Expr) *Expr {
	if len(conds) == 0 {
		Panicf("ir.AndAll: no conditions given")
	}
	folded := conds[0]
	for _, cond := range conds[1:] {
		folded = And(folded, cond)
	}
	return folded
}

// Select returns the conditional expression `cond ? onTrue : onFalse`. The
// branches must share a dtype and cond must be Bool.
func Select(cond, onTrue, onFalse *Expr) *Expr {
	if cond == nil || onTrue == nil || onFalse == nil {
		Panicf("ir.Select: nil operand")
	}
	if cond.dtype != dtypes.Bool {
		Panicf("ir.Select: condition must be Bool, got %s", cond.dtype)
	}
	if onTrue.dtype != onFalse.dtype {
		Panicf("ir.Select: branches must share a dtype, got %s and %s", onTrue.dtype, onFalse.dtype)
	}
	return &Expr{op: OpSelect, dtype: onTrue.dtype, args: []*Expr{cond, onTrue, onFalse}}
}

// ReduceSum wraps body in a sum-reduction over the reduction variables the
// enclosing Compute call declares, seeded with the given identity.
func ReduceSum(body, identity *Expr) *Expr {
	return reduction(OpReduceSum, body, identity)
}

// ReduceMax wraps body in a max-reduction over the reduction variables the
// enclosing Compute call declares, seeded with the given identity.
func ReduceMax(body, identity *Expr) *Expr {
	return reduction(OpReduceMax, body, identity)
}

func reduction(op OpType, body, identity *Expr) *Expr {
	if body == nil || identity == nil {
		Panicf("ir: %s requires a body and an identity expression", op)
	}
	if body.dtype != identity.dtype {
		Panicf("ir: %s body (%s) and identity (%s) must share a dtype", op, body.dtype, identity.dtype)
	}
	return &Expr{op: op, dtype: body.dtype, args: []*Expr{body, identity}}
}

// String returns a compact, parseable-by-eye rendering of the expression,
// for logs and test failures.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.op {
	case OpConst:
		return fmt.Sprintf("%v", e.value)
	case OpVar:
		return e.v.Name()
	case OpTensorAccess:
		parts := make([]string, len(e.args))
		for i, arg := range e.args {
			parts[i] = arg.String()
		}
		return fmt.Sprintf("%s(%s)", e.tensor.Name(), strings.Join(parts, ", "))
	}
	parts := make([]string, len(e.args))
	for i, arg := range e.args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", e.op, strings.Join(parts, ", "))
}
