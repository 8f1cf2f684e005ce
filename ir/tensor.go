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
	"fmt"
	"sync"
	"sync/atomic"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"k8s.io/klog/v2"
)

// Var is a bound iteration or reduction variable with domain [0, extent).
// Output-index variables are implicitly bound by the Compute constructor;
// reduction variables are declared by the caller and scoped to the single
// Compute call that receives them.
type Var struct {
	name   string
	extent *Expr
	reduce bool
}

// Name returns the variable's name, unique within its Graph.
func (v *Var) Name() string { return v.name }

// Extent returns the symbolic (Int32) extent of the variable's domain.
func (v *Var) Extent() *Expr { return v.extent }

// IsReduce reports whether the variable is a reduction variable.
func (v *Var) IsReduce() bool { return v.reduce }

// Expr returns an expression referencing the variable. Shorthand for
// VarRef(v).
func (v *Var) Expr() *Expr { return VarRef(v) }

// Body is the rule attached to a computed tensor: it maps an index tuple
// (one Int32 expression per axis) to the scalar expression of that element.
//
// Implementations are small immutable capture structs holding the operands
// and parameters the rule closes over, so tensor bodies stay inspectable.
// BuildAt must be pure: same index expressions in, same expression tree out.
type Body interface {
	BuildAt(index []*Expr) *Expr
}

// Tensor is an immutable symbolic N-dimensional value: a shape of symbolic
// Int32 expressions, an element dtype, a name unique within its Graph, and —
// for computed tensors — a lazy body rule plus the reduction variables it was
// built with. Placeholder tensors (graph inputs) carry no body.
//
// Tensors are created by Graph.Compute or Graph.Placeholder only, and shared
// by reference wherever later expressions access their elements.
type Tensor struct {
	graph      *Graph
	name       string
	dtype      dtypes.DType
	shape      []*Expr
	body       Body
	reduceVars []*Var
}

// Name returns the tensor's name, unique within its Graph.
func (t *Tensor) Name() string { return t.name }

// DType returns the element type of the tensor.
func (t *Tensor) DType() dtypes.DType { return t.dtype }

// Graph returns the graph-construction session that owns the tensor.
func (t *Tensor) Graph() *Graph { return t.graph }

// Shape returns the symbolic dimension expressions, one per axis. The
// returned slice must not be modified.
func (t *Tensor) Shape() []*Expr { return t.shape }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Dim returns the symbolic dimension of the given axis.
func (t *Tensor) Dim(axis int) *Expr {
	if axis < 0 || axis >= t.Rank() {
		Panicf("Tensor.Dim(%d): out-of-bounds for rank %d tensor %q", axis, t.Rank(), t.name)
	}
	return t.shape[axis]
}

// IsPlaceholder reports whether the tensor is a graph input, with no body
// rule of its own.
func (t *Tensor) IsPlaceholder() bool { return t.body == nil }

// ReduceVars returns the reduction variables the tensor was built with, or
// nil. The returned slice must not be modified.
func (t *Tensor) ReduceVars() []*Var { return t.reduceVars }

// At returns the scalar expression accessing the tensor element at the given
// index expressions, one Int32 expression per axis.
func (t *Tensor) At(indices ...*Expr) *Expr {
	if len(indices) != t.Rank() {
		Panicf("Tensor.At: tensor %q has rank %d, got %d indices", t.name, t.Rank(), len(indices))
	}
	for i, idx := range indices {
		if idx == nil {
			Panicf("Tensor.At: tensor %q got nil index for axis %d", t.name, i)
		}
		if !idx.DType().IsInt() {
			Panicf("Tensor.At: tensor %q index for axis %d has dtype %s, want an integer", t.name, i, idx.DType())
		}
	}
	return &Expr{op: OpTensorAccess, dtype: t.dtype, args: indices, tensor: t}
}

// BodyAt applies the tensor's body rule to the given index tuple. It panics
// for placeholder tensors, which have no body.
func (t *Tensor) BodyAt(index []*Expr) *Expr {
	if t.body == nil {
		Panicf("Tensor.BodyAt: tensor %q is a placeholder, it has no body rule", t.name)
	}
	if len(index) != t.Rank() {
		Panicf("Tensor.BodyAt: tensor %q has rank %d, got %d indices", t.name, t.Rank(), len(index))
	}
	return t.body.BuildAt(index)
}

// AxisVars returns one fresh iteration variable per axis, with extents set to
// the tensor's dimensions. Convenient for inspecting a tensor's body at its
// canonical index tuple.
func (t *Tensor) AxisVars() []*Var {
	vars := make([]*Var, t.Rank())
	for i := range vars {
		vars[i] = t.graph.IterVar(t.shape[i], fmt.Sprintf("%s_i%d", t.name, i))
	}
	return vars
}

// Graph is a graph-construction session: it owns the name-uniquing counter
// and registers every tensor created through it. A single Graph is safe for
// concurrent use — independent lowering calls may build on the same session
// from multiple goroutines.
type Graph struct {
	counter atomic.Int64

	mu      sync.Mutex
	tensors map[string]*Tensor
}

// New creates an empty graph-construction session.
func New() *Graph {
	return &Graph{tensors: make(map[string]*Tensor)}
}

// UniqueName returns prefix with a fresh numeric suffix, unique within the
// graph. Names are deterministic for a single session but not across runs of
// different construction orders.
func (g *Graph) UniqueName(prefix string) string {
	if prefix == "" {
		prefix = "t"
	}
	return fmt.Sprintf("%s_%d", prefix, g.counter.Add(1))
}

// IterVar declares an iteration variable with the given extent. If name is
// empty a fresh one is generated.
func (g *Graph) IterVar(extent *Expr, name string) *Var {
	return g.newVar(extent, name, false)
}

// ReduceVar declares a reduction variable with the given extent, to be
// passed to the single Compute call that reduces over it. If name is empty a
// fresh one is generated.
func (g *Graph) ReduceVar(extent *Expr, name string) *Var {
	return g.newVar(extent, name, true)
}

func (g *Graph) newVar(extent *Expr, name string, reduce bool) *Var {
	if extent == nil {
		Panicf("Graph: variable %q needs an extent expression", name)
	}
	if !extent.DType().IsInt() {
		Panicf("Graph: variable %q extent has dtype %s, want an integer", name, extent.DType())
	}
	if name == "" {
		name = g.UniqueName("i")
	}
	return &Var{name: name, extent: extent, reduce: reduce}
}

// Tensors returns the tensors registered in the session, in no particular
// order.
func (g *Graph) Tensors() []*Tensor {
	g.mu.Lock()
	defer g.mu.Unlock()
	all := make([]*Tensor, 0, len(g.tensors))
	for _, t := range g.tensors {
		all = append(all, t)
	}
	return all
}

// TensorByName returns the registered tensor with the given name, or nil.
func (g *Graph) TensorByName(name string) *Tensor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tensors[name]
}

// Placeholder declares a graph input: a tensor with a shape and dtype but no
// body rule. Its elements are only available through Tensor.At.
func (g *Graph) Placeholder(name string, dtype dtypes.DType, shape ...*Expr) *Tensor {
	checkShape(name, shape)
	t := &Tensor{graph: g, name: name, dtype: dtype, shape: shape}
	g.register(t)
	return t
}

// Compute is the substrate's compute constructor: it allocates a new tensor
// with the given output shape and dtype, whose elements are defined by the
// body rule. Reduction variables used inside the body must be declared here;
// they are scoped to this single call.
//
// The name must be unique within the graph; if empty a fresh one is
// generated.
func (g *Graph) Compute(shape []*Expr, dtype dtypes.DType, body Body, name string, reduceVars ...*Var) *Tensor {
	checkShape(name, shape)
	if body == nil {
		Panicf("Graph.Compute(%q): nil body rule", name)
	}
	for _, rv := range reduceVars {
		if rv == nil {
			Panicf("Graph.Compute(%q): nil reduction variable", name)
		}
		if !rv.IsReduce() {
			Panicf("Graph.Compute(%q): variable %q is not a reduction variable", name, rv.Name())
		}
	}
	if name == "" {
		name = g.UniqueName("tensor")
	}
	t := &Tensor{graph: g, name: name, dtype: dtype, shape: shape, body: body, reduceVars: reduceVars}
	g.register(t)
	klog.V(2).Infof("ir: compute %q rank=%d reduceVars=%d", name, len(shape), len(reduceVars))
	return t
}

func checkShape(name string, shape []*Expr) {
	if len(shape) == 0 {
		Panicf("Graph: tensor %q needs a non-empty shape", name)
	}
	for i, dim := range shape {
		if dim == nil {
			Panicf("Graph: tensor %q has nil dimension for axis %d", name, i)
		}
		if !dim.DType().IsInt() {
			Panicf("Graph: tensor %q dimension for axis %d has dtype %s, want an integer", name, i, dim.DType())
		}
	}
}

func (g *Graph) register(t *Tensor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, found := g.tensors[t.name]; found {
		Panicf("Graph: tensor name %q already taken", t.name)
	}
	g.tensors[t.name] = t
}

// Dims converts concrete dimensions to the symbolic Int32 shape expressions
// used everywhere in this package.
func Dims(dims ...int) []*Expr {
	shape := make([]*Expr, len(dims))
	for i, dim := range dims {
		shape[i] = ConstInt(dim)
	}
	return shape
}
