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

// Package lowering translates declarative neural-network operators —
// elementwise activations, direct convolution, batch normalization,
// N-dimensional padding and pooling — into symbolic per-element computation
// graphs built on package ir.
//
// Every operator receives already-constructed symbolic tensors plus scalar
// or vector parameters, and returns one or more newly allocated tensors
// whose body rules close over the inputs. For each output element the body
// is a closed-form index expression encoding padding, dilation, stride,
// boundary policy and reduction semantics; no iteration is performed and no
// concrete value is ever read or written. The resulting graphs are handed to
// a separate scheduling/code-generation stage.
//
// Operators validate their arguments before allocating any node and panic
// with an error on rank or parameter-list mismatches, following
// github.com/gomlx/exceptions; recover at an outer boundary with
// exceptions.TryCatch. Repeating a valid call always succeeds and produces
// structurally equivalent, name-distinct tensors.
package lowering

import (
	. "github.com/gomlx/exceptions"

	"github.com/symgraph/symgraph/ir"
)

// graphFromInputs returns the graph-construction session shared by the given
// tensors, panicking if any is nil or if they belong to different sessions.
func graphFromInputs(inputs ...*ir.Tensor) *ir.Graph {
	var g *ir.Graph
	for i, input := range inputs {
		if input == nil {
			Panicf("lowering: input tensor #%d is nil", i)
		}
		if g == nil {
			g = input.Graph()
		} else if input.Graph() != g {
			Panicf("lowering: input tensors %q and %q belong to different graphs",
				inputs[0].Name(), input.Name())
		}
	}
	if g == nil {
		Panicf("lowering: no input tensors given")
	}
	return g
}
