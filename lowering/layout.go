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
)

// Layout names the data layout of a pooled tensor: batch first, then either
// channel-first (NC...) or channel-last (N...C) around the spatial axes.
type Layout int

const (
	LayoutNCW Layout = iota
	LayoutNWC
	LayoutNCHW
	LayoutNHWC
	LayoutNCDHW
	LayoutNDHWC
)

//go:generate enumer -type=Layout -trimprefix=Layout layout.go

// SpatialAxes returns the axis positions of the spatial dimensions, in axis
// order. It panics on a value outside the enumeration.
func (l Layout) SpatialAxes() []int {
	switch l {
	case LayoutNCW:
		return []int{2}
	case LayoutNWC:
		return []int{1}
	case LayoutNCHW:
		return []int{2, 3}
	case LayoutNHWC:
		return []int{1, 2}
	case LayoutNCDHW:
		return []int{2, 3, 4}
	case LayoutNDHWC:
		return []int{1, 2, 3}
	}
	Panicf("unsupported data layout %v", l)
	return nil
}

// NumSpatialDims returns the number of spatial dimensions of the layout.
func (l Layout) NumSpatialDims() int { return len(l.SpatialAxes()) }

// Rank returns the tensor rank the layout describes: the spatial dimensions
// plus the batch and channel axes.
func (l Layout) Rank() int { return l.NumSpatialDims() + 2 }
