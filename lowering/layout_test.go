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

package lowering_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/symgraph/symgraph/lowering"
)

func TestLayoutSpatialAxes(t *testing.T) {
	tests := []struct {
		layout Layout
		axes   []int
		rank   int
	}{
		{LayoutNCW, []int{2}, 3},
		{LayoutNWC, []int{1}, 3},
		{LayoutNCHW, []int{2, 3}, 4},
		{LayoutNHWC, []int{1, 2}, 4},
		{LayoutNCDHW, []int{2, 3, 4}, 5},
		{LayoutNDHWC, []int{1, 2, 3}, 5},
	}
	for _, test := range tests {
		t.Run(test.layout.String(), func(t *testing.T) {
			require.Equal(t, test.axes, test.layout.SpatialAxes())
			require.Equal(t, test.rank, test.layout.Rank())
			require.Equal(t, len(test.axes), test.layout.NumSpatialDims())
		})
	}
}

func TestLayoutUnknownPanics(t *testing.T) {
	require.Panics(t, func() { Layout(42).SpatialAxes() })
	require.False(t, Layout(42).IsALayout())
}
