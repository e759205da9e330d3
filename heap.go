// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pyzantine

import (
	"container/heap"
)

// TileMatch is a tile together with its metric value for some color.
type TileMatch struct {
	TileRecord
	Value float64
}

// worse reports whether m is a worse match than other. Ties are broken by id,
// the larger id is worse.
func (m TileMatch) worse(other TileMatch) bool {
	if m.Value != other.Value {
		return m.Value > other.Value
	}
	return m.ID > other.ID
}

// matchHeapInterface implements heap.Interface, the worst match is on top.
type matchHeapInterface []TileMatch

func (h matchHeapInterface) Len() int {
	return len(h)
}

func (h matchHeapInterface) Less(i, j int) bool {
	return h[i].worse(h[j])
}

func (h matchHeapInterface) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *matchHeapInterface) Push(x interface{}) {
	*h = append(*h, x.(TileMatch))
}

func (h *matchHeapInterface) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// MatchHeap keeps the bound best matches added to it.
type MatchHeap struct {
	interf *matchHeapInterface
	bound  int
}

// NewMatchHeap returns a new heap with the given bound. If bound < 0 all
// matches are kept.
func NewMatchHeap(bound int) *MatchHeap {
	capacity := bound + 1
	if bound < 0 {
		capacity = 100
	}
	interf := make(matchHeapInterface, 0, capacity)
	return &MatchHeap{&interf, bound}
}

// Add adds a new match to the heap, dropping the worst match if the heap
// exceeds its bound.
func (h *MatchHeap) Add(m TileMatch) {
	if h.bound == 0 {
		return
	}
	heap.Push(h.interf, m)
	if h.bound > 0 {
		for h.interf.Len() > h.bound {
			heap.Pop(h.interf)
		}
	}
}

// Len returns the number of matches in the heap.
func (h *MatchHeap) Len() int {
	return h.interf.Len()
}

// GetView returns the matches in the heap, best match first.
// The complexity is O(n * log(n)) where n is the size of the heap.
func (h *MatchHeap) GetView() []TileMatch {
	n := h.interf.Len()
	tmp := make(matchHeapInterface, n)
	copy(tmp, *h.interf)
	res := make([]TileMatch, n)
	for i := 0; i < n; i++ {
		res[n-i-1] = heap.Pop(&tmp).(TileMatch)
	}
	return res
}

// KNearest returns the k tiles with the smallest metric value to c, best match
// first. Tiles with equal values are ordered by id, so the first entry is
// always the tile returned by NearestWithMetric.
//
// If metric is nil SquaredDistance is used. If the index is empty
// ErrEmptyIndex is returned.
func (index *TileIndex) KNearest(c AverageColor, k int, metric ColorMetric) ([]TileMatch, error) {
	if index.Len() == 0 {
		return nil, ErrEmptyIndex
	}
	if metric == nil {
		metric = SquaredDistance
	}
	h := NewMatchHeap(k)
	for _, r := range index.records {
		h.Add(TileMatch{TileRecord: r, Value: c.Dist(r.Color, metric)})
	}
	return h.GetView(), nil
}
