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
	"fmt"
	"math"
	"sort"
)

// TileID is used to unambiguously identify a tile image. Usually it is the
// path of the image, see TileStorage.
type TileID string

// TileRecord maps a tile to its precomputed average color.
type TileRecord struct {
	ID    TileID
	Color AverageColor
}

// TileIndex is a read-only collection of tile records used to find the tile
// that matches a given color best.
//
// The records are sorted by id, this fixes the order in which tiles are
// compared: If two tiles have the same distance to a color the tile with the
// smaller id wins. Thus a lookup always returns the same tile for the same
// index, independent of the order in which the tiles were added.
//
// A TileIndex is never modified after creation and therefor safe for
// concurrent use.
type TileIndex struct {
	records []TileRecord
}

// NewTileIndex creates a new index given the mapping tile ↦ average color.
// The reserved key MetaKey is never considered a tile.
// If no tiles remain ErrEmptyIndex is returned.
func NewTileIndex(m map[TileID]AverageColor) (*TileIndex, error) {
	records := make([]TileRecord, 0, len(m))
	for id, c := range m {
		records = append(records, TileRecord{ID: id, Color: c})
	}
	return NewTileIndexFromRecords(records)
}

// NewTileIndexFromRecords creates a new index from a list of records. The
// list is copied and sorted by id, records with the reserved id MetaKey are
// dropped. If an id appears more than once only the first occurrence is kept.
// If no tiles remain ErrEmptyIndex is returned.
func NewTileIndexFromRecords(records []TileRecord) (*TileIndex, error) {
	res := make([]TileRecord, 0, len(records))
	for _, r := range records {
		if r.ID == MetaKey {
			continue
		}
		res = append(res, r)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	// remove duplicates, the list is sorted so they're next to each other
	unique := res[:0]
	for i, r := range res {
		if i > 0 && r.ID == res[i-1].ID {
			continue
		}
		unique = append(unique, r)
	}
	if len(unique) == 0 {
		return nil, ErrEmptyIndex
	}
	return &TileIndex{records: unique}, nil
}

// Len returns the number of tiles in the index.
func (index *TileIndex) Len() int {
	if index == nil {
		return 0
	}
	return len(index.records)
}

// Records returns a copy of all records, sorted by id.
func (index *TileIndex) Records() []TileRecord {
	res := make([]TileRecord, index.Len())
	if index != nil {
		copy(res, index.records)
	}
	return res
}

// Lookup returns the average color of a tile.
func (index *TileIndex) Lookup(id TileID) (AverageColor, bool) {
	n := index.Len()
	i := sort.Search(n, func(i int) bool {
		return index.records[i].ID >= id
	})
	if i < n && index.records[i].ID == id {
		return index.records[i].Color, true
	}
	return AverageColor{}, false
}

// Nearest returns the tile whose average color has the smallest
// SquaredDistance to c. See NearestWithMetric for details.
func (index *TileIndex) Nearest(c AverageColor) (TileID, error) {
	record, _, err := index.NearestWithMetric(c, SquaredDistance)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// NearestWithMetric returns the tile record that minimizes the metric value
// to c together with the metric value.
//
// It simply iterates over all tiles. The first tile initializes the minimum,
// a later tile only replaces the current best tile if its distance is strictly
// smaller. Thus on ties the first tile in the order of the index wins.
//
// If the index is empty ErrEmptyIndex is returned.
func (index *TileIndex) NearestWithMetric(c AverageColor, metric ColorMetric) (TileRecord, float64, error) {
	if index.Len() == 0 {
		return TileRecord{}, math.MaxFloat64, ErrEmptyIndex
	}
	if metric == nil {
		metric = SquaredDistance
	}
	best := index.records[0]
	bestValue := c.Dist(best.Color, metric)
	for _, r := range index.records[1:] {
		if dist := c.Dist(r.Color, metric); dist < bestValue {
			best = r
			bestValue = dist
		}
	}
	return best, bestValue, nil
}

func (index *TileIndex) String() string {
	return fmt.Sprintf("TileIndex(%d tiles)", index.Len())
}
