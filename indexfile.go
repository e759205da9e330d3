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
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// This file contains functions and types for storing and retrieving the
// average colors of tiles, the so called color index file.

const (
	// MetaKey is the reserved key in index files that contains metadata and
	// not a tile.
	MetaKey = "meta"

	// DefaultIndexFileName is the name of the index file if none is given.
	DefaultIndexFileName = "source_images.json"
)

// IndexEntry is used to store the average color of a tile on the filesystem.
type IndexEntry struct {
	Path  TileID
	Color AverageColor
}

// IndexMeta contains information about how an index file was created.
// All fields are optional when reading a file.
type IndexMeta struct {
	Version string    `json:"version,omitempty"`
	ID      string    `json:"id,omitempty"`
	Edge    int       `json:"edge,omitempty"`
	Created time.Time `json:"created"`
	Count   int       `json:"count"`
	Root    string    `json:"root,omitempty"`
}

// IndexFile is the filesystem representation of a TileIndex.
//
// In json format it is a single object mapping the tile path to an array
// [R, G, B], the reserved key "meta" contains the metadata:
//
//	{
//	  "meta": {"version": "0.1.0", "edge": 50, "count": 2, ...},
//	  "tiles/a.jpg": [255, 0, 0],
//	  "tiles/b.jpg": [12, 200, 7]
//	}
//
// The gob format just encodes the struct.
type IndexFile struct {
	Entries []IndexEntry
	Meta    IndexMeta
}

// NewIndexFile creates an empty index file with the given capacity.
func NewIndexFile(capacity int) *IndexFile {
	if capacity < 0 {
		capacity = 100
	}
	return &IndexFile{
		Entries: make([]IndexEntry, 0, capacity),
	}
}

// Add appends a new entry.
func (f *IndexFile) Add(path TileID, c AverageColor) {
	f.Entries = append(f.Entries, IndexEntry{Path: path, Color: c})
}

// Sort sorts the entries by path.
func (f *IndexFile) Sort() {
	sort.Slice(f.Entries, func(i, j int) bool {
		return f.Entries[i].Path < f.Entries[j].Path
	})
}

func (f *IndexFile) prepareWrite() {
	f.Sort()
	f.Meta.Version = Version
	f.Meta.Count = len(f.Entries)
	if f.Meta.Created.IsZero() {
		f.Meta.Created = time.Now().UTC()
	}
}

// MarshalJSON encodes the file as a single object, see IndexFile.
func (f *IndexFile) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(f.Entries)+1)
	for _, entry := range f.Entries {
		if string(entry.Path) == MetaKey {
			return nil, fmt.Errorf("tile path %q is reserved", MetaKey)
		}
		m[string(entry.Path)] = entry.Color.Slice()
	}
	m[MetaKey] = f.Meta
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object format, see IndexFile.
//
// The metadata entry is optional. If it can't be parsed it is ignored, only
// the tile entries are required to be valid.
func (f *IndexFile) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.Entries = make([]IndexEntry, 0, len(m))
	f.Meta = IndexMeta{}
	for key, raw := range m {
		if key == MetaKey {
			if metaErr := json.Unmarshal(raw, &f.Meta); metaErr != nil {
				log.WithError(metaErr).Debug("Ignoring invalid metadata in index file")
				f.Meta = IndexMeta{}
			}
			continue
		}
		var values []int
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("invalid entry for %q: %w", key, err)
		}
		c, err := AverageColorFromSlice(values)
		if err != nil {
			return fmt.Errorf("invalid entry for %q: %w", key, err)
		}
		f.Add(TileID(key), c)
	}
	f.Sort()
	return nil
}

// WriteGobFile writes the index to a file encoded gob format.
func (f *IndexFile) WriteGobFile(path string) error {
	f.prepareWrite()
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	encErr := gob.NewEncoder(file).Encode(f)
	closeErr := file.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

// ReadGobFile reads the content of the index from the specified file.
// The file must be encoded in gob.
func (f *IndexFile) ReadGobFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	dec := gob.NewDecoder(file)
	if err := dec.Decode(f); err != nil {
		return err
	}
	f.Sort()
	return nil
}

// WriteJSON writes the index to a file encoded in json format.
func (f *IndexFile) WriteJSON(path string) error {
	f.prepareWrite()
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	encErr := enc.Encode(f)
	closeErr := file.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

// ReadJSONFile reads the content of the index from the specified file.
// The file must be encoded in json.
func (f *IndexFile) ReadJSONFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	dec := json.NewDecoder(file)
	return dec.Decode(f)
}

// ReadFile reads the content of the index from the specified file.
// The read method depends on the file extension which must be either .json
// or .gob.
func (f *IndexFile) ReadFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return f.ReadJSONFile(path)
	case ".gob":
		return f.ReadGobFile(path)
	default:
		return fmt.Errorf("unknown file extension for index file: %q, should be \".json\" or \".gob\"", ext)
	}
}

// WriteFile writes the content of the index to a file depending on the
// file extension which must be either .json or .gob.
func (f *IndexFile) WriteFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return f.WriteJSON(path)
	case ".gob":
		return f.WriteGobFile(path)
	default:
		return fmt.Errorf("unknown file extension for index file: %q, should be \".json\" or \".gob\"", ext)
	}
}

// ReadIndexFile reads an index file, see ReadFile.
func ReadIndexFile(path string) (*IndexFile, error) {
	res := NewIndexFile(-1)
	if err := res.ReadFile(path); err != nil {
		return nil, fmt.Errorf("reading index file %q: %w", path, err)
	}
	return res, nil
}

// LoadTileIndex reads an index file and returns the tile index as well as the
// file content (for example to inspect the metadata).
// If the file contains no tiles ErrEmptyIndex is returned.
func LoadTileIndex(path string) (*TileIndex, *IndexFile, error) {
	file, err := ReadIndexFile(path)
	if err != nil {
		return nil, nil, err
	}
	index, err := file.TileIndex()
	if err != nil {
		return nil, file, fmt.Errorf("index file %q: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path":  path,
		"tiles": index.Len(),
		"edge":  file.Meta.Edge,
	}).Debug("Loaded tile index")
	return index, file, nil
}

// TileIndex creates the tile index from the entries.
func (f *IndexFile) TileIndex() (*TileIndex, error) {
	records := make([]TileRecord, len(f.Entries))
	for i, entry := range f.Entries {
		records[i] = TileRecord{ID: entry.Path, Color: entry.Color}
	}
	return NewTileIndexFromRecords(records)
}

// Map computes the mapping path ↦ average color.
func (f *IndexFile) Map() map[TileID]AverageColor {
	res := make(map[TileID]AverageColor, len(f.Entries))
	for _, entry := range f.Entries {
		res[entry.Path] = entry.Color
	}
	return res
}

// CheckData is used to verify the index content. If edge > 0 it tests if the
// index was created for tiles of that size (only if the metadata contains an
// edge). It also checks that no entry uses the reserved key and that there
// are no duplicate entries.
//
// If the returned error is nil the check passed, otherwise an error != nil is
// returned describing all failed tests.
func (f *IndexFile) CheckData(edge int) error {
	errs := make([]string, 0)
	if edge > 0 && f.Meta.Edge > 0 && f.Meta.Edge != edge {
		errs = append(errs, fmt.Sprintf("index was created for edge %d, expected edge %d", f.Meta.Edge, edge))
	}
	seen := make(map[TileID]struct{}, len(f.Entries))
	for _, entry := range f.Entries {
		if string(entry.Path) == MetaKey {
			errs = append(errs, fmt.Sprintf("tile uses reserved key %q", MetaKey))
		}
		if _, has := seen[entry.Path]; has {
			errs = append(errs, fmt.Sprintf("duplicate entry for %s", entry.Path))
		}
		seen[entry.Path] = struct{}{}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "\n"))
}

// MissingEntries returns all paths that are not present in the index file.
// It can be used to find tiles that were added to a directory after the index
// was created.
//
// The result is sorted.
func (f *IndexFile) MissingEntries(paths []TileID) []TileID {
	m := f.Map()
	res := make([]TileID, 0)
	for _, p := range paths {
		if _, has := m[p]; !has {
			res = append(res, p)
		}
	}
	sortIDs(res)
	return res
}

// AdditionalEntries returns all paths that are in the index file but not in
// paths. It can be used to find tiles that were removed after the index was
// created.
//
// The result is sorted.
func (f *IndexFile) AdditionalEntries(paths []TileID) []TileID {
	m := make(map[TileID]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	res := make([]TileID, 0)
	for _, entry := range f.Entries {
		if _, has := m[entry.Path]; !has {
			res = append(res, entry.Path)
		}
	}
	sortIDs(res)
	return res
}

// Remove removes all entries with the given paths.
func (f *IndexFile) Remove(paths []TileID) {
	m := make(map[TileID]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	kept := f.Entries[:0]
	for _, entry := range f.Entries {
		if _, has := m[entry.Path]; !has {
			kept = append(kept, entry)
		}
	}
	f.Entries = kept
}

func sortIDs(ids []TileID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
}
