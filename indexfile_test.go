package pyzantine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testIndexFile() *IndexFile {
	f := NewIndexFile(3)
	f.Add("tiles/b.jpg", NewAverageColor(12, 200, 7))
	f.Add("tiles/a.jpg", NewAverageColor(255, 0, 0))
	f.Meta.Edge = 50
	f.Meta.Root = "tiles"
	return f
}

func TestIndexFileRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".gob"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "index"+ext)
			if err := testIndexFile().WriteFile(path); err != nil {
				t.Fatal(err)
			}
			read, err := ReadIndexFile(path)
			if err != nil {
				t.Fatal(err)
			}
			want := []IndexEntry{
				{Path: "tiles/a.jpg", Color: NewAverageColor(255, 0, 0)},
				{Path: "tiles/b.jpg", Color: NewAverageColor(12, 200, 7)},
			}
			if !reflect.DeepEqual(read.Entries, want) {
				t.Errorf("expected entries %v, got %v", want, read.Entries)
			}
			if read.Meta.Edge != 50 || read.Meta.Count != 2 || read.Meta.Version != Version || read.Meta.Root != "tiles" {
				t.Errorf("unexpected metadata %+v", read.Meta)
			}
			if read.Meta.Created.IsZero() {
				t.Error("creation time not set")
			}
		})
	}
}

func TestIndexFileJSONFormat(t *testing.T) {
	data, err := json.Marshal(testIndexFile())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 keys, got %d: %s", len(m), data)
	}
	if _, has := m[MetaKey]; !has {
		t.Error("meta key missing")
	}
	if got := string(m["tiles/a.jpg"]); got != "[255,0,0]" {
		t.Errorf("expected [255,0,0], got %s", got)
	}
}

func TestIndexFileUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		want     int
		wantEdge int
		wantErr  bool
	}{
		{"with meta", `{"meta": {"version": "0.0.1", "edge": 30}, "a.jpg": [1, 2, 3]}`, 1, 30, false},
		{"without meta", `{"a.jpg": [1, 2, 3], "b.jpg": [0, 0, 0]}`, 2, 0, false},
		{"unknown meta format", `{"meta": "created by hand", "a.jpg": [1, 2, 3]}`, 1, 0, false},
		{"only meta", `{"meta": {}}`, 0, 0, false},
		{"short color", `{"a.jpg": [1, 2]}`, 0, 0, true},
		{"out of range", `{"a.jpg": [1, 2, 300]}`, 0, 0, true},
		{"not a list", `{"a.jpg": "red"}`, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f IndexFile
			err := json.Unmarshal([]byte(tt.data), &f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr {
				return
			}
			if len(f.Entries) != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, len(f.Entries))
			}
			if f.Meta.Edge != tt.wantEdge {
				t.Errorf("expected edge %d, got %d", tt.wantEdge, f.Meta.Edge)
			}
		})
	}
}

func TestLoadTileIndexOnlyMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultIndexFileName)
	if err := os.WriteFile(path, []byte(`{"meta": {"version": "0.1.0"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := LoadTileIndex(path)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestIndexFileUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	if err := testIndexFile().WriteFile(path); err == nil {
		t.Error("expected error for unknown extension")
	}
	if _, err := ReadIndexFile(path); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestIndexFileReservedKey(t *testing.T) {
	f := NewIndexFile(1)
	f.Add(MetaKey, NewAverageColor(0, 0, 0))
	if _, err := json.Marshal(f); err == nil {
		t.Error("expected error when a tile uses the reserved key")
	}
	if err := f.CheckData(0); err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Errorf("expected reserved key error, got %v", err)
	}
}

func TestIndexFileWriteErrors(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.json", "index.gob"} {
		t.Run(name, func(t *testing.T) {
			if err := testIndexFile().WriteFile(filepath.Join(dir, "missing", name)); err == nil {
				t.Error("expected error for missing directory")
			}
			if _, err := os.Stat("/dev/full"); err != nil {
				t.Skip("/dev/full not available")
			}
			full := filepath.Join(dir, "full"+filepath.Ext(name))
			if err := os.Symlink("/dev/full", full); err != nil {
				t.Skip(err)
			}
			if err := testIndexFile().WriteFile(full); err == nil {
				t.Error("expected error when the device is full")
			}
		})
	}
	f := NewIndexFile(1)
	f.Add(MetaKey, NewAverageColor(0, 0, 0))
	if err := f.WriteFile(filepath.Join(dir, "reserved.json")); err == nil {
		t.Error("expected error when a tile uses the reserved key")
	}
}

func TestIndexFileDiff(t *testing.T) {
	f := testIndexFile()
	paths := []TileID{"tiles/c.jpg", "tiles/a.jpg"}
	if got := f.MissingEntries(paths); !reflect.DeepEqual(got, []TileID{"tiles/c.jpg"}) {
		t.Errorf("unexpected missing entries %v", got)
	}
	if got := f.AdditionalEntries(paths); !reflect.DeepEqual(got, []TileID{"tiles/b.jpg"}) {
		t.Errorf("unexpected additional entries %v", got)
	}
	f.Remove([]TileID{"tiles/b.jpg"})
	if got := f.Map(); len(got) != 1 || got["tiles/a.jpg"] != NewAverageColor(255, 0, 0) {
		t.Errorf("unexpected content after remove %v", got)
	}
}

func TestIndexFileCheckData(t *testing.T) {
	f := testIndexFile()
	if err := f.CheckData(50); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := f.CheckData(0); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := f.CheckData(20); err == nil {
		t.Error("expected edge mismatch")
	}
	f.Add("tiles/a.jpg", NewAverageColor(0, 0, 0))
	if err := f.CheckData(50); err == nil {
		t.Error("expected duplicate entry error")
	}
}
