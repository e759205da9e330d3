package pyzantine

import (
	"errors"
	"image"
	"os"
	"testing"
)

func TestImageCache(t *testing.T) {
	cache := NewImageCache(2)
	a, b, c := uniform(1, 1, red), uniform(1, 1, green), uniform(1, 1, blue)
	cache.Put("a", 10, a)
	cache.Put("b", 10, b)
	if cache.Get("a", 10) != a || cache.Get("b", 10) != b {
		t.Fatal("expected cached images")
	}
	if cache.Get("a", 20) != nil {
		t.Error("edge must be part of the key")
	}
	// cache is full, a is removed first
	cache.Put("c", 10, c)
	if cache.Get("a", 10) != nil {
		t.Error("expected a to be removed")
	}
	if cache.Get("c", 10) != c || cache.Len() != 2 {
		t.Error("expected c in cache")
	}
	// putting an existing key again is a no-op
	cache.Put("c", 10, a)
	if cache.Get("c", 10) != c {
		t.Error("existing entry replaced")
	}
}

func TestCropTile(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 90, 80))
	fill(img, img.Bounds(), black)
	fill(img, image.Rect(10, 10, 60, 60), blue)
	block, err := CropTile(img, 50)
	if err != nil {
		t.Fatal(err)
	}
	if block.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("unexpected bounds %v", block.Bounds())
	}
	assertColor(t, block, block.Bounds(), blue)

	_, err = CropTile(uniform(50, 49, red), 50)
	if !errors.Is(err, ErrTileTooSmall) {
		t.Errorf("expected ErrTileTooSmall, got %v", err)
	}
}

func TestCellProcessorProcess(t *testing.T) {
	index, err := NewTileIndex(map[TileID]AverageColor{
		"green": NewAverageColor(0, 255, 0),
		"blue":  NewAverageColor(0, 0, 255),
	})
	if err != nil {
		t.Fatal(err)
	}
	storage := MemTileStorage{
		"green": uniform(50, 50, green),
		"blue":  uniform(60, 60, blue),
	}
	p := NewCellProcessor(index, storage, 50)

	buf := uniform(120, 100, red)
	fill(buf, image.Rect(100, 50, 120, 100), blue)
	id, err := p.Process(buf, Window{100, 50, 150, 100})
	if err != nil {
		t.Fatal(err)
	}
	if id != "blue" {
		t.Errorf("expected blue tile, got %s", id)
	}
	assertColor(t, buf, image.Rect(100, 50, 120, 100), blue)
	// neighbours are untouched
	assertColor(t, buf, image.Rect(0, 0, 100, 100), red)
	assertColor(t, buf, image.Rect(100, 0, 120, 50), red)

	// outside the buffer
	id, err = p.Process(buf, Window{150, 0, 200, 50})
	if err != nil || id != "" {
		t.Errorf("expected no-op, got %q, %v", id, err)
	}
}

func TestCellProcessorErrors(t *testing.T) {
	index, err := NewTileIndex(map[TileID]AverageColor{"tile": NewAverageColor(255, 0, 0)})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		storage TileStorage
		check   func(err error) bool
	}{
		{
			"too small",
			MemTileStorage{"tile": uniform(40, 40, red)},
			func(err error) bool { return errors.Is(err, ErrTileTooSmall) },
		},
		{
			"missing",
			MemTileStorage{},
			func(err error) bool {
				var decodeErr *DecodeError
				return errors.As(err, &decodeErr) && errors.Is(err, os.ErrNotExist)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCellProcessor(index, tt.storage, 50)
			_, err := p.Process(uniform(50, 50, red), Window{0, 0, 50, 50})
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			var cellErr *CellError
			if !errors.As(err, &cellErr) {
				t.Fatalf("expected CellError, got %T", err)
			}
			if cellErr.Tile != "tile" || cellErr.Window != (Window{0, 0, 50, 50}) {
				t.Errorf("unexpected cell error %v", cellErr)
			}
		})
	}
}
