package pyzantine

import (
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nfnt/resize"
)

func TestCropToSquare(t *testing.T) {
	tests := []struct {
		name string
		img  *image.RGBA
		want image.Rectangle
	}{
		{"landscape", uniform(80, 60, red), image.Rect(0, 0, 60, 60)},
		{"portrait", uniform(30, 90, red), image.Rect(0, 0, 30, 30)},
		{"square", uniform(40, 40, red), image.Rect(0, 0, 40, 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// mark everything outside the expected square
			fill(tt.img, tt.img.Bounds(), blue)
			fill(tt.img, tt.want, red)
			got := CropToSquare(tt.img)
			if got.Bounds() != tt.want {
				t.Fatalf("expected bounds %v, got %v", tt.want, got.Bounds())
			}
			assertColor(t, got, got.Bounds(), red)
		})
	}
}

func TestPrepareTile(t *testing.T) {
	for _, quality := range []uint{0, 3, 5} {
		resizer := NewNfntResizer(GetInterP(quality))
		tile := PrepareTile(uniform(200, 120, green), 50, resizer)
		if b := tile.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
			t.Errorf("%s: expected 50x50 tile, got %v", InterPString(resizer.InterP), b)
		}
	}
	// already the right size
	img := uniform(50, 50, red)
	if ResizeTile(img, 50, nil) != image.Image(img) {
		t.Error("expected image to be returned unchanged")
	}
}

func TestInterPFromString(t *testing.T) {
	for _, name := range []string{"NearestNeighbor", "bilinear", "Bicubic", "mitchell", "lanczos2", "Lanczos3"} {
		interP, err := InterPFromString(name)
		if err != nil {
			t.Errorf("unexpected error for %s: %v", name, err)
		}
		again, _ := InterPFromString(InterPString(interP))
		if again != interP {
			t.Errorf("%s: name does not round trip", name)
		}
	}
	if _, err := InterPFromString("sinc"); err == nil {
		t.Error("expected error for unknown interpolation")
	}
	if GetInterP(42) != resize.Lanczos3 {
		t.Error("expected best interpolation for large quality values")
	}
}

func writeJPG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPrepareLibrary(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "tiles")
	writeJPG(t, filepath.Join(src, "a.jpg"), uniform(120, 80, red))
	writeJPG(t, filepath.Join(src, "b.jpeg"), uniform(30, 60, green))
	writeJPG(t, filepath.Join(src, "sub", "c.jpg"), uniform(64, 64, blue))
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultPrepareOptions()
	opts.Edge = 20
	opts.Routines = 2
	opts.Recursive = true
	var total int
	opts.Progress = func(n int) ProgressFunc {
		total = n
		return ProgressIgnore
	}
	tiles, err := PrepareLibrary(context.Background(), src, dst, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dst, "a.jpg"),
		filepath.Join(dst, "b.jpg"),
		filepath.Join(dst, "sub", "c.jpg"),
	}
	if total != 3 || len(tiles) != len(want) {
		t.Fatalf("expected %v, got %v", want, tiles)
	}
	for i, tile := range tiles {
		if tile != want[i] {
			t.Errorf("expected %s, got %s", want[i], tile)
		}
		config, err := LoadImageConfig(tile)
		if err != nil {
			t.Fatal(err)
		}
		if config.Width != 20 || config.Height != 20 {
			t.Errorf("%s: expected 20x20, got %dx%d", tile, config.Width, config.Height)
		}
	}
}

func TestPrepareLibraryNameCollision(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "tiles")
	writeJPG(t, filepath.Join(src, "x.jpg"), uniform(20, 20, red))
	writeJPG(t, filepath.Join(src, "x.jpeg"), uniform(20, 20, blue))

	opts := DefaultPrepareOptions()
	opts.Edge = 10
	opts.Routines = 2
	tiles, err := PrepareLibrary(context.Background(), src, dst, opts)
	if err == nil {
		t.Fatalf("expected error for x.jpg and x.jpeg, got tiles %v", tiles)
	}
	for _, name := range []string{"x.jpg", "x.jpeg"} {
		if !strings.Contains(err.Error(), filepath.Join(src, name)) {
			t.Errorf("expected %s in error %q", name, err)
		}
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Errorf("expected no tiles to be written, stat returned %v", statErr)
	}
}

func TestPrepareLibraryConfigErrors(t *testing.T) {
	opts := DefaultPrepareOptions()
	opts.Edge = 0
	if _, err := PrepareLibrary(context.Background(), t.TempDir(), t.TempDir(), opts); err == nil {
		t.Error("expected error for edge 0")
	}
	opts = DefaultPrepareOptions()
	opts.JPGQuality = 101
	if _, err := PrepareLibrary(context.Background(), t.TempDir(), t.TempDir(), opts); err == nil {
		t.Error("expected error for quality 101")
	}
}
