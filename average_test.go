package pyzantine

import (
	"image"
	"image/color"
	"testing"
)

func TestComputeAverageColor(t *testing.T) {
	half := image.NewRGBA(image.Rect(0, 0, 2, 1))
	half.SetRGBA(0, 0, color.RGBA{R: 0, G: 10, B: 1, A: 255})
	half.SetRGBA(1, 0, color.RGBA{R: 255, G: 11, B: 2, A: 255})

	nrgba := image.NewNRGBA(image.Rect(5, 5, 15, 15))
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			nrgba.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	tests := []struct {
		name string
		img  image.Image
		want AverageColor
	}{
		{"uniform red", uniform(50, 50, red), NewAverageColor(255, 0, 0)},
		{"truncated", half, NewAverageColor(127, 10, 1)},
		{"generic image", nrgba, NewAverageColor(10, 20, 30)},
		{"sub image", uniform(100, 100, green).SubImage(image.Rect(50, 50, 60, 60)), NewAverageColor(0, 255, 0)},
		{"empty", image.NewRGBA(image.Rectangle{}), AverageColor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAverageColor(tt.img); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAverageColorFromSlice(t *testing.T) {
	tests := []struct {
		values  []int
		want    AverageColor
		wantErr bool
	}{
		{[]int{1, 2, 3}, NewAverageColor(1, 2, 3), false},
		{[]int{0, 255, 0}, NewAverageColor(0, 255, 0), false},
		{[]int{1, 2}, AverageColor{}, true},
		{[]int{1, 2, 3, 4}, AverageColor{}, true},
		{[]int{-1, 2, 3}, AverageColor{}, true},
		{[]int{1, 256, 3}, AverageColor{}, true},
	}
	for _, tt := range tests {
		got, err := AverageColorFromSlice(tt.values)
		if (err != nil) != tt.wantErr {
			t.Errorf("AverageColorFromSlice(%v): unexpected error %v", tt.values, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AverageColorFromSlice(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}
