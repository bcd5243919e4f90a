package vision

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPreprocessShape(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	state := Preprocess(img)

	if len(state) != Features {
		t.Errorf("wrong state length \n\twant(%v)\n\thave(%v)", Features,
			len(state))
	}
}

func TestPreprocessRange(t *testing.T) {
	// A gradient image exercises the full pixel range
	img := image.NewGray(image.Rect(0, 0, 64, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	for i, value := range Preprocess(img) {
		if value < -1.0 || value > 1.0 {
			t.Fatalf("pixel %v outside [-1, 1]: %v", i, value)
		}
	}
}

func TestPreprocessNormalization(t *testing.T) {
	tests := []struct {
		pixel uint8
		want  float64
	}{
		{0, -1.0},
		{255, 1.0},
	}

	for _, test := range tests {
		img := image.NewGray(image.Rect(0, 0, 10, 10))
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				img.SetGray(x, y, color.Gray{Y: test.pixel})
			}
		}

		state := Preprocess(img)
		for _, value := range state {
			if math.Abs(value-test.want) > 1e-9 {
				t.Errorf("pixel value %v normalized to %v, want %v",
					test.pixel, value, test.want)
				break
			}
		}
	}
}

func TestStateBatchDimension(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 128))
	state := State(img)

	// One state, flattened: a single batch worth of features
	if state.Len() != Features {
		t.Errorf("wrong state vector length \n\twant(%v)\n\thave(%v)",
			Features, state.Len())
	}
}
