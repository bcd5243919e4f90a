// Package vision converts rendered tower images into the state
// representation consumed by the value networks: grayscale, a fixed
// canonical resolution, and normalization to a symmetric range.
package vision

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

const (
	// Height and Width are the canonical resolution that every
	// observation is resized to. The value networks were built against
	// this resolution, so it must not change independently of them.
	Height int = 128
	Width  int = 64

	// Features is the length of a flattened state vector
	Features int = Height * Width
)

// Grayscale pixels in [0, 1] are normalized to [-1, 1]
const (
	normMean float64 = 0.5
	normStd  float64 = 0.5
)

// LoadImage loads the image stored in the file at filename
func LoadImage(filename string) (image.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadimage: could not open %v: %v", filename,
			err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("loadimage: could not decode %v: %v", filename,
			err)
	}
	return img, nil
}

// Preprocess converts an image to grayscale, resizes it to the
// canonical Height × Width resolution, and normalizes its pixels to
// [-1, 1]. The returned slice stores rows contiguously and represents
// a batch of exactly one state.
func Preprocess(img image.Image) []float64 {
	grey := image.NewGray(image.Rect(0, 0, Width, Height))
	draw.BiLinear.Scale(grey, grey.Bounds(), img, img.Bounds(), draw.Src, nil)

	state := make([]float64, Features)
	for i, pixel := range grey.Pix {
		state[i] = (float64(pixel)/255.0 - normMean) / normStd
	}
	return state
}

// State returns the preprocessed image as a vector suitable as a
// timestep observation
func State(img image.Image) *mat.VecDense {
	return mat.NewVecDense(Features, Preprocess(img))
}

// StateFromFile loads the image in the file at filename and returns
// its preprocessed state vector
func StateFromFile(filename string) (*mat.VecDense, error) {
	img, err := LoadImage(filename)
	if err != nil {
		return nil, fmt.Errorf("statefromfile: %v", err)
	}
	return State(img), nil
}
