package filters

import (
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/pixlab"
)

// generateRandomSquares creates an image of the given shape with random colored
// squares on a black background.
func generateRandomSquares(rng *rand.Rand, shape pixlab.Shape, width, height, numSquares, minSize, maxSize int) *pixlab.Buffer {
	img := pixlab.NewBuffer(width, height, shape)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, 0, 0, 0)
		}
	}
	for i := 0; i < numSquares; i++ {
		size := minSize + rng.Intn(maxSize-minSize+1)
		x0 := rng.Intn(width)
		y0 := rng.Intn(height)

		// Avoid very dark colors so squares are visible.
		r := uint8(64 + rng.Intn(192))
		g := uint8(64 + rng.Intn(192))
		b := uint8(64 + rng.Intn(192))
		for y := y0; y < min(y0+size, height); y++ {
			for x := x0; x < min(x0+size, width); x++ {
				img.SetRGB(x, y, r, g, b)
			}
		}
	}
	return img
}

// generateNoise fills a gray image with uniformly random intensities.
func generateNoise(rng *rand.Rand, width, height int) *pixlab.Buffer {
	img := pixlab.NewBuffer(width, height, pixlab.ShapeGray8)
	rng.Read(img.Buffer())
	return img
}

// uniformGray returns a gray image with every pixel set to v.
func uniformGray(width, height int, v uint8) *pixlab.Buffer {
	img := pixlab.NewBuffer(width, height, pixlab.ShapeGray8)
	for i := range img.Buffer() {
		img.Buffer()[i] = v
	}
	return img
}

func savePNG(img *pixlab.Buffer, name string) error {
	if err := os.MkdirAll("testdata", 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join("testdata", name))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func assertSameDims(t *testing.T, got, want *pixlab.Buffer) {
	t.Helper()
	if got.Width() != want.Width() || got.Height() != want.Height() {
		t.Fatalf("dimension mismatch: got %dx%d, want %dx%d", got.Width(), got.Height(), want.Width(), want.Height())
	}
}
