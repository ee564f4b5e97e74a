package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPNG creates a solid-colour PNG with the specified dimensions.
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 64, G: 128, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// createNoisyJPEG creates a high-quality JPEG of random pixels, which is far
// larger than a typical photo of the same size.
func createNoisyJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func TestReducer_Reduce_UnderBudgetUnchanged(t *testing.T) {
	data := createTestPNG(t, 50, 50)
	out, err := NewReducer(DefaultQuality).Reduce(data, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = NewReducer(DefaultQuality).Reduce(data, len(data)+1000)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestReducer_Reduce_UnderBudgetSkipsDecode(t *testing.T) {
	data := []byte("tiny")
	out, err := NewReducer(DefaultQuality).Reduce(data, 100)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestReducer_Reduce_OversizedFitsBudget(t *testing.T) {
	data := createNoisyJPEG(t, 600, 600)
	budget := len(data) / 2

	out, err := NewReducer(DefaultQuality).Reduce(data, budget)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), budget)

	w, h, err := Dimensions(out)
	require.NoError(t, err)
	assert.Less(t, w, 600)
	assert.Equal(t, w, h, "aspect ratio preserved")
}

func TestReducer_Reduce_ScalesBySquareRoot(t *testing.T) {
	data := createTestPNG(t, 400, 200)
	budget := len(data) / 4

	out, err := NewReducer(DefaultQuality).Reduce(data, budget)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.InDelta(t, 200, img.Bounds().Dx(), 1)
	assert.InDelta(t, 100, img.Bounds().Dy(), 1)
}

func TestReducer_Reduce_MinimumOnePixel(t *testing.T) {
	data := createTestPNG(t, 300, 1)
	out, err := NewReducer(DefaultQuality).Reduce(data, len(data)/9)
	require.NoError(t, err)

	w, h, err := Dimensions(out)
	require.NoError(t, err)
	assert.Less(t, w, 300)
	assert.Equal(t, 1, h)
}

func TestReducer_Reduce_UndecodableInput(t *testing.T) {
	data := []byte(strings.Repeat("not an image ", 100))
	_, err := NewReducer(DefaultQuality).Reduce(data, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodeFailed))
}

func TestReducer_Reduce_NonPositiveBudget(t *testing.T) {
	data := createTestPNG(t, 10, 10)
	_, err := NewReducer(DefaultQuality).Reduce(data, 0)
	assert.Error(t, err)
}

func TestNewReducer_QualityFallback(t *testing.T) {
	assert.Equal(t, DefaultQuality, NewReducer(0).quality)
	assert.Equal(t, DefaultQuality, NewReducer(101).quality)
	assert.Equal(t, 70, NewReducer(70).quality)
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(createTestPNG(t, 120, 80))
	require.NoError(t, err)
	assert.Equal(t, 120, w)
	assert.Equal(t, 80, h)

	_, _, err = Dimensions([]byte("garbage"))
	assert.True(t, errors.Is(err, ErrDecodeFailed))
}
