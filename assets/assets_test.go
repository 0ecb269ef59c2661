package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, dir, name string, encode func(*os.File, image.Image) error) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 100), B: 7, A: 255})
		}
	}

	file, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, encode(file, img))
	return name
}

func TestResolveMissingAsset(t *testing.T) {
	server := NewServer(t.TempDir())

	_, err := server.Resolve("ravioli_atlas.bmp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ravioli_atlas.bmp")
}

func TestLoadTexturePNG(t *testing.T) {
	dir := t.TempDir()
	name := writeImage(t, dir, "atlas.png", func(f *os.File, img image.Image) error {
		return png.Encode(f, img)
	})

	server := NewServer(dir)
	id, asset, err := server.LoadTexture(name)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), asset.Width)
	assert.Equal(t, uint32(2), asset.Height)
	assert.Len(t, asset.Texels, 4*2*4)

	stored, ok := server.Texture(id)
	require.True(t, ok)
	assert.Same(t, asset, stored)
}

func TestLoadTextureBMP(t *testing.T) {
	dir := t.TempDir()
	name := writeImage(t, dir, "atlas.bmp", func(f *os.File, img image.Image) error {
		return bmp.Encode(f, img)
	})

	server := NewServer(dir)
	_, asset, err := server.LoadTexture(name)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), asset.Width)
	assert.Equal(t, uint32(2), asset.Height)
	// First texel of row 1 should carry the green ramp from the source image.
	assert.Equal(t, uint8(100), asset.Texels[4*4*1+1])
}

func TestLoadTextureMissing(t *testing.T) {
	server := NewServer(t.TempDir())

	_, _, err := server.LoadTexture("missing.png")
	require.Error(t, err)
}

func TestLoadTextureCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0o644))

	server := NewServer(dir)
	_, _, err := server.LoadTexture("bad.png")
	require.Error(t, err)
}
