package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/bmp"
)

type AssetId string

// TextureAsset holds decoded RGBA8 texels ready for a GPU upload.
type TextureAsset struct {
	Texels []uint8
	Width  uint32
	Height uint32
}

// Server resolves asset names against a base directory and keeps decoded
// assets addressable by id.
type Server struct {
	baseDir  string
	textures map[AssetId]*TextureAsset
}

func NewServer(baseDir string) *Server {
	return &Server{
		baseDir:  baseDir,
		textures: make(map[AssetId]*TextureAsset),
	}
}

func (s *Server) BaseDir() string {
	return s.baseDir
}

// Resolve returns the absolute path of a named asset, failing if the file
// does not exist.
func (s *Server) Resolve(name string) (string, error) {
	path := filepath.Join(s.baseDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("asset %q not found: %w", name, err)
	}
	return path, nil
}

// LoadTexture decodes a BMP or PNG image into RGBA8 texels.
func (s *Server) LoadTexture(name string) (AssetId, *TextureAsset, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return "", nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open texture %q: %w", name, err)
	}
	defer file.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(name), ".bmp") {
		img, err = bmp.Decode(file)
	} else {
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode texture %q: %w", name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	asset := &TextureAsset{
		Texels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}

	id := makeAssetId()
	s.textures[id] = asset
	return id, asset, nil
}

func (s *Server) Texture(id AssetId) (*TextureAsset, bool) {
	asset, ok := s.textures[id]
	return asset, ok
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
