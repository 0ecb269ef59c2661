package core

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextVertex is the vertex layout consumed by text.wgsl. Positions are in
// normalized device coordinates, UVs address the glyph atlas.
type TextVertex struct {
	Pos   [2]float32 `batch:"layout" format:"float32x2" location:"0"`
	UV    [2]float32 `batch:"layout" format:"float32x2" location:"1"`
	Color [4]float32 `batch:"layout" format:"float32x4" location:"2"`
}

type Glyph struct {
	UVMin   [2]float32
	UVMax   [2]float32
	Size    [2]float32
	Offset  [2]float32
	Advance float32
}

// TextRenderer rasterizes the printable ASCII range of one font face into
// a single-channel atlas and builds quad vertices for overlay strings.
type TextRenderer struct {
	Atlas  *image.Alpha
	Glyphs map[rune]Glyph

	face font.Face
}

const textAtlasSize = 512

func NewTextRenderer(fontPath string, fontSize float64) (*TextRenderer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, textAtlasSize, textAtlasSize))
	glyphs := make(map[rune]Glyph)

	// Shelf-pack glyphs left to right with a small gutter.
	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= textAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= textAtlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = Glyph{
			UVMin:   [2]float32{float32(x) / textAtlasSize, float32(y) / textAtlasSize},
			UVMax:   [2]float32{float32(x+w) / textAtlasSize, float32(y+h) / textAtlasSize},
			Size:    [2]float32{float32(w), float32(h)},
			Offset:  [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Advance: float32(adv) / 64.0, // fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &TextRenderer{
		Atlas:  atlas,
		Glyphs: glyphs,
		face:   face,
	}, nil
}

// BuildVertices lays out text starting at a top-left position in logical
// screen units and returns two triangles per glyph in NDC.
func (tr *TextRenderer) BuildVertices(text string, x, y float32, color [4]float32, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(text)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	metrics := tr.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	posX := x
	posY := y + ascent

	for _, r := range text {
		if r == '\n' {
			posX = x
			posY += lineHeight
			continue
		}

		g, ok := tr.Glyphs[r]
		if !ok {
			continue
		}

		x0 := (posX+g.Offset[0])/sw*2.0 - 1.0
		y0 := 1.0 - (posY+g.Offset[1])/sh*2.0
		x1 := (posX+g.Offset[0]+g.Size[0])/sw*2.0 - 1.0
		y1 := 1.0 - (posY+g.Offset[1]+g.Size[1])/sh*2.0

		vertices = append(vertices,
			TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color},
		)

		posX += g.Advance
	}

	return vertices
}

// MeasureText returns the logical width and height the text would occupy.
func (tr *TextRenderer) MeasureText(text string) (float32, float32) {
	if tr == nil {
		return 0, 0
	}

	metrics := tr.face.Metrics()
	lineHeight := float32(metrics.Height.Ceil())

	maxW := float32(0)
	currentW := float32(0)
	lines := 1

	for _, r := range text {
		if r == '\n' {
			if currentW > maxW {
				maxW = currentW
			}
			currentW = 0
			lines++
			continue
		}
		g, ok := tr.Glyphs[r]
		if !ok {
			continue
		}
		currentW += g.Advance
	}
	if currentW > maxW {
		maxW = currentW
	}

	return maxW, lineHeight * float32(lines)
}
