package app

import (
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/spritebatch/core"
)

func TestNegotiatePresentMode(t *testing.T) {
	immediate := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate, wgpu.PresentModeMailbox}
	assert.Equal(t, wgpu.PresentModeImmediate, negotiatePresentMode(immediate))

	mailbox := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox}
	assert.Equal(t, wgpu.PresentModeMailbox, negotiatePresentMode(mailbox))

	fifoOnly := []wgpu.PresentMode{wgpu.PresentModeFifo}
	assert.Equal(t, wgpu.PresentModeFifo, negotiatePresentMode(fifoOnly))

	// Fifo is the guaranteed fallback even if the list is empty.
	assert.Equal(t, wgpu.PresentModeFifo, negotiatePresentMode(nil))
}

func TestTextVertexLayout(t *testing.T) {
	layout := createVertexBufferLayout(core.TextVertex{})

	assert.Equal(t, uint64(unsafe.Sizeof(core.TextVertex{})), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)

	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(8), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[2].Format)
	assert.Equal(t, uint64(16), layout.Attributes[2].Offset)
}

func TestParseVertexFormatRejectsUnknown(t *testing.T) {
	assert.Panics(t, func() { parseVertexFormat("float64x2") })
}

func TestSpriteInstanceSizeMatchesStruct(t *testing.T) {
	assert.Equal(t, uint64(unsafe.Sizeof(core.SpriteInstance{})), spriteInstanceSize())
}

func TestSpriteInstanceBytes(t *testing.T) {
	batch := core.NewSpriteBatch(0, 640, 480)
	data := spriteInstanceBytes(batch.Build())

	assert.Len(t, data, core.SpriteCount*int(spriteInstanceSize()))
	assert.Nil(t, spriteInstanceBytes(nil))
}

func TestTextVertexBytes(t *testing.T) {
	vertices := []core.TextVertex{{}, {}}
	data := textVertexBytes(vertices)

	assert.Len(t, data, 2*int(unsafe.Sizeof(core.TextVertex{})))
	assert.Nil(t, textVertexBytes(nil))
}
