package core

import (
	"math"
	"math/rand"
)

// SpriteCount is the fixed capacity of the instance buffer. Every frame
// overwrites all slots; sprites carry no identity across frames.
const SpriteCount = 8192

const spriteSize = 32

// AtlasStep is the normalized extent of one quadrant of the 2x2 atlas.
const AtlasStep float32 = 0.5

// UV origins of the four atlas quadrants, indexed by quadrant id.
var (
	atlasU = [4]float32{0.0, 0.5, 0.0, 0.5}
	atlasV = [4]float32{0.0, 0.0, 0.5, 0.5}
)

// SpriteInstance matches the storage buffer record read by sprite.wgsl.
// Field order, sizes and the two padding floats are part of the GPU
// contract; do not reorder.
type SpriteInstance struct {
	X, Y, Z    float32
	Rotation   float32
	W, H       float32
	PadA, PadB float32
	TexU, TexV float32
	TexW, TexH float32
	R, G, B, A float32
}

// SpriteBatch fills a fixed-capacity instance array once per frame from a
// seeded generator. The same seed reproduces the same sequence of frames.
type SpriteBatch struct {
	rng       *rand.Rand
	width     int
	height    int
	instances [SpriteCount]SpriteInstance
}

func NewSpriteBatch(seed int64, logicalWidth, logicalHeight int) *SpriteBatch {
	return &SpriteBatch{
		rng:    rand.New(rand.NewSource(seed)),
		width:  logicalWidth,
		height: logicalHeight,
	}
}

// Build overwrites every slot with this frame's sprites and returns the
// full array. The generator state advances, so consecutive frames differ.
func (b *SpriteBatch) Build() []SpriteInstance {
	for i := range b.instances {
		quadrant := b.rng.Intn(len(atlasU))

		inst := &b.instances[i]
		inst.X = float32(b.rng.Intn(b.width))
		inst.Y = float32(b.rng.Intn(b.height))
		inst.Z = 0
		inst.Rotation = b.rng.Float32() * math.Pi * 2
		inst.W = spriteSize
		inst.H = spriteSize
		inst.TexU = atlasU[quadrant]
		inst.TexV = atlasV[quadrant]
		inst.TexW = AtlasStep
		inst.TexH = AtlasStep
		inst.R = 1.0
		inst.G = 1.0
		inst.B = 1.0
		inst.A = 1.0
	}
	return b.instances[:]
}

// Instances returns the current array without rebuilding it.
func (b *SpriteBatch) Instances() []SpriteInstance {
	return b.instances[:]
}

// QuadrantUV returns the UV origin of one atlas quadrant.
func QuadrantUV(quadrant int) (u, v float32) {
	return atlasU[quadrant], atlasV[quadrant]
}
