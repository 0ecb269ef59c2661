package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// OrthographicCamera produces the view-projection matrix pushed to the
// sprite shader's uniform buffer. Screen space runs left-to-right,
// top-to-bottom in logical units, matching sprite positions.
//
// mgl32.Ortho maps the near/far range to [-1, 1] clip depth, while the
// render target clips to [0, w]. The symmetric -1..1 range puts the z=0
// sprite plane at clip depth 0, valid under both conventions.
func OrthographicCamera(logicalWidth, logicalHeight int) mgl32.Mat4 {
	return mgl32.Ortho(
		0, float32(logicalWidth),
		float32(logicalHeight), 0,
		-1, 1,
	)
}
