package shaders

import (
	_ "embed"
)

//go:embed sprite.wgsl
var SpriteWGSL string

//go:embed text.wgsl
var TextWGSL string
