package fbsketch

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawStatusLineTouchesSomePixels(t *testing.T) {
	fb := NewFramebuffer(320, 32)
	fb.Clear(color.Black)
	fb.DrawStatusLine(2, 16, color.White, "process 1 resumed at rip=0x4000")

	touched := false
	for y := 0; y < fb.Image.Bounds().Dy() && !touched; y++ {
		for x := 0; x < fb.Image.Bounds().Dx(); x++ {
			if r, g, b, _ := fb.Image.At(x, y).RGBA(); r != 0 || g != 0 || b != 0 {
				touched = true
				break
			}
		}
	}
	assert.True(t, touched, "status line should have drawn at least one non-black pixel")
}
