// Package fbsketch is a minimal stand-in for the kernel's framebuffer
// compositor (spec §1: out of core scope, sketched only as a domain-stack
// exercise per SPEC_FULL.md §11). It rasterizes a one-line debug status
// using a fixed bitmap font, standing in for a PSF-backed
// console renderer.
package fbsketch

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Framebuffer is a software RGBA surface standing in for a mapped linear
// framebuffer.
type Framebuffer struct {
	Image *image.RGBA
}

// NewFramebuffer allocates a w x h framebuffer, cleared to black.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{Image: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// DrawStatusLine rasterizes text at (x, y) in fg on the framebuffer, using
// the corpus's bundled 7x13 bitmap font.
func (f *Framebuffer) DrawStatusLine(x, y int, fg color.Color, text string) {
	d := &font.Drawer{
		Dst:  f.Image,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Clear fills the whole framebuffer with bg.
func (f *Framebuffer) Clear(bg color.Color) {
	draw.Draw(f.Image, f.Image.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}
