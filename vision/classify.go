// Package vision watches the ultimate-charge indicator of the game HUD and
// announces when the ultimate becomes ready.
package vision

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// Yellow band of a charged ultimate icon. Hue is in degrees, saturation and
// value in [0,1].
const (
	HueMin        = 50.0
	HueMax        = 100.0
	SatMin        = 150.0 / 255.0
	ValMin        = 150.0 / 255.0
	ReadyMinCount = 50 // strictly more pixels than this means ready
)

// Indicator region as fractions of the game window.
const (
	RegionX0 = 0.9198
	RegionY0 = 0.8907
	RegionX1 = 0.9521
	RegionY1 = 0.9407
)

// CountYellow returns the number of pixels of img inside the yellow band.
func CountYellow(img image.Image) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			if inBand(c.Hsv()) {
				n++
			}
		}
	}
	return n
}

func inBand(h, s, v float64) bool {
	return h >= HueMin && h <= HueMax && s >= SatMin && v >= ValMin
}

// IsReady classifies a captured indicator region.
func IsReady(img image.Image) bool {
	return CountYellow(img) > ReadyMinCount
}
