// Package screenshot grabs rectangular regions of the screen.
package screenshot

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

// ErrEmptyRegion is returned for a region with no pixels.
var ErrEmptyRegion = errors.New("empty capture region")

// Grabber captures the screen through robotgo.
type Grabber struct{}

// NewGrabber returns a screen grabber.
func NewGrabber() *Grabber {
	return &Grabber{}
}

// Capture returns the pixels inside r, in absolute screen coordinates.
func (*Grabber) Capture(r types.Rect) (image.Image, error) {
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	img, err := robotgo.CaptureImg(r.X, r.Y, r.W, r.H)
	if err != nil {
		return nil, fmt.Errorf("capture %dx%d at %d,%d: %w", r.W, r.H, r.X, r.Y, err)
	}
	return img, nil
}
