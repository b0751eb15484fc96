package capture

import (
	"image"
	"time"
)

// Pose is a requested head orientation the user must hold during one
// capture cycle.
type Pose string

const (
	PoseFront Pose = "front"
	PoseLeft  Pose = "left"
	PoseRight Pose = "right"
)

// EnrollSequence is the fixed pose order used for enrollment.
// Verification uses a server-supplied sequence instead.
func EnrollSequence() []Pose {
	return []Pose{PoseFront, PoseLeft, PoseRight}
}

// Hint returns the user-facing instruction for a pose.
func (p Pose) Hint() string {
	switch p {
	case PoseFront:
		return "Look straight ahead"
	case PoseLeft:
		return "Turn your head left"
	case PoseRight:
		return "Turn your head right"
	default:
		return "Hold still"
	}
}

// Frame is a single raster frame grabbed from a Source.
// Frames are not retained beyond the tick that requested them, except
// for the one grayscale copy the Meter keeps for motion comparison.
type Frame struct {
	Image    *image.RGBA
	Captured time.Time
}

// Source produces the current frame on demand.
// A nil frame with a nil error means no frame is available right now;
// the caller treats that tick as no pose progress.
type Source interface {
	Frame() (*Frame, error)
	Close() error
}

// grayBuffer is a single-channel luma plane derived from a frame.
// Owned exclusively by the Meter; overwritten every sample, never shared.
type grayBuffer struct {
	pix  []uint8
	w, h int
}

// rgbaToGray converts a frame to grayscale with the standard luma
// weights, truncated to integer.
func rgbaToGray(img *image.RGBA) *grayBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := &grayBuffer{pix: make([]uint8, w*h), w: w, h: h}

	j := 0
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			r := float64(row[x])
			gr := float64(row[x+1])
			bl := float64(row[x+2])
			g.pix[j] = uint8(r*0.299 + gr*0.587 + bl*0.114)
			j++
		}
	}
	return g
}
