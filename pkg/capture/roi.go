package capture

import (
	"image"
	"math"
)

// ROI describes the analyzed sub-rectangle of a frame as a center plus
// half-extents, expressed in the reference coordinate space RefW x RefH.
// Crops rescale it to the actual frame resolution at use-time.
type ROI struct {
	CX, CY       float64
	HalfW, HalfH float64

	// Reference dimensions the center/extents are expressed in.
	RefW, RefH int
}

// ComputeROI derives the capture ROI from the guide oval geometry.
// w,h are the overlay's logical dimensions, ratio scales the oval and
// padding shrinks each ROI dimension by its own fraction to trim
// background at the oval edge.
func ComputeROI(w, h float64, ratio, padding float64) ROI {
	rw := math.Min(w*0.55, h*0.65) * ratio
	rh := rw * 1.10

	rw -= rw * padding
	rh -= rh * padding

	return ROI{
		CX:    w / 2,
		CY:    h / 2,
		HalfW: rw,
		HalfH: rh,
		RefW:  int(w),
		RefH:  int(h),
	}
}

// DefaultROI computes the ROI for the fixed reference space.
func DefaultROI(cfg Config) ROI {
	return ComputeROI(RefWidth, RefHeight, cfg.OverlayRatio, cfg.ROIPadding)
}

// CropRect rescales the ROI to a frame of the given resolution and
// returns the centered crop rectangle, clamped to the frame bounds.
func (r ROI) CropRect(frameW, frameH int) image.Rectangle {
	scaleX := float64(frameW) / float64(r.RefW)
	scaleY := float64(frameH) / float64(r.RefH)

	cw := int(math.Floor(r.HalfW * 2 * scaleX))
	if cw > frameW {
		cw = frameW
	}
	ch := int(math.Floor(r.HalfH * 2 * scaleY))
	if ch > frameH {
		ch = frameH
	}

	// Origin rounds down for odd crop dimensions.
	x := (frameW - cw) / 2
	if x < 0 {
		x = 0
	}
	y := (frameH - ch) / 2
	if y < 0 {
		y = 0
	}

	return image.Rect(x, y, x+cw, y+ch)
}

// Crop extracts the ROI from a frame as a standalone image.
func (r ROI) Crop(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	rect := r.CropRect(b.Dx(), b.Dy()).Add(b.Min)

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		srcOff := (rect.Min.Y+y-b.Min.Y)*img.Stride + (rect.Min.X-b.Min.X)*4
		dstOff := y * out.Stride
		copy(out.Pix[dstOff:dstOff+rect.Dx()*4], img.Pix[srcOff:srcOff+rect.Dx()*4])
	}
	return out
}
