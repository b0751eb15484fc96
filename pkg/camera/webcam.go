package camera

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/facegate/go-facegate/pkg/capture"
)

// ErrClosed is returned when reading from a closed webcam.
var ErrClosed = errors.New("camera: device closed")

// Webcam reads frames from a local video device via OpenCV.
type Webcam struct {
	cap *gocv.VideoCapture
	mat gocv.Mat

	mu     sync.Mutex
	closed bool
}

// Open opens the configured capture device and requests the configured
// resolution.
func Open(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %s", strings.Join(errs, "; "))
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", cfg.DeviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	return &Webcam{cap: cap, mat: gocv.NewMat()}, nil
}

// Frame grabs the current frame. A nil frame with nil error means the
// device produced nothing this instant; callers skip the tick.
func (w *Webcam) Frame() (*capture.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	if ok := w.cap.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, nil
	}

	img, err := w.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera: convert frame: %w", err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	return &capture.Frame{Image: rgba, Captured: time.Now()}, nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.mat.Close()
	return w.cap.Close()
}
