package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"strings"
	"time"

	"github.com/facegate/go-facegate/internal/log"
)

// Sentinel errors for the capture package.
var (
	// ErrNoSource is returned when no frame source is configured.
	ErrNoSource = errors.New("capture: no frame source")

	// ErrNoFrame is returned when a pose resolved without a single
	// usable frame, aborting the whole sequence.
	ErrNoFrame = errors.New("capture: no frame available to encode")
)

// PoseResult is the raw outcome of one pose capture.
type PoseResult struct {
	Pose     Pose
	Accepted bool
	Frame    *Frame
}

// PoseCapture pairs a pose with its encoded ROI crop, ready for
// submission. ImageBase64 carries no data-URI prefix.
type PoseCapture struct {
	Pose        Pose   `json:"pose"`
	ImageBase64 string `json:"imageBase64"`

	Accepted bool `json:"-"`
}

// Sequencer drives the stability gate across an ordered list of poses,
// collecting one encoded crop per pose. One metrics session (Meter) spans
// the whole run; each pose gets a fresh gate.
type Sequencer struct {
	cfg  Config
	src  Source
	roi  ROI
	sink Sink

	// Injectable for tests; default to the wall clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSequencer creates a sequencer over a frame source. The ROI defaults
// to the configured oval in the reference coordinate space.
func NewSequencer(src Source, cfg Config) *Sequencer {
	return &Sequencer{
		cfg:   cfg,
		src:   src,
		roi:   DefaultROI(cfg),
		sink:  NopSink{},
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// SetSink installs the event sink consuming per-tick progress.
func (s *Sequencer) SetSink(sink Sink) {
	if sink == nil {
		sink = NopSink{}
	}
	s.sink = sink
}

// SetROI overrides the crop region, e.g. when the overlay geometry is
// known and differs from the reference space.
func (s *Sequencer) SetROI(roi ROI) {
	s.roi = roi
}

// ROI returns the crop region in use.
func (s *Sequencer) ROI() ROI {
	return s.roi
}

// Run captures every pose in order and returns the encoded crops.
// A pose that times out still contributes its best-effort frame; a pose
// that never produced a frame aborts the run with ErrNoFrame so partial
// submissions are never sent.
func (s *Sequencer) Run(ctx context.Context, poses []Pose) ([]PoseCapture, error) {
	if s.src == nil {
		return nil, ErrNoSource
	}
	if errs := s.cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %s", strings.Join(errs, "; "))
	}

	meter := NewMeter(s.cfg.EMAAlpha)
	out := make([]PoseCapture, 0, len(poses))

	for i, pose := range poses {
		log.Debug("capturing pose", "pose", pose, "timeout", s.cfg.PoseTimeout)

		res, err := s.capturePose(ctx, meter, pose)
		if err != nil {
			return nil, err
		}
		if res.Frame == nil {
			return nil, fmt.Errorf("%w: pose %s", ErrNoFrame, pose)
		}

		b64, err := s.encodeROI(res.Frame)
		if err != nil {
			return nil, fmt.Errorf("capture: encode pose %s: %w", pose, err)
		}
		out = append(out, PoseCapture{Pose: pose, ImageBase64: b64, Accepted: res.Accepted})

		log.Info("pose captured", "pose", pose, "accepted", res.Accepted)

		// Cooldown between poses so transition motion settles before
		// the next gate starts.
		if i < len(poses)-1 {
			if err := s.sleep(ctx, s.cfg.Cooldown); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// capturePose runs one gate to a terminal state. A nil frame from the
// source skips the gate update for that tick; the deadline still applies.
func (s *Sequencer) capturePose(ctx context.Context, meter *Meter, pose Pose) (PoseResult, error) {
	start := s.now()
	gate := NewGate(s.cfg)
	var last *Frame

	for {
		elapsed := s.now().Sub(start)

		frame, err := s.src.Frame()
		if err != nil {
			return PoseResult{}, fmt.Errorf("capture: pose %s: %w", pose, err)
		}

		if frame == nil {
			s.publish(pose, gate, MetricsSample{}, false, elapsed)
			if elapsed >= s.cfg.PoseTimeout {
				s.publishState(pose, TimedOut, gate, elapsed)
				return PoseResult{Pose: pose, Frame: last}, nil
			}
		} else {
			last = frame
			sample := meter.Sample(frame)
			state := gate.Tick(sample, elapsed)
			s.publish(pose, gate, sample, gate.Stable(sample), elapsed)

			switch state {
			case Accepted:
				return PoseResult{Pose: pose, Accepted: true, Frame: frame}, nil
			case TimedOut:
				return PoseResult{Pose: pose, Frame: last}, nil
			}
		}

		if err := s.sleep(ctx, s.cfg.CheckInterval); err != nil {
			return PoseResult{}, err
		}
	}
}

// encodeROI crops the frame to the ROI and encodes it as base64 JPEG.
func (s *Sequencer) encodeROI(f *Frame) (string, error) {
	crop := s.roi.Crop(f.Image)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: s.cfg.JPEGQuality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Sequencer) publish(pose Pose, g *Gate, sample MetricsSample, stable bool, elapsed time.Duration) {
	remaining := s.cfg.PoseTimeout - elapsed
	if remaining < 0 {
		remaining = 0
	}
	s.sink.Publish(Event{
		Pose:      pose,
		State:     g.State().String(),
		Motion:    sample.Motion,
		Sharpness: sample.Sharpness,
		Score:     g.Score(),
		Progress:  g.Progress(elapsed),
		Stable:    stable,
		Remaining: remaining,
	})
}

// publishState reports a terminal state the gate itself never reached,
// i.e. a deadline that expired across frameless ticks.
func (s *Sequencer) publishState(pose Pose, state State, g *Gate, elapsed time.Duration) {
	s.sink.Publish(Event{
		Pose:     pose,
		State:    state.String(),
		Score:    g.Score(),
		Progress: g.Progress(elapsed),
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
