package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/jpeg"
	"testing"
	"time"
)

// fakeClock drives the sequencer without real sleeps: every sleep
// advances virtual time by the requested duration.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

// stubSource returns frames from a function, counting calls.
type stubSource struct {
	frame func(call int) (*Frame, error)
	calls int
}

func (s *stubSource) Frame() (*Frame, error) {
	s.calls++
	if s.frame == nil {
		return nil, nil
	}
	return s.frame(s.calls)
}

func (s *stubSource) Close() error { return nil }

func newTestSequencer(src Source, cfg Config) (*Sequencer, *fakeClock) {
	seq := NewSequencer(src, cfg)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	seq.now = clock.Now
	seq.sleep = clock.Sleep
	return seq, clock
}

// steadySource always yields the same sharp static frame: zero motion
// after the first sample, high sharpness, so every tick is stable.
func steadySource() *stubSource {
	return &stubSource{frame: func(int) (*Frame, error) {
		return checkerFrame(64, 48), nil
	}}
}

func TestSequencerEnrollmentEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	src := steadySource()
	seq, clock := newTestSequencer(src, cfg)

	var events []Event
	seq.SetSink(SinkFunc(func(e Event) { events = append(events, e) }))

	start := clock.now
	captures, err := seq.Run(context.Background(), EnrollSequence())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(captures) != 3 {
		t.Fatalf("captures: got %d, want 3", len(captures))
	}
	for i, want := range EnrollSequence() {
		pc := captures[i]
		if pc.Pose != want {
			t.Errorf("capture %d: pose %s, want %s", i, pc.Pose, want)
		}
		if !pc.Accepted {
			t.Errorf("capture %d: not accepted under steady stable input", i)
		}
		if pc.ImageBase64 == "" {
			t.Errorf("capture %d: empty encoded image", i)
		}
	}

	// 15 stable ticks per pose (14 inter-tick sleeps of 80ms) plus two
	// 200ms cooldowns between the three poses.
	wantElapsed := 3*14*cfg.CheckInterval + 2*cfg.Cooldown
	if got := clock.now.Sub(start); got != wantElapsed {
		t.Errorf("virtual elapsed: got %v, want %v", got, wantElapsed)
	}

	// Terminal event per pose is ACCEPTED with full progress.
	var accepted int
	for _, e := range events {
		if e.State == Accepted.String() {
			accepted++
			if e.Progress != 1 {
				t.Errorf("accepted event progress: got %v, want 1", e.Progress)
			}
		}
	}
	if accepted != 3 {
		t.Errorf("accepted events: got %d, want 3", accepted)
	}
}

func TestSequencerCropDimensions(t *testing.T) {
	cfg := DefaultConfig()
	seq, _ := newTestSequencer(steadySource(), cfg)

	captures, err := seq.Run(context.Background(), []Pose{PoseFront})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := base64.StdEncoding.DecodeString(captures[0].ImageBase64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("payload is not a JPEG: %v", err)
	}

	want := seq.ROI().CropRect(64, 48)
	if img.Bounds().Dx() != want.Dx() || img.Bounds().Dy() != want.Dy() {
		t.Errorf("crop dimensions: got %v, want %dx%d", img.Bounds(), want.Dx(), want.Dy())
	}
}

func TestSequencerTimeoutKeepsBestEffortFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoseTimeout = 640 * time.Millisecond // blur never stabilizes

	// Flat frames: sharpness 0, never stable.
	src := &stubSource{frame: func(int) (*Frame, error) {
		return uniformFrame(128, 64, 48), nil
	}}
	seq, _ := newTestSequencer(src, cfg)

	captures, err := seq.Run(context.Background(), []Pose{PoseFront})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if captures[0].Accepted {
		t.Error("blurred pose must not be accepted")
	}
	if captures[0].ImageBase64 == "" {
		t.Error("timed-out pose must still carry the last frame")
	}
}

func TestSequencerAbortsWhenNoFrameEver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoseTimeout = 400 * time.Millisecond

	seq, _ := newTestSequencer(&stubSource{}, cfg) // always nil frames

	_, err := seq.Run(context.Background(), []Pose{PoseFront})
	if !errors.Is(err, ErrNoFrame) {
		t.Errorf("got %v, want ErrNoFrame", err)
	}
}

func TestSequencerFramelessTicksSkipGateProgress(t *testing.T) {
	cfg := DefaultConfig()

	// Frames drop out every other tick; stability still accrues only on
	// real frames, so acceptance needs 15 of them.
	src := &stubSource{frame: func(call int) (*Frame, error) {
		if call%2 == 0 {
			return nil, nil
		}
		return checkerFrame(64, 48), nil
	}}
	seq, clock := newTestSequencer(src, cfg)

	start := clock.now
	captures, err := seq.Run(context.Background(), []Pose{PoseFront})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !captures[0].Accepted {
		t.Fatal("expected acceptance once enough real frames arrived")
	}

	// 29 ticks (15 with frames interleaved with 14 without) = 28 sleeps.
	if got, want := clock.now.Sub(start), 28*cfg.CheckInterval; got != want {
		t.Errorf("virtual elapsed: got %v, want %v", got, want)
	}
}

func TestSequencerSourceErrorIsFatal(t *testing.T) {
	wantErr := errors.New("device unplugged")
	src := &stubSource{frame: func(int) (*Frame, error) {
		return nil, wantErr
	}}
	seq, _ := newTestSequencer(src, DefaultConfig())

	_, err := seq.Run(context.Background(), []Pose{PoseFront})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped %v", err, wantErr)
	}
}

func TestSequencerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dwell = 0

	seq, _ := newTestSequencer(steadySource(), cfg)
	if _, err := seq.Run(context.Background(), []Pose{PoseFront}); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestSequencerNilSourceErrors(t *testing.T) {
	seq := NewSequencer(nil, DefaultConfig())
	if _, err := seq.Run(context.Background(), EnrollSequence()); !errors.Is(err, ErrNoSource) {
		t.Errorf("got %v, want ErrNoSource", err)
	}
}
