// Package capture implements the stability-gated auto-capture engine:
// per-frame motion/sharpness metrics, a hysteresis dwell-time gate, and a
// pose sequencer that turns a live frame source into one well-timed crop
// per requested head pose.
package capture

import "time"

// Reference coordinate space the ROI is expressed in. Crops rescale from
// this space to the actual frame resolution at use-time.
const (
	RefWidth  = 640
	RefHeight = 480
)

// Config holds all tunable parameters for the capture engine.
// Values are read at startup and never mutated during a capture.
type Config struct {
	// === Oval / region of interest ===
	// OverlayRatio scales the guide oval relative to the display (0..1].
	OverlayRatio float64 `json:"overlay_ratio"`

	// ROIPadding shrinks each ROI dimension by this fraction to trim
	// background at the oval edge [0..1).
	ROIPadding float64 `json:"roi_padding"`

	// === Stability gate ===
	// Dwell is how long metrics must stay continuously stable before a
	// frame is accepted.
	Dwell time.Duration `json:"dwell_ms"`

	// PoseTimeout is the hard per-pose deadline.
	PoseTimeout time.Duration `json:"pose_timeout_ms"`

	// MotionMax is the highest smoothed motion score still counted stable.
	MotionMax float64 `json:"motion_max"`

	// SharpMin is the lowest smoothed sharpness score still counted stable.
	SharpMin float64 `json:"sharp_min"`

	// CheckInterval is the metric polling period.
	CheckInterval time.Duration `json:"check_interval_ms"`

	// DecayRatio scales the score decay rate relative to the accrual
	// rate. Below 1 brief instability does not erase all progress.
	DecayRatio float64 `json:"decay_ratio"`

	// TimeProgressWeight caps how much elapsed-deadline pressure feeds
	// the advisory progress signal. Display only, never gates.
	TimeProgressWeight float64 `json:"time_progress_weight"`

	// EMAAlpha is the smoothing weight for motion/sharpness averaging.
	EMAAlpha float64 `json:"ema_alpha"`

	// === Sequencing / output ===
	// Cooldown is the pause between poses, letting the transition motion
	// settle before the next gate starts.
	Cooldown time.Duration `json:"cooldown_ms"`

	// JPEGQuality for encoded crops (1-100).
	JPEGQuality int `json:"jpeg_quality"`
}

// DefaultConfig returns the tuned production configuration.
func DefaultConfig() Config {
	return Config{
		OverlayRatio: 0.58,
		ROIPadding:   0.06,

		Dwell:       1200 * time.Millisecond,
		PoseTimeout: 9000 * time.Millisecond,
		MotionMax:   9.5,
		SharpMin:    18,

		CheckInterval: 80 * time.Millisecond,

		DecayRatio:         0.5,
		TimeProgressWeight: 0.7,
		EMAAlpha:           0.35,

		Cooldown:    200 * time.Millisecond,
		JPEGQuality: 95,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.OverlayRatio <= 0 || c.OverlayRatio > 1 {
		errors = append(errors, "overlay_ratio must be in (0, 1]")
	}
	if c.ROIPadding < 0 || c.ROIPadding >= 1 {
		errors = append(errors, "roi_padding must be in [0, 1)")
	}
	if c.Dwell <= 0 {
		errors = append(errors, "dwell_ms must be positive")
	}
	if c.PoseTimeout <= 0 {
		errors = append(errors, "pose_timeout_ms must be positive")
	}
	if c.MotionMax < 0 {
		errors = append(errors, "motion_max must be non-negative")
	}
	if c.SharpMin < 0 {
		errors = append(errors, "sharp_min must be non-negative")
	}
	if c.CheckInterval <= 0 {
		errors = append(errors, "check_interval_ms must be positive")
	}
	if c.DecayRatio < 0 {
		errors = append(errors, "decay_ratio must be non-negative")
	}
	if c.TimeProgressWeight < 0 || c.TimeProgressWeight > 1 {
		errors = append(errors, "time_progress_weight must be in [0, 1]")
	}
	if c.EMAAlpha <= 0 || c.EMAAlpha > 1 {
		errors = append(errors, "ema_alpha must be in (0, 1]")
	}
	if c.Cooldown < 0 {
		errors = append(errors, "cooldown_ms must be non-negative")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, "jpeg_quality must be between 1 and 100")
	}

	return errors
}
