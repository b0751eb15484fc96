package capture

import (
	"math"
	"time"
)

// State is the stability gate's lifecycle for one pose capture.
type State int

const (
	// Waiting means the gate is still accumulating stability.
	Waiting State = iota

	// Accepted means the score reached 1; the frame from that tick is
	// the capture result.
	Accepted

	// TimedOut means the pose deadline passed first; the most recent
	// frame is returned as a best-effort fallback.
	TimedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Accepted:
		return "ACCEPTED"
	case TimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the gate has resolved.
func (s State) Terminal() bool {
	return s != Waiting
}

// scoreEps absorbs accumulation error in the per-tick step.
const scoreEps = 1e-9

// Gate is the hysteresis dwell-time state machine for one pose capture.
// Score rises by interval/dwell per stable tick and falls at DecayRatio
// times that rate per unstable tick, so brief instability does not erase
// all progress. Create a fresh Gate per pose.
type Gate struct {
	cfg   Config
	score float64
	state State
}

// NewGate creates a gate in the Waiting state with a zero score.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Stable is the stability predicate for one sample.
func (g *Gate) Stable(s MetricsSample) bool {
	return s.Motion <= g.cfg.MotionMax && s.Sharpness >= g.cfg.SharpMin
}

// Tick advances the gate by one polling period. elapsed is the time
// since the pose started. Once terminal, further ticks are no-ops.
func (g *Gate) Tick(s MetricsSample, elapsed time.Duration) State {
	if g.state != Waiting {
		return g.state
	}

	step := float64(g.cfg.CheckInterval) / float64(g.cfg.Dwell)
	if g.Stable(s) {
		g.score = math.Min(1, g.score+step)
	} else {
		g.score = math.Max(0, g.score-g.cfg.DecayRatio*step)
	}

	switch {
	case g.score >= 1-scoreEps:
		// Snap to 1 so ceil(dwell/interval) stable ticks suffice even
		// when the per-tick step is not exactly representable.
		g.score = 1
		g.state = Accepted
	case elapsed >= g.cfg.PoseTimeout:
		g.state = TimedOut
	}
	return g.state
}

// Score returns the current stability score in [0, 1].
func (g *Gate) Score() float64 {
	return g.score
}

// State returns the gate's current state.
func (g *Gate) State() State {
	return g.state
}

// Progress blends the stability score with elapsed-deadline pressure so
// displayed progress never looks frozen under poor conditions. Advisory
// only; never gates acceptance.
func (g *Gate) Progress(elapsed time.Duration) float64 {
	if g.state == Accepted {
		return 1
	}
	remain := g.cfg.PoseTimeout - elapsed
	if remain < 0 {
		remain = 0
	}
	pTime := 1 - float64(remain)/float64(g.cfg.PoseTimeout)
	p := math.Max(g.score, pTime*g.cfg.TimeProgressWeight)
	return math.Min(1, math.Max(0, p))
}
