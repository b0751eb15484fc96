package capture

import (
	"github.com/facegate/go-facegate/pkg/debug"
)

// MetricsSample holds the smoothed motion and sharpness scores for one
// tick. Both are exponential moving averages, not instantaneous values.
type MetricsSample struct {
	Motion    float64 `json:"motion"`
	Sharpness float64 `json:"sharpness"`
}

// Meter computes per-frame quality metrics with smoothing.
//
// A Meter is a capture-session handle: the previous-frame buffer and the
// EMA accumulators live here, so smoothing is continuous within one pose
// sequence and never leaks across independent sessions. Single writer,
// single reader; not safe for concurrent use.
type Meter struct {
	alpha float64

	prev      *grayBuffer
	emaMotion float64
	emaSharp  float64
	seeded    bool
}

// NewMeter creates a fresh metrics engine for one capture session.
func NewMeter(alpha float64) *Meter {
	return &Meter{alpha: alpha}
}

// Sample computes the smoothed metrics for a frame.
// A nil frame yields a zero sample and leaves the smoothing state
// untouched; callers treat that as no pose progress this tick.
func (m *Meter) Sample(f *Frame) MetricsSample {
	if f == nil || f.Image == nil {
		return MetricsSample{}
	}

	gray := rgbaToGray(f.Image)

	motion := 0.0
	if m.prev != nil && len(m.prev.pix) == len(gray.pix) {
		motion = meanAbsDiff(gray.pix, m.prev.pix)
	}
	// Every sample advances the reference frame, including the first.
	m.prev = gray

	sharp := laplacianVariance(gray)

	if !m.seeded {
		m.emaMotion = motion
		m.emaSharp = sharp
		m.seeded = true
	} else {
		m.emaMotion = m.alpha*motion + (1-m.alpha)*m.emaMotion
		m.emaSharp = m.alpha*sharp + (1-m.alpha)*m.emaSharp
	}

	debug.MetricsLog("metrics: motion=%.2f sharp=%.1f (raw %.2f/%.1f)\n",
		m.emaMotion, m.emaSharp, motion, sharp)

	return MetricsSample{Motion: m.emaMotion, Sharpness: m.emaSharp}
}

// meanAbsDiff is the motion score: mean absolute pixel-wise difference
// between two equally sized grayscale planes.
func meanAbsDiff(a, b []uint8) float64 {
	sum := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}

// laplacianVariance is the sharpness score: population variance of the
// 4-neighbour discrete Laplacian over interior pixels. Clamped to zero
// to absorb floating-point underflow.
func laplacianVariance(g *grayBuffer) float64 {
	var lapSum, lapSq float64
	cnt := 0

	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			i := y*g.w + x
			v := float64(4*int(g.pix[i]) - int(g.pix[i-1]) - int(g.pix[i+1]) -
				int(g.pix[i-g.w]) - int(g.pix[i+g.w]))
			lapSum += v
			lapSq += v * v
			cnt++
		}
	}

	if cnt == 0 {
		return 0
	}
	mean := lapSum / float64(cnt)
	v := lapSq/float64(cnt) - mean*mean
	if v < 0 {
		v = 0
	}
	return v
}
