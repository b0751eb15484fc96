package camera

import (
	"testing"

	"github.com/facegate/go-facegate/pkg/capture"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestValidateCatchesBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"negative device", Config{DeviceID: -1, Width: 960, Height: 720}},
		{"width too small", Config{Width: 100, Height: 720}},
		{"height too large", Config{Width: 960, Height: 4000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if errs := tc.cfg.Validate(); len(errs) == 0 {
				t.Errorf("expected validation errors for %+v", tc.cfg)
			}
		})
	}
}

func TestMockImplementsSource(t *testing.T) {
	var src capture.Source = &Mock{}

	f, err := src.Frame()
	if f != nil || err != nil {
		t.Errorf("default mock: got (%v, %v), want (nil, nil)", f, err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("default mock Close: %v", err)
	}
}

func TestMockCountsFrames(t *testing.T) {
	m := &Mock{}
	for i := 0; i < 5; i++ {
		m.Frame()
	}
	if got := m.FrameCount(); got != 5 {
		t.Errorf("frame count: got %d, want 5", got)
	}
}
