// Package camera acquires raster frames from a local capture device and
// exposes them as a capture.Source. All OpenCV usage stays behind this
// package so the core engine remains testable without it.
package camera

// Config holds capture device parameters.
type Config struct {
	// DeviceID selects the capture device (0 = default webcam).
	DeviceID int `json:"device_id"`

	// Requested resolution. The device may deliver something else;
	// downstream cropping rescales from the actual frame size.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultConfig returns the recommended capture configuration.
// 960x720 gives enough detail for sharpness scoring without stalling the
// 80ms polling cadence on typical hardware.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    960,
		Height:   720,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceID < 0 {
		errors = append(errors, "device_id must be non-negative")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}

	return errors
}
