package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/facegate/go-facegate/pkg/capture"
)

// barSink renders capture progress as one terminal bar per pose.
// Implements capture.Sink.
type barSink struct {
	bar  *progressbar.ProgressBar
	pose capture.Pose
}

func newBarSink() *barSink {
	return &barSink{}
}

// Publish implements capture.Sink.
func (b *barSink) Publish(e capture.Event) {
	if b.bar == nil || e.Pose != b.pose {
		if b.bar != nil {
			_ = b.bar.Finish()
			fmt.Println()
		}
		b.pose = e.Pose
		b.bar = newBar(e.Pose.Hint())
	}

	_ = b.bar.Set(int(e.Progress * 100))

	if e.State == capture.TimedOut.String() {
		b.bar.Describe(e.Pose.Hint() + " (timeout, using best frame)")
	}
}

func newBar(desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
