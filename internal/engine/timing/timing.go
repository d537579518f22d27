// Package timing measures frame times for the debug panel.
package timing

import "time"

// FrameTimer tracks the duration of the last frame and a smoothed
// average. The zero value is ready to use.
type FrameTimer struct {
	now func() time.Time

	last    time.Time
	frame   time.Duration
	average time.Duration
	frames  uint64
}

// smoothing is the weight of the newest frame in the running average.
const smoothing = 0.1

// NewFrameTimer returns a timer using the wall clock.
func NewFrameTimer() *FrameTimer {
	return &FrameTimer{}
}

func (t *FrameTimer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// Tick marks the start of a frame and returns the time since the
// previous Tick. The first call returns zero.
func (t *FrameTimer) Tick() time.Duration {
	now := t.clock()
	if t.last.IsZero() {
		t.last = now
		return 0
	}

	t.frame = now.Sub(t.last)
	t.last = now
	t.frames++
	if t.frames == 1 {
		t.average = t.frame
	} else {
		t.average += time.Duration(smoothing * float64(t.frame-t.average))
	}
	return t.frame
}

// Frame returns the duration of the last frame.
func (t *FrameTimer) Frame() time.Duration { return t.frame }

// Frames returns the number of completed frames.
func (t *FrameTimer) Frames() uint64 { return t.frames }

// RenderTimeMs returns the smoothed frame time in milliseconds.
func (t *FrameTimer) RenderTimeMs() float64 {
	return float64(t.average) / float64(time.Millisecond)
}

// Seconds returns the last frame duration in seconds, for movement.
func (t *FrameTimer) Seconds() float32 {
	return float32(t.frame.Seconds())
}
