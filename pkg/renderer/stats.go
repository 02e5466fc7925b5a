package renderer

import "time"

// FrameStats describes one completed Render call
type FrameStats struct {
	Frame    int           // Frame index this render accumulated into (1 = fresh)
	Width    int           // Image width
	Height   int           // Image height
	Pixels   int           // Pixels written
	Samples  int           // Camera rays traced this frame
	Tiles    int           // Tiles dispatched
	Workers  int           // Worker goroutines
	Duration time.Duration // Wall time for the frame
}

// SamplesPerSecond returns the camera-ray throughput of the frame
func (s FrameStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Samples) / s.Duration.Seconds()
}
