package renderer

import "runtime"

// Settings controls how each frame is sampled and scheduled
type Settings struct {
	SamplesPerPixel int   `json:"samplesPerPixel"` // Rays per pixel per frame
	MaxBounces      int   `json:"maxBounces"`      // A path visits at most MaxBounces+1 surfaces
	Accumulate      bool  `json:"accumulate"`      // Average frames progressively instead of restarting each frame
	Jitter          bool  `json:"jitter"`          // Randomize the sample position inside each pixel
	NumWorkers      int   `json:"numWorkers"`      // Parallel tile workers (0 = use CPU count)
	TileSize        int   `json:"tileSize"`        // Edge length of the square tiles handed to workers
	Seed            int64 `json:"seed"`            // Base seed for per-tile generators (0 = seed from entropy)
}

// DefaultSettings returns one sample, five bounces, accumulation and jitter on
func DefaultSettings() Settings {
	return Settings{
		SamplesPerPixel: 1,
		MaxBounces:      5,
		Accumulate:      true,
		Jitter:          true,
		NumWorkers:      0,
		TileSize:        64,
		Seed:            0,
	}
}

// normalized fills in defaults for out-of-range values
func (s Settings) normalized() Settings {
	if s.SamplesPerPixel < 1 {
		s.SamplesPerPixel = 1
	}
	if s.MaxBounces < 0 {
		s.MaxBounces = 0
	}
	if s.NumWorkers <= 0 {
		s.NumWorkers = runtime.NumCPU()
	}
	if s.TileSize <= 0 {
		s.TileSize = 64
	}
	return s
}
