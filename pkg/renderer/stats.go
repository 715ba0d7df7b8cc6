package renderer

import (
	"time"

	"github.com/df07/go-texture-source/pkg/texture"
)

// BakeStats contains statistics about a bake
type BakeStats struct {
	TotalPixels int           // Total number of pixels evaluated
	TotalTiles  int           // Number of tiles the image was split into
	Workers     int           // Number of workers used
	Duration    time.Duration // Wall time of the bake
	Cache       texture.CacheStats
}

// PixelsPerSecond returns the evaluation throughput of the bake
func (s BakeStats) PixelsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Duration.Seconds()
}
