package renderer

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		expectedTiles int
	}{
		{"exact fit", 128, 64, 32, 8},
		{"partial edge tiles", 100, 50, 32, 8},
		{"single tile", 16, 16, 64, 1},
		{"one pixel tiles", 3, 2, 1, 6},
		{"non-positive tile size", 2, 2, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			if len(tiles) != tt.expectedTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.expectedTiles, len(tiles))
			}

			// Tiles must cover the image exactly once
			covered := make([]int, tt.width*tt.height)
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Tile %d has ID %d", i, tile.ID)
				}
				if !tile.Bounds.In(image.Rect(0, 0, tt.width, tt.height)) {
					t.Errorf("Tile %d bounds %v exceed image", i, tile.Bounds)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						covered[y*tt.width+x]++
					}
				}
			}
			for i, n := range covered {
				if n != 1 {
					t.Fatalf("Pixel %d covered %d times", i, n)
				}
			}
		})
	}
}

func TestWorkerPoolRunsEveryTile(t *testing.T) {
	tiles := NewTileGrid(64, 64, 8)
	wp := NewWorkerPool(4)

	var mu sync.Mutex
	seen := make(map[int]int)
	err := wp.Run(context.Background(), tiles, func(ctx context.Context, tile *Tile) error {
		mu.Lock()
		seen[tile.ID]++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(seen) != len(tiles) {
		t.Fatalf("Expected %d tiles processed, got %d", len(tiles), len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Tile %d processed %d times", id, n)
		}
	}
}

func TestWorkerPoolStopsOnError(t *testing.T) {
	tiles := NewTileGrid(256, 256, 1)
	wp := NewWorkerPool(2)
	errBoom := errors.New("boom")

	var processed atomic.Int64
	err := wp.Run(context.Background(), tiles, func(ctx context.Context, tile *Tile) error {
		processed.Add(1)
		if tile.ID == 0 {
			return errBoom
		}
		return nil
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected errBoom, got %v", err)
	}
	if processed.Load() >= int64(len(tiles)) {
		t.Errorf("Expected remaining tiles to be skipped after an error, processed %d of %d",
			processed.Load(), len(tiles))
	}
}

func TestWorkerPoolCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int64
	err := NewWorkerPool(4).Run(ctx, NewTileGrid(32, 32, 8), func(ctx context.Context, tile *Tile) error {
		processed.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if processed.Load() != 0 {
		t.Errorf("Expected no tiles processed, got %d", processed.Load())
	}
}

func TestNewWorkerPoolAutoDetect(t *testing.T) {
	if n := NewWorkerPool(0).NumWorkers(); n < 1 {
		t.Errorf("Expected at least one worker, got %d", n)
	}
	if n := NewWorkerPool(3).NumWorkers(); n != 3 {
		t.Errorf("Expected 3 workers, got %d", n)
	}
}
