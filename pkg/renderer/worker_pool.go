package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask bakes one tile. It is called from a worker goroutine.
type TileTask func(ctx context.Context, tile *Tile) error

// WorkerPool runs tile tasks on a fixed number of workers
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 uses one worker per CPU
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run submits every tile and waits for the workers to drain the queue.
// The first task error cancels the context seen by the remaining tasks;
// tiles not yet started are skipped. Cancellation never interrupts a tile
// in progress.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, task TileTask) error {
	g, ctx := errgroup.WithContext(ctx)

	taskQueue := make(chan *Tile, len(tiles)) // Buffer for all tiles
	for _, tile := range tiles {
		taskQueue <- tile
	}
	close(taskQueue)

	for i := 0; i < min(wp.numWorkers, len(tiles)); i++ {
		g.Go(func() error {
			for tile := range taskQueue {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := task(ctx, tile); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
