package renderer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// tileTask is one tile waiting for a worker
type tileTask struct {
	tile Tile
	seed int64
}

// WorkerPool renders tiles on a fixed set of goroutines and streams the
// finished tiles through a bounded channel. Sends block when the consumer
// falls behind; cancellation unblocks them and drops the tile.
type WorkerPool struct {
	renderer    *TileRenderer
	taskQueue   chan tileTask
	resultQueue chan Tile
	numWorkers  int
	wg          sync.WaitGroup
	logger      *slog.Logger
	completed   atomic.Int64
	dropped     atomic.Int64
	started     time.Time
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize bounds the pending tasks, resultBuffer the finished tiles.
func NewWorkerPool(tr *TileRenderer, numWorkers, queueSize, resultBuffer int, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{
		renderer:    tr,
		taskQueue:   make(chan tileTask, queueSize),
		resultQueue: make(chan Tile, resultBuffer),
		numWorkers:  numWorkers,
		logger:      logger,
	}
}

// Start begins all workers. They stop when the task queue is closed and
// drained, or as soon as ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.started = time.Now()
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx, i)
	}
}

// Submit queues a tile. It returns false without queueing once ctx is cancelled.
func (wp *WorkerPool) Submit(ctx context.Context, tile Tile, seed int64) bool {
	select {
	case wp.taskQueue <- tileTask{tile: tile, seed: seed}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close signals that no more tiles will be submitted. The result channel is
// closed once every worker has exited.
func (wp *WorkerPool) Close(ctx context.Context) {
	close(wp.taskQueue)
	go func() {
		wp.wg.Wait()
		// Log before closing so consumers see the last record by the time
		// the result channel drains
		defer close(wp.resultQueue)

		if err := ctx.Err(); err != nil {
			wp.logger.Info("render cancelled",
				"tiles", wp.completed.Load(),
				"dropped", wp.dropped.Load(),
				"elapsed", time.Since(wp.started),
				"err", err)
			return
		}
		wp.logger.Info("render finished",
			"tiles", wp.completed.Load(),
			"elapsed", time.Since(wp.started))
	}()
}

// Results returns the finished tiles in completion order
func (wp *WorkerPool) Results() <-chan Tile {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		var task tileTask
		var ok bool
		select {
		case <-ctx.Done():
			return
		case task, ok = <-wp.taskQueue:
			if !ok {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		// Each tile has non-overlapping bounds and its own generator,
		// so workers share nothing but read-only scene data
		tile := task.tile
		wp.renderer.RenderTile(&tile, tileRandom(task.seed, tile.ID))

		select {
		case wp.resultQueue <- tile:
			wp.completed.Add(1)
			wp.logger.Debug("tile rendered",
				"worker", id,
				"tile_x", tile.X,
				"tile_y", tile.Y,
				"duration", tile.Duration)
		case <-ctx.Done():
			wp.dropped.Add(1)
			return
		}
	}
}
