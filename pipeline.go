package narrowphase

import (
	"errors"
	"sync"

	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/shape"
)

const defaultWorkers = 1

// Pair binds two shapes, their current poses and the persistent generator
// tracking their contact manifold across frames.
type Pair struct {
	Shape1 shape.Shape
	Pose1  shape.Transform
	Shape2 shape.Shape
	Pose2  shape.Transform

	Generator ContactGenerator

	// Handled reports whether the last update could process the pair; an
	// unhandled pair must be routed to another kind of collider.
	Handled bool
}

// Pipeline updates a batch of independent shape pairs in parallel. Pairs are
// partitioned by index across workers and each worker owns its id allocator,
// so no coordination is needed between generators; keeping the pair order
// stable across frames keeps each pair on the same allocator and its cache
// slot ids meaningful.
type Pipeline struct {
	Workers    int
	Prediction query.Prediction

	allocators []*query.IDAllocator
}

// NewPipeline creates a pipeline running the given number of workers.
func NewPipeline(workers int, prediction query.Prediction) *Pipeline {
	if workers < defaultWorkers {
		workers = defaultWorkers
	}
	allocators := make([]*query.IDAllocator, workers)
	for i := range allocators {
		allocators[i] = query.NewIDAllocator()
	}
	return &Pipeline{
		Workers:    workers,
		Prediction: prediction,
		allocators: allocators,
	}
}

// Update runs one narrow-phase update on every pair. Defect errors of
// individual pairs are collected and joined; they abort only the failing
// pair's generation, never the batch.
func (p *Pipeline) Update(pairs []*Pair) error {
	workerErrs := make([]error, p.Workers)

	task(p.Workers, pairs, func(workerID int, pair *Pair) {
		handled, err := pair.Generator.Update(
			pair.Shape1, pair.Pose1,
			pair.Shape2, pair.Pose2,
			p.Prediction,
			p.allocators[workerID],
		)
		pair.Handled = handled
		if err != nil {
			workerErrs[workerID] = errors.Join(workerErrs[workerID], err)
		}
	})

	return errors.Join(workerErrs...)
}

// Manifolds collects the non-empty manifolds of every handled pair.
func (p *Pipeline) Manifolds(pairs []*Pair, out []*query.Manifold) []*query.Manifold {
	for _, pair := range pairs {
		out = pair.Generator.Manifolds(out)
	}
	return out
}

// task fans a slice out to workers in contiguous chunks. The chunking is
// deterministic so the same element index always lands on the same worker.
func task[T any](workersCount int, data []T, fn func(workerID int, data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(id, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(id, data[i])
			}
		}(workerID, workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
