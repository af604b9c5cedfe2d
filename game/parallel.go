package game

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/systems"
)

// eyeSnapshot captures the read-only state one eye needs for sensing.
type eyeSnapshot struct {
	Entity ecs.Entity
	Pose   systems.Pose
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Hits []ecs.Entity
}

// workChunk represents a range of eyes for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel sensing.
type parallelState struct {
	snapshots   []eyeSnapshot
	activations []float32
	scratches   []workerScratch
	numWorkers  int
	minBatch    int // fewest eyes worth handing to one worker

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(minBatch int) *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	if minBatch < 1 {
		minBatch = 1
	}
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Hits = make([]ecs.Entity, 0, 64)
	}
	return &parallelState{
		numWorkers:  numWorkers,
		minBatch:    minBatch,
		scratches:   scratches,
		snapshots:   make([]eyeSnapshot, 0, 512),
		activations: make([]float32, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.senseChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// updateSensing computes every eye's activation from the food index.
// Eyes are independent: poses are snapshotted, activations computed in
// parallel batches, then written back in snapshot order.
func (g *Game) updateSensing() {
	p := g.parallel

	// Phase A: Build snapshots (single-threaded)
	p.snapshots = p.snapshots[:0]

	query := g.eyeFilter.Query()
	for query.Next() {
		entity := query.Entity()
		organ, _ := query.Get()

		parent := organ.Parent
		if !g.world.Alive(parent) || !g.posMap.Has(parent) || !g.rotMap.Has(parent) {
			continue
		}
		pos := g.posMap.Get(parent)
		rot := g.rotMap.Get(parent)

		p.snapshots = append(p.snapshots, eyeSnapshot{
			Entity: entity,
			Pose: systems.OrganPose(
				systems.Vec2{X: pos.X, Y: pos.Y}, rot.Heading,
				systems.Vec2{X: organ.OffsetX, Y: organ.OffsetY}, organ.Angle,
			),
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}

	if cap(p.activations) < n {
		p.activations = make([]float32, n)
	}
	p.activations = p.activations[:n]

	// Phase B: Compute - single-threaded unless there are at least two batches
	if n < 2*p.minBatch || p.numWorkers < 2 {
		g.senseChunk(0, n, &p.scratches[0])
	} else {
		g.senseParallel(n)
	}

	// Phase C: Apply activations (single-threaded)
	for i, snap := range p.snapshots {
		if g.world.Alive(snap.Entity) && g.eyeMap.Has(snap.Entity) {
			g.eyeMap.Get(snap.Entity).Activation = p.activations[i]
		}
	}
}

// senseParallel dispatches batches of at least minBatch eyes to the pool.
func (g *Game) senseParallel(n int) {
	p := g.parallel
	if !p.running {
		p.startWorkers(g)
	}

	numChunks := min(p.numWorkers, n/p.minBatch)
	chunkSize := (n + numChunks - 1) / numChunks

	chunksDispatched := 0
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// senseChunk computes activations for a range of eye snapshots. It only
// reads the food index, which is not modified during sensing.
func (g *Game) senseChunk(i0, i1 int, scratch *workerScratch) {
	p := g.parallel
	for i := i0; i < i1; i++ {
		var a float32
		a, scratch.Hits = g.vision.Activation(g.food, p.snapshots[i].Pose, scratch.Hits)
		p.activations[i] = a
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
