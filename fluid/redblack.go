package fluid

import (
	"runtime"
	"sync"
)

// parallelRows is the minimum interior row count worth splitting across workers.
const parallelRows = 32

// Red-black colours. A cell (x, y) is red when x+y is odd. Two cells of the
// same colour never share a face, so a colour can be relaxed in any order
// and in parallel.
const (
	colourRed   = 1
	colourBlack = 0
)

func (s *sweep) relaxColour(y0, y1, colour int) {
	for y := y0; y < y1; y++ {
		for x := (y + colour) & 1; x < s.g.W; x += 2 {
			s.relax(x, y)
		}
	}
}

func (p *Projector) redBlackStep(s sweep) {
	g := s.g
	if g.H < parallelRows || p.pool.numWorkers < 2 {
		s.relaxColour(0, g.H, colourRed)
		s.relaxColour(0, g.H, colourBlack)
		return
	}
	p.pool.run(&s, colourRed)
	p.pool.run(&s, colourBlack)
}

// rowChunk is a band of rows to relax for one colour.
type rowChunk struct {
	s      *sweep
	y0, y1 int
	colour int
}

// rowPool is a persistent set of workers relaxing row bands. Each run call
// is a barrier: it returns only once every band of the colour is done.
type rowPool struct {
	numWorkers int

	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func newRowPool(workers int) *rowPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &rowPool{numWorkers: workers}
}

func (p *rowPool) startWorkers() {
	if p.running {
		return
	}
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *rowPool) stopWorkers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *rowPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.s.relaxColour(chunk.y0, chunk.y1, chunk.colour)
			p.doneChan <- struct{}{}
		}
	}
}

// run relaxes every cell of one colour across the pool.
func (p *rowPool) run(s *sweep, colour int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startWorkers()

	n := s.g.H
	size := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for y0 := 0; y0 < n; y0 += size {
		p.workChan <- rowChunk{s: s, y0: y0, y1: min(y0+size, n), colour: colour}
		dispatched++
	}
	for range dispatched {
		<-p.doneChan
	}
}
