package kernel

import "sync"

// Scratch is the per-worker gather buffer described in spec.md §4.A: five
// fixed-capacity arrays of length MaxChildren, overwritten at the start
// of every kernel invocation. A Scratch is only ever touched by the
// worker that owns it, so it needs no locking.
type Scratch struct {
	N        [MaxChildren]int32
	InFlight [MaxChildren]int32
	P        [MaxChildren]float32
	W        [MaxChildren]float32
	U        [MaxChildren]float32
}

// reset clears the first n entries so a previous invocation's values
// never leak into the next one (spec.md §3 "All per-child scratch
// values are overwritten at the start of every kernel invocation").
func (s *Scratch) reset(n int) {
	for i := 0; i < n; i++ {
		s.N[i] = 0
		s.InFlight[i] = 0
		s.P[i] = 0
		s.W[i] = 0
		s.U[i] = 0
	}
}

// ScratchPool hands out worker-owned Scratch buffers. Go has no native
// thread-local storage; sync.Pool is the idiomatic substitute. A worker
// calls Get once when it starts its work loop, keeps the returned
// pointer for the loop's lifetime (satisfying "reused for the thread's
// lifetime"), and calls Put when it is done so another worker's Get can
// recycle the backing array instead of allocating a fresh one.
type ScratchPool struct {
	pool sync.Pool
}

// NewScratchPool constructs an empty pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{
		pool: sync.Pool{
			New: func() interface{} { return new(Scratch) },
		},
	}
}

// Get returns a Scratch buffer, allocating one only on the pool's first
// use (or after the garbage collector has emptied the pool).
func (p *ScratchPool) Get() *Scratch {
	return p.pool.Get().(*Scratch)
}

// Put returns a Scratch buffer to the pool for reuse by another worker.
func (p *ScratchPool) Put(s *Scratch) {
	p.pool.Put(s)
}
