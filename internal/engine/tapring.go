package engine

// tapRing is the sliding window over input blocks used by the interior
// convolution. It holds views of the B most recent taps' worth of blocks;
// advancing a step discards the oldest d_mu·unroll views and admits as many
// new ones, so the per-step reload is O(d_mu) instead of O(B).
//
// Each worker owns its own ring; no state is shared across workers.
type tapRing struct {
	views [][]complex128
	head  int
	count int
}

func newTapRing(capacity int) *tapRing {
	return &tapRing{views: make([][]complex128, capacity)}
}

// reset empties the ring for a new position chunk.
func (r *tapRing) reset() {
	r.head = 0
	r.count = 0
}

// push appends a block view at the tail.
func (r *tapRing) push(view []complex128) {
	r.views[(r.head+r.count)%len(r.views)] = view
	r.count++
}

// at returns the view t steps past the current head.
func (r *tapRing) at(t int) []complex128 {
	return r.views[(r.head+t)%len(r.views)]
}

// advance drops the n oldest views.
func (r *tapRing) advance(n int) {
	r.head = (r.head + n) % len(r.views)
	r.count -= n
}
