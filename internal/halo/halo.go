// Package halo implements the boundary-data exchange between ring
// neighbours. Filter windows of the trailing output blocks cross the
// partition edge, so each rank receives the leading B−d_mu segments of its
// right neighbour while sending its own leading segments to the left.
package halo

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-soi-fft/internal/partition"
)

// ErrLink classifies transport failures. Exchange attaches it to every
// failed transfer, so Link implementations may return plain errors.
var ErrLink = errors.New("halo link error")

// Link is the point-to-point boundary of one rank on the ring. Both calls
// block until the transfer completes; the Exchange runs them on their own
// goroutines to get non-blocking semantics.
type Link interface {
	// SendLeft delivers data to the left neighbour. The data is copied
	// before SendLeft returns, so the caller may reuse the buffer.
	SendLeft(data []complex128) error

	// RecvRight fills dst with exactly len(dst) elements sent by the
	// right neighbour.
	RecvRight(dst []complex128) error
}

// Exchange manages one rank's ghost buffer and the in-flight transfers.
//
// The ghost buffer layout is fixed: the first b_cnt·S elements are the
// rank's own trailing segments, copied in by Start; the remaining
// (B−d_mu)·S elements are received from the right neighbour. Boundary
// output blocks may read the buffer only after WaitRecv has returned.
type Exchange struct {
	geo  *partition.Geometry
	link Link

	ghost    []complex128
	recvDone chan error
	sendDone chan error
}

// New allocates the exchange state for one rank.
func New(geo *partition.Geometry, link Link) *Exchange {
	return &Exchange{
		geo:   geo,
		link:  link,
		ghost: make([]complex128, geo.GhostLen()),
	}
}

// Ghost returns the ghost buffer. Contents are valid only between a
// successful WaitRecv and the next Start.
func (e *Exchange) Ghost() []complex128 { return e.ghost }

// Start copies the locally owned tail into the ghost head and launches the
// non-blocking receive and send. It never blocks on the transport.
func (e *Exchange) Start(alpha []complex128) {
	g := e.geo
	copy(e.ghost[:g.TailSegments()*g.S], alpha[g.Interior()*g.DMu*g.S:])

	e.recvDone = make(chan error, 1)
	e.sendDone = make(chan error, 1)

	n := g.HaloSegments() * g.S
	if n == 0 {
		// Window width equals the block step: every window the rank owns
		// is satisfied by the copied tail.
		e.recvDone <- nil
		e.sendDone <- nil
		return
	}

	go func() {
		err := e.link.RecvRight(e.ghost[g.TailSegments()*g.S:])
		if err != nil {
			// Tag with ErrLink here: transports are not required to.
			err = fmt.Errorf("%w: rank %d: recv from rank %d: %w", ErrLink, g.Rank, g.Right(), err)
		}
		e.recvDone <- err
	}()
	go func() {
		err := e.link.SendLeft(alpha[:n])
		if err != nil {
			err = fmt.Errorf("%w: rank %d: send to rank %d: %w", ErrLink, g.Rank, g.Left(), err)
		}
		e.sendDone <- err
	}()
}

// WaitRecv blocks until the ghost buffer is fully populated. It gates all
// boundary-block reads; the send does not.
func (e *Exchange) WaitRecv() error { return <-e.recvDone }

// WaitSend blocks until the outgoing buffer may be reused.
func (e *Exchange) WaitSend() error { return <-e.sendDone }
