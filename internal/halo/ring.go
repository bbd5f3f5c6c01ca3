package halo

import (
	"fmt"
)

// ChanLink connects one rank to its ring neighbours with Go channels. It is
// the in-process stand-in for a message-passing fabric: each rank owns an
// inbox for halo data travelling leftwards around the ring.
type ChanLink struct {
	rank int
	out  chan<- []complex128 // left neighbour's inbox
	in   <-chan []complex128 // own inbox, fed by the right neighbour
}

// ChanRing builds the links of a p-rank ring. Inboxes are buffered so a
// send normally completes without waiting for the receiver; if a neighbour
// lags a full invocation behind, the send parks until the inbox drains.
// The Exchange runs sends on their own goroutine, so the stage itself
// never blocks on this.
func ChanRing(p int) []*ChanLink {
	inboxes := make([]chan []complex128, p)
	for i := range inboxes {
		inboxes[i] = make(chan []complex128, 1)
	}
	links := make([]*ChanLink, p)
	for r := range links {
		links[r] = &ChanLink{
			rank: r,
			out:  inboxes[(r+p-1)%p],
			in:   inboxes[r],
		}
	}
	return links
}

// SendLeft copies data into the left neighbour's inbox.
func (l *ChanLink) SendLeft(data []complex128) error {
	msg := make([]complex128, len(data))
	copy(msg, data)
	l.out <- msg
	return nil
}

// RecvRight takes the next message from the rank's inbox.
func (l *ChanLink) RecvRight(dst []complex128) error {
	msg, ok := <-l.in
	if !ok {
		return fmt.Errorf("%w: inbox closed", ErrLink)
	}
	if len(msg) != len(dst) {
		return fmt.Errorf("%w: got %d elements, want %d", ErrLink, len(msg), len(dst))
	}
	copy(dst, msg)
	return nil
}
