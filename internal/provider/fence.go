package provider

import "sync/atomic"

// Ticket identifies one outstanding request.
type Ticket uint64

// Fence hands out increasing tickets so that only the response to the most
// recent request is applied. A response carrying an older ticket lost a
// race with a newer request and must be dropped.
type Fence struct {
	last atomic.Uint64
}

// Issue returns a ticket newer than every ticket issued before it.
func (f *Fence) Issue() Ticket {
	return Ticket(f.last.Add(1))
}

// Current reports whether t is the latest ticket issued.
func (f *Fence) Current(t Ticket) bool {
	return uint64(t) == f.last.Load()
}
