// Package collcomm connects a group of Goroutines so that
// they can run collective operations on float vectors.
package collcomm

import (
	"fmt"
	"sync"
)

// A Message is a vector sent from one rank to another.
type Message struct {
	Source int
	Vec    []float64
}

// Comms manages the mailboxes of a group of ranks.
// During a collective operation, each rank has a local
// Comms object that represents its view of the world.
// A new set of Comms objects should be used for each
// operation, since stray messages from one operation would
// otherwise be received by the next.
type Comms struct {
	rank      int
	mailboxes []chan *Message
}

// NewComms creates one Comms object per rank for a group
// of the given size.
func NewComms(size int) []*Comms {
	if size < 1 {
		panic(fmt.Sprintf("invalid group size: %d", size))
	}
	mailboxes := make([]chan *Message, size)
	for i := range mailboxes {
		// Every rank sends at most one message to a given
		// peer per operation, so sends never block.
		mailboxes[i] = make(chan *Message, size)
	}
	res := make([]*Comms, size)
	for i := range res {
		res[i] = &Comms{rank: i, mailboxes: mailboxes}
	}
	return res
}

// SpawnComms creates Comms objects for a group of ranks and
// calls f for each rank in its own Goroutine.
//
// It returns once every call to f has returned.
func SpawnComms(size int, f func(c *Comms)) {
	var wg sync.WaitGroup
	for _, c := range NewComms(size) {
		wg.Add(1)
		go func(c *Comms) {
			defer wg.Done()
			f(c)
		}(c)
	}
	wg.Wait()
}

// Rank gets the current rank's index in the group.
func (c *Comms) Rank() int {
	return c.rank
}

// Size gets the number of ranks.
func (c *Comms) Size() int {
	return len(c.mailboxes)
}

// Send delivers a vector to the destination rank.
func (c *Comms) Send(dst int, vec []float64) {
	c.mailboxes[dst] <- &Message{Source: c.rank, Vec: vec}
}

// Bcast sends a vector to every other rank.
func (c *Comms) Bcast(vec []float64) {
	for i := range c.mailboxes {
		if i != c.rank {
			c.Send(i, vec)
		}
	}
}

// Recv receives the next vector and the rank that sent it.
func (c *Comms) Recv() ([]float64, int) {
	msg := <-c.mailboxes[c.rank]
	return msg.Vec, msg.Source
}
