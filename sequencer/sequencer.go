// Copyright (C) 2025, 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

// Package sequencer hands results computed out of order by concurrent
// workers to a single consumer in the order of their sequence numbers.
package sequencer

import (
	"context"
	"sync"
)

// Channel[T] is a multi-producer, single-consumer channel of items with sequence numbers.
// Items can be added in any order, but Next always returns them in order of sequence number.
// At most Cap() items past the next one to be received can be buffered; Add blocks beyond that.
// It is unsafe to call Next concurrently with itself, or to add the same sequence number twice.
type Channel[T any] struct {
	mu       sync.Mutex
	next     uint64
	capacity uint64
	pending  map[uint64]T
	changed  chan struct{} // closed and replaced whenever next or pending changes
}

func New[T any](initialSequenceNumber uint64, capacity uint64) *Channel[T] {
	if capacity == 0 {
		capacity = 1
	}
	return &Channel[T]{
		next:     initialSequenceNumber,
		capacity: capacity,
		pending:  make(map[uint64]T),
		changed:  make(chan struct{}),
	}
}

func (seq *Channel[T]) Cap() uint64 {
	return seq.capacity
}

// must be called with mu held
func (seq *Channel[T]) broadcast() {
	close(seq.changed)
	seq.changed = make(chan struct{})
}

// waitUntil blocks until cond returns true.  mu is held when cond is called
// and when waitUntil returns nil; it is not held if ctx is done.
func (seq *Channel[T]) waitUntil(ctx context.Context, cond func() bool) error {
	seq.mu.Lock()
	for !cond() {
		changed := seq.changed
		seq.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
		seq.mu.Lock()
	}
	return nil
}

// Add sends item with the given sequence number, blocking while the
// channel lacks capacity for it.
func (seq *Channel[T]) Add(ctx context.Context, sequenceNumber uint64, item T) error {
	if err := seq.waitUntil(ctx, func() bool { return sequenceNumber < seq.next+seq.capacity }); err != nil {
		return err
	}
	seq.pending[sequenceNumber] = item
	if sequenceNumber == seq.next {
		seq.broadcast()
	}
	seq.mu.Unlock()
	return nil
}

// Next returns the item with the next sequence number, blocking until it has been added.
func (seq *Channel[T]) Next(ctx context.Context) (T, error) {
	var item T
	if err := seq.waitUntil(ctx, func() bool {
		_, ok := seq.pending[seq.next]
		return ok
	}); err != nil {
		return item, err
	}
	item = seq.pending[seq.next]
	delete(seq.pending, seq.next)
	seq.next++
	seq.broadcast()
	seq.mu.Unlock()
	return item, nil
}
