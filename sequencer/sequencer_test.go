// Copyright (C) 2025, 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

package sequencer

import (
	"context"
	"errors"
	"fmt"
	mathrand "math/rand/v2"
	"testing"
	"time"
)

func receiveInOrder(t *testing.T, seq *Channel[uint64], first, count uint64) {
	t.Helper()
	ctx := context.Background()
	for i := first; i < first+count; i++ {
		next, err := seq.Next(ctx)
		if err != nil {
			t.Fatalf("%d: seq.Next returned unexpected error %v", i, err)
		}
		if next != i {
			t.Fatalf("%d: got unexpected value %d", i, next)
		}
	}
}

func TestSequencerBasic(t *testing.T) {
	ctx := context.Background()
	seq := New[uint64](0, 100)
	go func() {
		for i := range uint64(10_000) {
			if err := seq.Add(ctx, i, i); err != nil {
				panic(fmt.Sprintf("%d: seq.Add returned unexpected error %v", i, err))
			}
		}
	}()
	receiveInOrder(t, seq, 0, 10_000)
}

func TestSequencerNonZeroStart(t *testing.T) {
	ctx := context.Background()
	seq := New[uint64](10, 100)
	go func() {
		for i := range uint64(10_000) {
			if err := seq.Add(ctx, i+10, i+10); err != nil {
				panic(fmt.Sprintf("%d: seq.Add returned unexpected error %v", i, err))
			}
		}
	}()
	receiveInOrder(t, seq, 10, 10_000)
}

func TestSequencerCapacity1(t *testing.T) {
	ctx := context.Background()
	seq := New[uint64](0, 1)
	go func() {
		for i := range uint64(10_000) {
			if err := seq.Add(ctx, i, i); err != nil {
				panic(fmt.Sprintf("%d: seq.Add returned unexpected error %v", i, err))
			}
		}
	}()
	receiveInOrder(t, seq, 0, 10_000)
}

func TestSequencerReverse(t *testing.T) {
	ctx := context.Background()
	seq := New[uint64](0, 10)
	for i := range uint64(10) {
		if err := seq.Add(ctx, 9-i, 9-i); err != nil {
			t.Fatalf("%d: seq.Add returned unexpected error %v", 9-i, err)
		}
	}
	receiveInOrder(t, seq, 0, 10)
}

func TestSequencerAddBlocksWhenFull(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	seq := New[uint64](0, 2)
	if err := seq.Add(ctx, 1, 1); err != nil {
		t.Fatalf("seq.Add(1) returned unexpected error %v", err)
	}
	if err := seq.Add(ctx, 2, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("seq.Add(2) returned %v, expected deadline exceeded", err)
	}
}

func TestSequencerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	seq := New[uint64](0, 10_000)
	go func() {
		var i uint64
		for {
			if err := seq.Add(ctx, i, i); err != nil {
				break
			}
			i++
		}
	}()

	var i uint64
	for {
		next, err := seq.Next(ctx)
		if err != nil {
			break
		}
		if next != i {
			t.Fatalf("%d: got unexpected value %d", i, next)
		}
		i++
	}
}

func TestSequencerOutOfOrder(t *testing.T) {
	ctx := context.Background()
	seq := New[uint64](0, 100)
	ch := make(chan uint64)
	go func() {
		for i := range uint64(10_000) {
			ch <- i
		}
	}()
	for range 4 {
		go func() {
			for i := range ch {
				time.Sleep(mathrand.N(10 * time.Microsecond))
				if err := seq.Add(ctx, i, i); err != nil {
					panic(fmt.Sprintf("%d: seq.Add returned unexpected error %v", i, err))
				}
			}
		}()
	}
	receiveInOrder(t, seq, 0, 10_000)
}
