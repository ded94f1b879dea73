/*
DESCRIPTION
  device_test.go tests the Chain FrameSource and MultiError.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"errors"
	"io"
	"testing"
	"sync"
	"time"
)

// queue is a FrameSource fed through put. Next blocks until a frame is
// queued or the queue is closed.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frames []*Frame
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) Name() string { return "queue" }

func (q *queue) put(f *Frame) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *queue) Next() (*Frame, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.frames) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.frames) == 0 {
		return nil, io.EOF
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, nil
}

func (q *queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	return nil
}

var _ FrameSource = (*Chain)(nil)

func TestChain(t *testing.T) {
	a, b := newQueue(), newQueue()
	c := NewChain(a, b)

	a.put(&Frame{Source: "a1"})
	a.put(&Frame{Source: "a2"})
	a.Close()
	b.put(&Frame{Source: "b1"})

	for _, want := range []string{"a1", "a2", "b1"} {
		f, err := c.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Source != want {
			t.Errorf("unexpected frame: got %s, want %s", f.Source, want)
		}
	}

	// Closing the chain closes b, which is blocked waiting for a frame.
	done := make(chan error)
	go func() {
		_, err := c.Next()
		done <- err
	}()
	err := c.Close()
	if err != nil {
		t.Errorf("could not close chain: %v", err)
	}
	select {
	case err := <-done:
		if err != io.EOF {
			t.Errorf("expected io.EOF after close, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Next did not return after close")
	}
}

type failCloser struct{ *queue }

func (failCloser) Close() error { return errors.New("stuck") }

func TestChainCloseErrors(t *testing.T) {
	c := NewChain(failCloser{newQueue()}, newQueue(), failCloser{newQueue()})
	err := c.Close()
	var me MultiError
	if !errors.As(err, &me) {
		t.Fatalf("expected MultiError, got %v", err)
	}
	if len(me) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(me), me)
	}

	_, err = c.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
}
