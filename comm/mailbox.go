// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("link closed")

type (
	mkey struct {
		seq uint64
		src int32
	}
	// Mailbox buffers messages delivered ahead of the matching receive and
	// hands them out by (source, sequence number)
	Mailbox struct {
		msgs   map[mkey]*Msg
		wait   map[mkey]chan *Msg
		done   chan struct{}
		err    error
		mu     sync.Mutex
		closed bool
	}
)

func NewMailbox() *Mailbox {
	return &Mailbox{
		msgs: make(map[mkey]*Msg, 64),
		wait: make(map[mkey]chan *Msg, 4),
		done: make(chan struct{}),
	}
}

func (mb *Mailbox) Deliver(msg *Msg) error {
	key := mkey{seq: msg.Hdr.Seq, src: msg.Hdr.Src}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return ErrClosed
	}
	if ch, ok := mb.wait[key]; ok {
		delete(mb.wait, key)
		ch <- msg // buffered
		return nil
	}
	if _, ok := mb.msgs[key]; ok {
		return fmt.Errorf("duplicate message %s", msg.Hdr.String())
	}
	mb.msgs[key] = msg
	return nil
}

func (mb *Mailbox) Wait(ctx context.Context, src int, seq uint64) (*Msg, error) {
	key := mkey{seq: seq, src: int32(src)}
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return nil, mb.err
	}
	if msg, ok := mb.msgs[key]; ok {
		delete(mb.msgs, key)
		mb.mu.Unlock()
		return msg, nil
	}
	ch := make(chan *Msg, 1)
	mb.wait[key] = ch
	mb.mu.Unlock()

	select {
	case msg := <-ch:
		return msg, nil
	case <-mb.done:
		return nil, mb.err
	case <-ctx.Done():
		mb.mu.Lock()
		if _, ok := mb.wait[key]; ok {
			delete(mb.wait, key)
		} else {
			// delivered while canceling: keep it for the next Wait
			mb.msgs[key] = <-ch
		}
		mb.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Close wakes up all waiters with the given error (ErrClosed when nil)
func (mb *Mailbox) Close(err error) {
	if err == nil {
		err = ErrClosed
	}
	mb.mu.Lock()
	if !mb.closed {
		mb.closed, mb.err = true, err
		close(mb.done)
	}
	mb.mu.Unlock()
}

// number of delivered messages that were never received
func (mb *Mailbox) Pending() int {
	mb.mu.Lock()
	n := len(mb.msgs)
	mb.mu.Unlock()
	return n
}
