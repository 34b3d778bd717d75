// Package transport provides the HTTP point-to-point link between samplesort
// nodes: one PUT per message, binary header, optional lz4 compression and xxhash checksum.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	ratomic "sync/atomic"
	"syscall"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/valyala/fasthttp"
)

// Link is a comm.Link over HTTP: sends are PUT requests to the destination's
// receive handler, which buffers them in its mailbox until received.
type Link struct {
	client   Client
	tracker  stats.Tracker
	mb       *comm.Mailbox
	sessions sync.Map // uid => *Stats (receive side)
	trname   string
	lid      string
	urls     []string // by rank
	out      Stats
	sessID   int64
	rank     int
	compress bool
	cksum    bool
	verbose  bool
}

// interface guard
var _ comm.Link = (*Link)(nil)

var nextSessionID ratomic.Int64

func init() { nextSessionID.Store(100) }

// NewLink: `peers` are the base URLs of all ranks (this one included), indexed by rank
func NewLink(trname string, rank int, peers []string, extra *Extra) (*Link, error) {
	if rank < 0 || rank >= len(peers) {
		return nil, cmn.NewErrConfiguration("rank %d out of range [0, %d)", rank, len(peers))
	}
	if trname == "" || strings.Contains(trname, "/") {
		return nil, cmn.NewErrConfiguration("invalid transport name %q", trname)
	}
	if extra == nil {
		extra = &Extra{}
	}
	l := &Link{
		trname:   trname,
		rank:     rank,
		urls:     make([]string, len(peers)),
		mb:       comm.NewMailbox(),
		client:   extra.Client,
		tracker:  extra.Tracker,
		compress: extra.Compress,
		cksum:    extra.Checksum,
		verbose:  extra.Verbose,
		sessID:   nextSessionID.Add(1),
	}
	for i, peer := range peers {
		u, err := url.Parse(peer)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, cmn.NewErrConfiguration("invalid URL %q for rank %d", peer, i)
		}
		l.urls[i] = strings.TrimSuffix(peer, "/") + URLPath + trname
	}
	if l.client == nil {
		l.client = NewClient()
	}
	l.lid = fmt.Sprintf("%s[%d]-r%d", trname, l.sessID, rank)
	return l, nil
}

func (l *Link) Rank() int        { return l.rank }
func (l *Link) Size() int        { return len(l.urls) }
func (l *Link) String() string   { return l.lid }
func (l *Link) OutStats() *Stats { return &l.out }

// InStats returns receive-side stats, one entry per sending session
func (l *Link) InStats() map[uint64]*Stats {
	m := make(map[uint64]*Stats, len(l.urls))
	l.sessions.Range(func(k, v any) bool {
		m[k.(uint64)] = v.(*Stats)
		return true
	})
	return m
}

func (l *Link) Recv(ctx context.Context, src int, seq uint64) (*comm.Msg, error) {
	return l.mb.Wait(ctx, src, seq)
}

// Close fails pending and future receives; peers that keep sending get 503
func (l *Link) Close() error {
	l.mb.Close(nil)
	return nil
}

func (l *Link) Send(ctx context.Context, hdr *comm.Hdr, body []byte) error {
	dst := int(hdr.Dst)
	if dst < 0 || dst >= len(l.urls) {
		return fmt.Errorf("%s: invalid destination rank %d", l, dst)
	}
	if dst == l.rank {
		return l.mb.Deliver(&comm.Msg{Hdr: *hdr, Body: slices.Clone(body)})
	}
	pdu, wireSize, err := packPDU(hdr, body, l.compress, l.cksum)
	if err != nil {
		return err
	}
	if err := l.do(ctx, dst, pdu); err != nil {
		return err
	}
	l.out.Num.Add(1)
	l.out.Size.Add(int64(len(body)))
	l.out.CompressedSize.Add(int64(wireSize))
	if l.tracker != nil {
		l.tracker.Inc(stats.OutMsgCount)
		l.tracker.Add(stats.OutMsgSize, int64(len(body)))
	}
	return nil
}

// do PUTs the PDU, retrying (only) refused connections until ctx is done:
// at startup, peers come up in no particular order
func (l *Link) do(ctx context.Context, dst int, pdu []byte) error {
	req, resp := fasthttp.AcquireRequest(), fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(http.MethodPut)
	req.SetRequestURI(l.urls[dst])
	req.Header.Set(HdrSessID, strconv.FormatInt(l.sessID, 10))
	req.Header.SetUserAgent(ua)
	req.Header.SetContentType("application/octet-stream")
	if l.compress {
		req.Header.Set(HdrCompress, LZ4)
	}
	req.SetBodyRaw(pdu)

	for {
		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = l.client.DoDeadline(req, resp, deadline)
		} else {
			err = l.client.Do(req, resp)
		}
		if err == nil {
			break
		}
		if !errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("%s => rank %d: %w", l, dst, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s => rank %d: %w (last error: %v)", l, dst, ctx.Err(), err)
		case <-time.After(dialRetryInterval):
		}
		if l.verbose {
			nlog.Infoln(l.String(), "retrying rank", dst, "err:", err)
		}
	}
	if code := resp.StatusCode(); code != http.StatusOK {
		return fmt.Errorf("%s => rank %d: status %d: %s", l, dst, code, strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
