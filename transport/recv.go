// Package transport provides the HTTP point-to-point link between samplesort
// nodes: one PUT per message, binary header, optional lz4 compression and xxhash checksum.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strconv"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tracing"
	"github.com/OneOfOne/xxhash"
)

// Handler returns the receive-side handler, to be registered at URLPath + trname
func (l *Link) Handler() http.Handler {
	return tracing.NewTraceableHandler(http.HandlerFunc(l.rxPDU), "transport-"+l.trname)
}

// Endpoint is the mux pattern for this link's handler
func (l *Link) Endpoint() string { return URLPath + l.trname }

func (l *Link) rxPDU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", http.MethodPut)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if trname := path.Base(r.URL.Path); trname != l.trname {
		http.Error(w, fmt.Sprintf("transport endpoint %q is unknown", trname), http.StatusNotFound)
		return
	}
	sessID, err := strconv.ParseInt(r.Header.Get(HdrSessID), 10, 64)
	if err != nil || sessID == 0 {
		http.Error(w, fmt.Sprintf("%s: invalid session ID: %v", l, err), http.StatusBadRequest)
		return
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, MaxPayload+cos.KiB))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hdr, body, err := unpackPDU(b)
	if err != nil {
		if cos.IsErrBadCksum(err) {
			nlog.Errorln(l.String(), "from", r.RemoteAddr, err)
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if int(hdr.Dst) != l.rank || hdr.Src < 0 || int(hdr.Src) >= len(l.urls) {
		http.Error(w, fmt.Sprintf("%s: misrouted %s", l, hdr), http.StatusBadRequest)
		return
	}

	if err := l.mb.Deliver(&comm.Msg{Hdr: hdr.Hdr, Body: body}); err != nil {
		code := http.StatusConflict // duplicate
		if errors.Is(err, comm.ErrClosed) {
			code = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), code)
		return
	}

	uid := uniqueID(r, sessID)
	v, ok := l.sessions.Load(uid)
	if !ok {
		v, _ = l.sessions.LoadOrStore(uid, &Stats{})
		if l.verbose {
			nlog.Infof("%s: new session %d from %s", l, sessID, r.RemoteAddr)
		}
	}
	st := v.(*Stats)
	st.Num.Add(1)
	st.Size.Add(int64(len(body)))
	st.CompressedSize.Add(int64(len(b) - hdr.PackedSize()))
	if l.tracker != nil {
		l.tracker.Inc(stats.InMsgCount)
		l.tracker.Add(stats.InMsgSize, int64(len(body)))
	}
	w.WriteHeader(http.StatusOK)
}

//
// session ID <=> unique ID
//

func uniqueID(r *http.Request, sessID int64) uint64 {
	x := xxhash.ChecksumString64S(r.RemoteAddr, cos.MLCG32)
	return (x&math.MaxUint32)<<32 | uint64(sessID)
}

func UID2SessID(uid uint64) (xxh, sessID uint64) {
	xxh, sessID = uid>>32, uid&math.MaxUint32
	return
}
