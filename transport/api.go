// Package transport provides the HTTP point-to-point link between samplesort
// nodes: one PUT per message, binary header, optional lz4 compression and xxhash checksum.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	ratomic "sync/atomic"
	"time"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/stats"
)

const (
	// PUT /v1/transport/<trname>
	URLPath = "/v1/transport/"

	HdrSessID   = "Ssort-Session-Id"
	HdrCompress = "Ssort-Compress" // (informational; the PDU flags are authoritative)
	LZ4         = "lz4"

	ua = "ssort/transport"

	// upper bound on a single message payload
	MaxPayload = cos.GiB

	// while the group is starting up, peers may not be listening yet
	dialRetryInterval = 100 * time.Millisecond
)

// PDU flags
const (
	flagCompressed = 1 << iota
	flagChecksum
)

type (
	// Extra: optional link parameters
	Extra struct {
		Tracker  stats.Tracker // nil: no metrics
		Client   Client        // nil: NewClient()
		Compress bool          // lz4-compress payloads
		Checksum bool          // xxhash payloads (verified on receive)
		Verbose  bool
	}

	// link stats (sender side: per link; receiver side: per session)
	Stats struct {
		Num            ratomic.Int64 // number of messages
		Size           ratomic.Int64 // payload bytes (uncompressed)
		CompressedSize ratomic.Int64 // bytes on the wire, not including headers
	}
)
