// Package transport provides the HTTP point-to-point link between samplesort
// nodes: one PUT per message, binary header, optional lz4 compression and xxhash checksum.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"net"
	"time"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/valyala/fasthttp"
)

type Client interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

const (
	dfltReadBufferSize  = 4 * cos.KiB
	dfltWriteBufferSize = 64 * cos.KiB
)

// overriding fasthttp default `const DefaultDialTimeout = 3 * time.Second`
func dialTimeout(addr string) (net.Conn, error) {
	return fasthttp.DialTimeout(addr, 10*time.Second)
}

// NewClient returns the fasthttp client shared by all links of a process
func NewClient() Client {
	return &fasthttp.Client{
		Dial:            dialTimeout,
		ReadBufferSize:  dfltReadBufferSize,
		WriteBufferSize: dfltWriteBufferSize,
		MaxConnsPerHost: 64,
		Name:            ua,
	}
}
