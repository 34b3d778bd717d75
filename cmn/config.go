// Package cmn provides common constants, types, and utilities for samplesort clients and workers.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// element types
const (
	DtypeFloat64 = "float64"
	DtypeInt64   = "int64"
	DtypeString  = "string"
)

// transport compression
const (
	CompressNever  = "never"
	CompressAlways = "always"
)

// bucket assignment
const (
	PartitionScan   = "scan"   // O(n) monotonic merge-scan (requires sorted input)
	PartitionSearch = "search" // O(n log P) upper-bound binary search per element
)

const VersionSsort = "1.0"

const (
	DfltCommTimeout   = 2 * time.Minute
	DfltListen        = ":9280"
	DfltTracingPrefix = "samplesort"
)

type (
	Config struct {
		Comm    CommConf    `json:"comm" yaml:"comm"`
		Sort    SortConf    `json:"sort" yaml:"sort"`
		Log     LogConf     `json:"log" yaml:"log"`
		Metrics MetricsConf `json:"metrics" yaml:"metrics"`
		Tracing TracingConf `json:"tracing" yaml:"tracing"`
		History HistoryConf `json:"history" yaml:"history"`
	}
	CommConf struct {
		// per-collective deadline; a worker that doesn't show up in time fails the run
		Timeout cos.Duration `json:"timeout" yaml:"timeout"`
		// payload compression: CompressNever | CompressAlways
		Compression string `json:"compression" yaml:"compression"`
		// payload checksum: xxhash | none
		Checksum string `json:"checksum" yaml:"checksum"`
		// HTTP transport: this node's listening address
		Listen string `json:"listen" yaml:"listen"`
		// HTTP transport: base URLs of all ranks, indexed by rank
		Peers []string `json:"peers" yaml:"peers"`
	}
	SortConf struct {
		Dtype     string `json:"dtype" yaml:"dtype"`
		Partition string `json:"partition" yaml:"partition"`
		// gather all buckets at the coordinator
		Collect bool `json:"collect" yaml:"collect"`
		// check the collected output (coordinator)
		Verify bool `json:"verify" yaml:"verify"`
	}
	LogConf struct {
		Dir      string `json:"dir" yaml:"dir"`
		ToStderr bool   `json:"to_stderr" yaml:"to_stderr"`
		Verbose  bool   `json:"verbose" yaml:"verbose"`
	}
	MetricsConf struct {
		Enabled bool `json:"enabled" yaml:"enabled"`
		// local mode only (nodes serve /metrics on the transport listener)
		Listen string `json:"listen" yaml:"listen"`
	}
	TracingConf struct {
		ExtraAttributes    map[string]string `json:"extra_attributes,omitempty" yaml:"extra_attributes,omitempty"`
		ExporterEndpoint   string            `json:"exporter_endpoint" yaml:"exporter_endpoint"`
		ServiceNamePrefix  string            `json:"service_name_prefix" yaml:"service_name_prefix"`
		SamplerProbability float64           `json:"sampler_probability" yaml:"sampler_probability"`
		Enabled            bool              `json:"enabled" yaml:"enabled"`
		SkipVerify         bool              `json:"skip_verify" yaml:"skip_verify"`
	}
	HistoryConf struct {
		// buntdb file; ":memory:" for in-memory; empty disables run history
		Path string `json:"path" yaml:"path"`
	}
)

func DefaultConfig() *Config {
	config := &Config{}
	config.SetDefaults()
	config.Sort.Collect = true
	config.Sort.Verify = true
	return config
}

// LoadConfig reads YAML (by extension) or JSON configuration, applies defaults, and validates
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, config)
	default:
		err = cos.JSON.Unmarshal(b, config)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", path)
	}
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) SetDefaults() {
	if c.Comm.Timeout == 0 {
		c.Comm.Timeout = cos.Duration(DfltCommTimeout)
	}
	c.Comm.Compression = cos.NonZero(c.Comm.Compression, CompressNever)
	c.Comm.Checksum = cos.NonZero(c.Comm.Checksum, cos.ChecksumXXHash)
	c.Comm.Listen = cos.NonZero(c.Comm.Listen, DfltListen)
	c.Sort.Dtype = cos.NonZero(c.Sort.Dtype, DtypeFloat64)
	c.Sort.Partition = cos.NonZero(c.Sort.Partition, PartitionScan)
	c.Tracing.ServiceNamePrefix = cos.NonZero(c.Tracing.ServiceNamePrefix, DfltTracingPrefix)
	if c.Tracing.SamplerProbability == 0 {
		c.Tracing.SamplerProbability = 1
	}
}

func (c *Config) Validate() error {
	if c.Comm.Timeout < 0 {
		return NewErrConfiguration("negative comm timeout %v", c.Comm.Timeout)
	}
	switch c.Comm.Compression {
	case CompressNever, CompressAlways:
	default:
		return NewErrConfiguration("invalid compression %q (expecting %q or %q)",
			c.Comm.Compression, CompressNever, CompressAlways)
	}
	if err := cos.ValidateCksumType(c.Comm.Checksum); err != nil {
		return NewErrConfiguration("%v", err)
	}
	switch c.Sort.Dtype {
	case DtypeFloat64, DtypeInt64, DtypeString:
	default:
		return NewErrConfiguration("invalid dtype %q", c.Sort.Dtype)
	}
	switch c.Sort.Partition {
	case PartitionScan, PartitionSearch:
	default:
		return NewErrConfiguration("invalid partition method %q (expecting %q or %q)",
			c.Sort.Partition, PartitionScan, PartitionSearch)
	}
	if c.Sort.Verify && !c.Sort.Collect {
		return NewErrConfiguration("cannot verify output without collecting it at the coordinator")
	}
	if c.Tracing.Enabled && c.Tracing.ExporterEndpoint == "" {
		return NewErrConfiguration("tracing enabled but exporter endpoint is empty")
	}
	if p := c.Tracing.SamplerProbability; p < 0 || p > 1 {
		return NewErrConfiguration("invalid tracing sampler probability %v", p)
	}
	return nil
}

// ValidatePeers checks HTTP transport membership for a given rank
func (c *Config) ValidatePeers(rank int) error {
	size := len(c.Comm.Peers)
	if size == 0 {
		return NewErrConfiguration("no peers")
	}
	if rank < 0 || rank >= size {
		return NewErrConfiguration("rank %d out of range [0, %d)", rank, size)
	}
	seen := make(map[string]int, size)
	for i, u := range c.Comm.Peers {
		if u == "" {
			return NewErrConfiguration("empty URL for rank %d", i)
		}
		if j, ok := seen[u]; ok {
			return NewErrConfiguration("duplicate URL %q (ranks %d and %d)", u, j, i)
		}
		seen[u] = i
	}
	return nil
}

func (c *Config) Compressed() bool { return c.Comm.Compression == CompressAlways }
func (c *Config) Checksummed() bool {
	return c.Comm.Checksum == cos.ChecksumXXHash
}
