// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/dbdriver"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/pkg/errors"
)

// run history collection (see dbdriver)
const HistoryCollection = "runs"

// Summary is the coordinator's record of a run
type Summary struct {
	Started     time.Time               `json:"started"`
	Phases      map[string]cos.Duration `json:"phases"`
	UUID        string                  `json:"uuid"`
	Dtype       string                  `json:"dtype,omitempty"`
	Status      string                  `json:"status"`
	Error       string                  `json:"error,omitempty"`
	Splitters   []string                `json:"splitters,omitempty"`
	BucketSizes []int64                 `json:"bucket_sizes,omitempty"`
	Elapsed     cos.Duration            `json:"elapsed"`
	N           int64                   `json:"n"`
	Size        int                     `json:"size"`
	Verified    bool                    `json:"verified"`
}

func NewSummary[T any](res *Result[T], dtype string, err error) *Summary {
	s := &Summary{
		UUID:        res.UUID,
		Dtype:       dtype,
		Started:     res.Started,
		Status:      stats.StatusOK,
		N:           res.N,
		Size:        res.Size,
		BucketSizes: res.BucketSizes,
		Verified:    res.Verified,
		Elapsed:     cos.Duration(res.Elapsed()),
		Phases:      make(map[string]cos.Duration, len(res.Phases)),
	}
	if err != nil {
		s.Status, s.Error = stats.StatusFail, err.Error()
	}
	for _, p := range res.Phases {
		s.Phases[p.Name] = cos.Duration(p.Dur)
	}
	if len(res.Splitters) > 0 {
		s.Splitters = make([]string, len(res.Splitters))
		for i, v := range res.Splitters {
			s.Splitters[i] = fmt.Sprint(v)
		}
	}
	return s
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %s, N=%d, P=%d, elapsed %v", s.UUID, s.Status, s.N, s.Size, s.Elapsed)
	if s.Verified {
		sb.WriteString(", verified")
	}
	if s.Error != "" {
		sb.WriteString(", error: " + s.Error)
	}
	return sb.String()
}

func SaveSummary(db dbdriver.Driver, s *Summary) error {
	return errors.Wrapf(db.Set(HistoryCollection, s.UUID, s), "save run %q", s.UUID)
}

// LoadHistory returns all recorded runs, oldest first
func LoadHistory(db dbdriver.Driver) ([]*Summary, error) {
	all, err := db.GetAll(HistoryCollection, "")
	if err != nil {
		return nil, err
	}
	runs := make([]*Summary, 0, len(all))
	for uuid, val := range all {
		s := &Summary{}
		if err := cos.JSON.UnmarshalFromString(val, s); err != nil {
			return nil, errors.Wrapf(err, "run %q", uuid)
		}
		runs = append(runs, s)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Started.Before(runs[j].Started) })
	return runs, nil
}
