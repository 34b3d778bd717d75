// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"cmp"
	"fmt"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/jsp"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/dbdriver"
	"github.com/NVIDIA/samplesort/ssort"
	"github.com/NVIDIA/samplesort/tools/trand"
	"github.com/urfave/cli"
)

// on-disk (jsp) dataset: exactly one of the value slices is populated, per Dtype
type dataset struct {
	Dtype    string    `json:"dtype"`
	UUID     string    `json:"uuid,omitempty"` // sort run that produced it
	Float64s []float64 `json:"float64s,omitempty"`
	Int64s   []int64   `json:"int64s,omitempty"`
	Strings  []string  `json:"strings,omitempty"`
	Seed     uint64    `json:"seed,omitempty"`
	Sorted   bool      `json:"sorted"`
}

const strlen = 12 // generated strings

func genDataset(dtype string, n int64, seed uint64) (*dataset, error) {
	if n < 0 {
		return nil, cmn.NewErrConfiguration("negative count %d", n)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	var (
		ds  = &dataset{Dtype: dtype, Seed: seed}
		rnd = trand.NewRand(seed)
	)
	switch dtype {
	case cmn.DtypeFloat64:
		ds.Float64s = trand.Float64s(rnd, int(n))
	case cmn.DtypeInt64:
		ds.Int64s = trand.Int64s(rnd, int(n), -1<<40, 1<<40)
	case cmn.DtypeString:
		ds.Strings = trand.Strings(rnd, int(n), strlen)
	default:
		return nil, cmn.NewErrConfiguration("invalid dtype %q", dtype)
	}
	return ds, nil
}

func (ds *dataset) len() int {
	switch ds.Dtype {
	case cmn.DtypeFloat64:
		return len(ds.Float64s)
	case cmn.DtypeInt64:
		return len(ds.Int64s)
	default:
		return len(ds.Strings)
	}
}

func (ds *dataset) verify() error {
	switch ds.Dtype {
	case cmn.DtypeFloat64:
		return ssort.Verify(ssort.Root, ds.Float64s)
	case cmn.DtypeInt64:
		return ssort.Verify(ssort.Root, ds.Int64s)
	case cmn.DtypeString:
		return ssort.Verify(ssort.Root, ds.Strings)
	default:
		return cmn.NewErrConfiguration("invalid dtype %q", ds.Dtype)
	}
}

func loadDataset(path string) (*dataset, error) {
	ds := &dataset{}
	if err := jsp.Load(path, ds, jsp.CCSign()); err != nil {
		return nil, err
	}
	return ds, nil
}

func saveDataset(path string, ds *dataset) error {
	return jsp.Save(path, ds, jsp.CCSign())
}

// input dataset: either loaded (--input) or generated (--count, --seed)
func (a *app) input(c *cli.Context) (*dataset, error) {
	if path := c.String(inputFlag.Name); path != "" {
		ds, err := loadDataset(path)
		if err != nil {
			return nil, err
		}
		a.config.Sort.Dtype = ds.Dtype
		return ds, nil
	}
	return genDataset(a.config.Sort.Dtype, c.Int64(countFlag.Name), c.Uint64(seedFlag.Name))
}

// sort-related command-line overrides
func (a *app) applySortFlags(c *cli.Context) error {
	conf := &a.config.Sort
	if v := c.String(dtypeFlag.Name); v != "" {
		conf.Dtype = v
	}
	if v := c.String(partitionFlag.Name); v != "" {
		conf.Partition = v
	}
	if c.Bool(noVerifyFlag.Name) {
		conf.Verify = false
	}
	return a.config.Validate()
}

func (a *app) openHistory(path string) (dbdriver.Driver, error) {
	if path == "" {
		path = a.config.History.Path
	}
	if path == "" {
		return nil, nil
	}
	return dbdriver.NewBuntDB(path)
}

func output[T cmp.Ordered](ds *dataset, res *ssort.Result[T]) {
	ds.UUID, ds.Sorted = res.UUID, res.Verified
	switch v := any(res.Output).(type) {
	case []float64:
		ds.Float64s = v
	case []int64:
		ds.Int64s = v
	case []string:
		ds.Strings = v
	}
}

//
// handlers: gen, verify, history
//

func (a *app) genHandler(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expecting exactly one argument (output file), got %d", c.NArg())
	}
	if err := a.applySortFlags(c); err != nil {
		return err
	}
	ds, err := genDataset(a.config.Sort.Dtype, c.Int64(countFlag.Name), c.Uint64(seedFlag.Name))
	if err != nil {
		return err
	}
	if err := saveDataset(c.Args().First(), ds); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "generated %d %s values (seed %d) => %s\n", ds.len(), ds.Dtype, ds.Seed, c.Args().First())
	return nil
}

func (a *app) verifyHandler(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expecting exactly one argument (dataset file), got %d", c.NArg())
	}
	path := c.Args().First()
	ds, err := loadDataset(path)
	if err != nil {
		return err
	}
	if err := ds.verify(); err != nil {
		fmt.Fprintf(c.App.Writer, "%s: %s (%v)\n", path, fred("NOT SORTED"), err)
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %s (%d %s values)\n", path, fgreen("sorted"), ds.len(), ds.Dtype)
	return nil
}

func (a *app) historyHandler(c *cli.Context) error {
	db, err := a.openHistory(c.String(dbFlag.Name))
	if err != nil {
		return err
	}
	if db == nil {
		return cmn.NewErrConfiguration("run history is not configured (see --%s)", dbFlag.Name)
	}
	defer db.Close()
	runs, err := ssort.LoadHistory(db)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "no runs")
		return nil
	}
	for _, s := range runs {
		status := fgreen(s.Status)
		if s.Error != "" {
			status = fred(s.Status)
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\tN=%d\tP=%d\t%v\n",
			fcyan(s.UUID), s.Started.Format(time.RFC3339), status, s.N, s.Size, s.Elapsed)
	}
	nlog.Infoln("listed", len(runs), "runs")
	return nil
}
