// Package dbdriver provides a local key/value store for samplesort run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver

import (
	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

const autoShrinkSize = cos.MiB

type BuntDriver struct {
	driver *buntdb.DB
}

// interface guard
var _ Driver = (*BuntDriver)(nil)

// NewBuntDB opens (or creates) a database file; ":memory:" keeps everything in RAM
func NewBuntDB(path string) (*BuntDriver, error) {
	driver, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	var conf buntdb.Config
	if err := driver.ReadConfig(&conf); err != nil {
		driver.Close()
		return nil, err
	}
	conf.AutoShrinkMinSize = autoShrinkSize
	conf.SyncPolicy = buntdb.EverySecond
	if err := driver.SetConfig(conf); err != nil {
		driver.Close()
		return nil, err
	}
	return &BuntDriver{driver: driver}, nil
}

func buntToCommonErr(err error, collection, key string) error {
	if err == buntdb.ErrNotFound {
		return NewErrNotFound(collection, key)
	}
	return err
}

func (bd *BuntDriver) Close() error { return bd.driver.Close() }

func (bd *BuntDriver) Set(collection, key string, object any) error {
	b := cos.MustMarshal(object)
	return bd.SetString(collection, key, string(b))
}

func (bd *BuntDriver) Get(collection, key string, object any) error {
	s, err := bd.GetString(collection, key)
	if err != nil {
		return err
	}
	return cos.JSON.Unmarshal([]byte(s), object)
}

func (bd *BuntDriver) SetString(collection, key, data string) error {
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(makePath(collection, key), data, nil)
		return err
	})
	return buntToCommonErr(err, collection, key)
}

func (bd *BuntDriver) GetString(collection, key string) (string, error) {
	var value string
	err := bd.driver.View(func(tx *buntdb.Tx) error {
		var err error
		value, err = tx.Get(makePath(collection, key))
		return err
	})
	return value, buntToCommonErr(err, collection, key)
}

func (bd *BuntDriver) Delete(collection, key string) error {
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(makePath(collection, key))
		return err
	})
	return buntToCommonErr(err, collection, key)
}

func (bd *BuntDriver) List(collection, pattern string) ([]string, error) {
	var keys []string
	err := bd.driver.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(pattern2filter(collection, pattern), func(path, _ string) bool {
			if _, key := parsePath(path); key != "" {
				keys = append(keys, key)
			}
			return true
		})
	})
	return keys, buntToCommonErr(err, collection, "")
}

func (bd *BuntDriver) DeleteCollection(collection string) error {
	keys, err := bd.List(collection, "")
	if err != nil || len(keys) == 0 {
		return err
	}
	return bd.driver.Update(func(tx *buntdb.Tx) error {
		for _, k := range keys {
			if _, err := tx.Delete(makePath(collection, k)); err != nil && err != buntdb.ErrNotFound {
				return err
			}
		}
		return nil
	})
}

func (bd *BuntDriver) GetAll(collection, pattern string) (map[string]string, error) {
	values := make(map[string]string)
	err := bd.driver.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(pattern2filter(collection, pattern), func(path, val string) bool {
			if _, key := parsePath(path); key != "" {
				values[key] = val
			}
			return true
		})
	})
	return values, buntToCommonErr(err, collection, "")
}
