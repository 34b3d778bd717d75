// Package dbdriver provides a local key/value store for samplesort run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver

import (
	"path"
	"sort"
	"sync"

	"github.com/NVIDIA/samplesort/cmn/cos"
)

type DBMock struct {
	values map[string]string
	mtx    sync.RWMutex
}

// interface guard
var _ Driver = (*DBMock)(nil)

func NewDBMock() *DBMock     { return &DBMock{values: make(map[string]string)} }
func (*DBMock) Close() error { return nil }

func (bd *DBMock) Set(collection, key string, object any) error {
	b := cos.MustMarshal(object)
	return bd.SetString(collection, key, string(b))
}

func (bd *DBMock) Get(collection, key string, object any) error {
	s, err := bd.GetString(collection, key)
	if err != nil {
		return err
	}
	return cos.JSON.Unmarshal([]byte(s), object)
}

func (bd *DBMock) SetString(collection, key, data string) error {
	bd.mtx.Lock()
	bd.values[makePath(collection, key)] = data
	bd.mtx.Unlock()
	return nil
}

func (bd *DBMock) GetString(collection, key string) (string, error) {
	bd.mtx.RLock()
	defer bd.mtx.RUnlock()
	value, ok := bd.values[makePath(collection, key)]
	if !ok {
		return "", NewErrNotFound(collection, key)
	}
	return value, nil
}

func (bd *DBMock) Delete(collection, key string) error {
	bd.mtx.Lock()
	defer bd.mtx.Unlock()
	name := makePath(collection, key)
	if _, ok := bd.values[name]; !ok {
		return NewErrNotFound(collection, key)
	}
	delete(bd.values, name)
	return nil
}

// path.Match has the same '*' and '?' semantics as buntdb patterns
// (for keys without '/')
func (bd *DBMock) match(collection, pattern string, cb func(key, val string)) {
	filter := pattern2filter(collection, pattern)
	for k, v := range bd.values {
		if ok, _ := path.Match(filter, k); !ok {
			continue
		}
		if _, key := parsePath(k); key != "" {
			cb(key, v)
		}
	}
}

func (bd *DBMock) List(collection, pattern string) ([]string, error) {
	keys := make([]string, 0, 8)
	bd.mtx.RLock()
	bd.match(collection, pattern, func(key, _ string) { keys = append(keys, key) })
	bd.mtx.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (bd *DBMock) DeleteCollection(collection string) error {
	keys, _ := bd.List(collection, "")
	bd.mtx.Lock()
	for _, k := range keys {
		delete(bd.values, makePath(collection, k))
	}
	bd.mtx.Unlock()
	return nil
}

func (bd *DBMock) GetAll(collection, pattern string) (map[string]string, error) {
	values := make(map[string]string)
	bd.mtx.RLock()
	bd.match(collection, pattern, func(key, val string) { values[key] = val })
	bd.mtx.RUnlock()
	return values, nil
}
