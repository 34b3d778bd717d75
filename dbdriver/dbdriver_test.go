// Package dbdriver provides a local key/value store for samplesort run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver_test

import (
	"path/filepath"
	"testing"

	"github.com/NVIDIA/samplesort/dbdriver"
	"github.com/NVIDIA/samplesort/tools/tassert"
)

type run struct {
	UUID string  `json:"uuid"`
	N    int64   `json:"n"`
	Size []int64 `json:"sizes"`
}

func drivers(t *testing.T) map[string]dbdriver.Driver {
	bunt, err := dbdriver.NewBuntDB(filepath.Join(t.TempDir(), "history.db"))
	tassert.CheckFatal(t, err)
	return map[string]dbdriver.Driver{
		"buntdb": bunt,
		"mock":   dbdriver.NewDBMock(),
	}
}

func TestDriverSetGet(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			in := run{UUID: "abc", N: 20, Size: []int64{5, 6, 4, 5}}
			tassert.CheckFatal(t, db.Set("runs", in.UUID, &in))

			var out run
			tassert.CheckFatal(t, db.Get("runs", "abc", &out))
			tassert.Errorf(t, out.UUID == in.UUID && out.N == in.N && len(out.Size) == 4,
				"expected %+v, got %+v", in, out)

			err := db.Get("runs", "nope", &out)
			tassert.Errorf(t, dbdriver.IsErrNotFound(err), "expected not-found, got %v", err)

			tassert.CheckFatal(t, db.Delete("runs", "abc"))
			err = db.Delete("runs", "abc")
			tassert.Errorf(t, dbdriver.IsErrNotFound(err), "expected not-found, got %v", err)
		})
	}
}

func TestDriverList(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			for _, k := range []string{"a1", "a2", "b1"} {
				tassert.CheckFatal(t, db.SetString("runs", k, "v-"+k))
			}
			tassert.CheckFatal(t, db.SetString("other", "a3", "x"))

			keys, err := db.List("runs", "")
			tassert.CheckFatal(t, err)
			tassert.Fatalf(t, len(keys) == 3, "expected 3 keys, got %v", keys)
			tassert.Errorf(t, keys[0] == "a1" && keys[2] == "b1", "unexpected order %v", keys)

			keys, err = db.List("runs", "a")
			tassert.CheckFatal(t, err)
			tassert.Errorf(t, len(keys) == 2, "prefix: expected 2 keys, got %v", keys)

			vals, err := db.GetAll("runs", "?1")
			tassert.CheckFatal(t, err)
			tassert.Errorf(t, len(vals) == 2 && vals["b1"] == "v-b1", "wildcard: unexpected %v", vals)

			tassert.CheckFatal(t, db.DeleteCollection("runs"))
			keys, err = db.List("runs", "")
			tassert.CheckFatal(t, err)
			tassert.Errorf(t, len(keys) == 0, "expected empty collection, got %v", keys)

			s, err := db.GetString("other", "a3")
			tassert.CheckFatal(t, err)
			tassert.Errorf(t, s == "x", "other collection affected: %q", s)
		})
	}
}
