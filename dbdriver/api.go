// Package dbdriver provides a local key/value store for samplesort run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver

import (
	"errors"
	"fmt"
	"strings"
)

// General info:
// ## Collection ##
//   For buntdb the collection is purely virtual: it is the prefix of a key.
//   Run summaries, for instance, live in collection "runs", keyed by run UUID.
// ## List ##
//   If a pattern is empty, List returns all keys in the collection. A pattern
//   may include '*' and '?'. If it does not, the pattern is considered a prefix
//   and trailing '*' is added automatically.
// ## Errors ##
//   A driver converts database-specific errors to `dbdriver` errors.

const collectionSepa = "##"

type (
	Driver interface {
		// sync data with local drives on close
		Close() error
		// write an object to database (marshaled as JSON)
		Set(collection, key string, object any) error
		// read an object from database
		Get(collection, key string, object any) error
		// write an already marshaled object or simple string
		SetString(collection, key, data string) error
		// read a string or an object as JSON from database
		GetString(collection, key string) (string, error)
		Delete(collection, key string) error
		// delete all keys of a collection, one by one
		DeleteCollection(collection string) error
		// keys of a collection matching the pattern (see above), sorted
		List(collection, pattern string) ([]string, error)
		// matching keys with their values: map[key]value
		GetAll(collection, pattern string) (map[string]string, error)
	}

	ErrNotFound struct {
		collection string
		key        string
	}
)

func makePath(collection, key string) string { return collection + collectionSepa + key }

// extract collection and key names from the full key path
func parsePath(path string) (string, string) {
	pos := strings.Index(path, collectionSepa)
	if pos < 0 {
		return path, ""
	}
	return path[:pos], path[pos+len(collectionSepa):]
}

func pattern2filter(collection, pattern string) string {
	filter := makePath(collection, pattern)
	if !strings.ContainsAny(pattern, "*?") {
		filter += "*"
	}
	return filter
}

func NewErrNotFound(collection, key string) *ErrNotFound {
	return &ErrNotFound{collection: collection, key: key}
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.collection, e.key)
}

func IsErrNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}
