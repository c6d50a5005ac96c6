package snapshot

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrNoMatch = errors.New("query matched nothing")

// Query evaluates a gjson path against serialized snapshot data.
// Examples: "registers.3", "pc", "segments.0.#", "free_list",
// "alloc_stats.pool_hits".
func Query(data []byte, path string) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("snapshot is not valid JSON")
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("%q: %w", path, ErrNoMatch)
	}
	return res, nil
}

// QueryFile evaluates a gjson path against a snapshot file.
func QueryFile(path, query string) (gjson.Result, error) {
	unlock, err := lock(path)
	if err != nil {
		return gjson.Result{}, err
	}
	defer unlock()

	data, err := readFile(path)
	if err != nil {
		return gjson.Result{}, err
	}
	return Query(data, query)
}
