// Package query implements the bracket-array query string convention used by the MangaDex API.
//
// Lists render as repeated "key[]=item" pairs and one-level nested objects as
// "key[sub]=value" pairs, matching the PHP-style encoding the API expects.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Builder accumulates query parameters, preserving the order keys were set in.
type Builder struct {
	keys   []string
	values map[string]any
}

// New returns an empty query Builder.
func New() *Builder {
	return &Builder{values: make(map[string]any)}
}

// Set stores a parameter value under the given key and returns the builder for chaining.
// Supported value kinds: nil, string, int, bool, []string, []int and map[string]string.
// Setting a key twice overwrites the earlier value but keeps its original position.
func (b *Builder) Set(key string, value any) *Builder {
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return b
}

// Len reports how many distinct keys have been set.
func (b *Builder) Len() int {
	return len(b.keys)
}

// Encode renders the accumulated parameters as a query string.
// A nil value renders as the literal string "null"; booleans render lowercased.
// Slice items keep their input order; nested map entries are emitted in lexical
// key order so the output is deterministic.
func (b *Builder) Encode() string {
	var parts []string

	for _, key := range b.keys {
		switch value := b.values[key].(type) {
		case nil:
			parts = append(parts, key+"=null")
		case string:
			parts = append(parts, key+"="+value)
		case int:
			parts = append(parts, key+"="+strconv.Itoa(value))
		case bool:
			parts = append(parts, key+"="+strconv.FormatBool(value))
		case []string:
			for _, item := range value {
				parts = append(parts, key+"[]="+item)
			}
		case []int:
			for _, item := range value {
				parts = append(parts, key+"[]="+strconv.Itoa(item))
			}
		case map[string]string:
			subkeys := make([]string, 0, len(value))
			for subkey := range value {
				subkeys = append(subkeys, subkey)
			}
			sort.Strings(subkeys)
			for _, subkey := range subkeys {
				parts = append(parts, key+"["+subkey+"]="+value[subkey])
			}
		default:
			parts = append(parts, key+"="+fmt.Sprint(value))
		}
	}

	return strings.Join(parts, "&")
}
