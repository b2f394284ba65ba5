// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Enum maps case-insensitive, whitespace-tolerant input onto values of T.
type Enum[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// NewEnum builds an Enum named after the configuration field it parses.
// Lookups that miss resolve to fallback.
func NewEnum[T comparable](name string, values map[string]T, fallback T) *Enum[T] {
	e := &Enum[T]{
		name:     name,
		values:   make(map[string]T, len(values)),
		fallback: fallback,
	}
	for k, v := range values {
		key := clean(k)
		e.values[key] = v
		e.keys = append(e.keys, key)
	}
	sort.Strings(e.keys)
	return e
}

// Normalize returns the value for raw, or the fallback.
func (e *Enum[T]) Normalize(raw string) T {
	if v, ok := e.values[clean(raw)]; ok {
		return v
	}
	return e.fallback
}

// Parse is the strict form of Normalize. Empty input yields the fallback.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if clean(raw) == "" {
		return e.fallback, nil
	}
	if v, ok := e.values[clean(raw)]; ok {
		return v, nil
	}
	return e.fallback, fmt.Errorf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.keys, ", "))
}

// Keys lists the accepted spellings in sorted order.
func (e *Enum[T]) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

func clean(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
