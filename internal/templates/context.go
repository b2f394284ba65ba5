package templates

import "maps"

// Context is an immutable, layered render context.
//
// With derives a new Context that shadows keys of its parent; the parent is
// never modified, so one base context can safely back every page render.
type Context struct {
	parent *Context
	values map[string]any
}

// NewContext returns a root context holding a copy of values.
func NewContext(values map[string]any) Context {
	return Context{values: maps.Clone(values)}
}

// With returns a derived context where values take precedence over c.
func (c Context) With(values map[string]any) Context {
	parent := c
	return Context{parent: &parent, values: maps.Clone(values)}
}

// Map flattens the context into a fresh map suitable as template data.
func (c Context) Map() map[string]any {
	var layers []map[string]any
	for cur := &c; cur != nil; cur = cur.parent {
		layers = append(layers, cur.values)
	}
	out := make(map[string]any)
	for i := len(layers) - 1; i >= 0; i-- {
		maps.Copy(out, layers[i])
	}
	return out
}
