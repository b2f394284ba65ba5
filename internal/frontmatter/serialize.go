package frontmatter

import (
	"bytes"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Canonical encodes fields as YAML with map keys sorted at every level.
// An empty map encodes to nothing.
func Canonical(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	node, err := canonicalNode(fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func canonicalNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case Fields:
		return canonicalNode(map[string]any(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			child, err := canonicalNode(val[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			child, err := canonicalNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case time.Time:
		// yaml.v3 would keep the monotonic reading and local zone.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: val.UTC().Format(time.RFC3339)}, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
