package parser

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	mergeTag = "!!merge"
	maxDepth = 1000
	// maxNodes caps the tree built from a document once aliases are expanded.
	maxNodes = 1 << 18
)

// ParseYAML decodes a YAML document and flattens it. Only the first document
// of a stream is read. An empty or null document yields an empty map.
func ParseYAML(content string) (FlatMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return FlatMap{}, fmt.Errorf("%w: %w", ErrMalformedYAML, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return FlatMap{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 || (root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null") {
		return FlatMap{}, nil
	}

	var conv yamlConverter
	tree, err := conv.node(root, 0)
	if err != nil {
		return FlatMap{}, err
	}
	if tree.Kind != MappingKind {
		return FlatMap{}, ErrRootNotMapping
	}
	return Flatten(tree), nil
}

// yamlConverter turns a yaml.Node tree into a Node, counting every node it
// builds so alias expansion stays bounded.
type yamlConverter struct {
	nodes int
}

func (c *yamlConverter) node(n *yaml.Node, depth int) (Node, error) {
	if depth > maxDepth {
		return Node{}, fmt.Errorf("%w: nesting exceeds %d levels", ErrMalformedYAML, maxDepth)
	}
	c.nodes++
	if c.nodes > maxNodes {
		return Node{}, fmt.Errorf("%w: document expands to more than %d nodes", ErrMalformedYAML, maxNodes)
	}
	depth++

	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return Node{}, fmt.Errorf("%w: unresolved alias %q", ErrMalformedYAML, n.Value)
		}
		return c.node(n.Alias, depth)
	case yaml.ScalarNode:
		return Scalar(yamlScalar(n)), nil
	case yaml.SequenceNode:
		items := make([]Node, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := c.node(child, depth)
			if err != nil {
				return Node{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		return c.mapping(n, depth)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Mapping(), nil
		}
		return c.node(n.Content[0], depth)
	default:
		return Node{}, fmt.Errorf("%w: unexpected node kind %d", ErrMalformedYAML, n.Kind)
	}
}

// mapping converts a mapping node. Keys written on the mapping itself win over
// merged keys regardless of where "<<" appears, and among merged mappings the
// first one to define a key wins. Merged entries take the position of their
// "<<" key.
func (c *yamlConverter) mapping(n *yaml.Node, depth int) (Node, error) {
	type pair struct {
		key    string
		value  Node
		merged []Entry
		merge  bool
	}

	pairs := make([]pair, 0, len(n.Content)/2)
	explicit := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == mergeTag {
			merged, err := c.merge(valueNode, depth)
			if err != nil {
				return Node{}, err
			}
			pairs = append(pairs, pair{merged: merged, merge: true})
			continue
		}

		key, err := c.node(keyNode, depth)
		if err != nil {
			return Node{}, err
		}
		value, err := c.node(valueNode, depth)
		if err != nil {
			return Node{}, err
		}
		name := key.String()
		explicit[name] = struct{}{}
		pairs = append(pairs, pair{key: name, value: value})
	}

	entries := make([]Entry, 0, len(pairs))
	fromMerge := make(map[string]struct{})
	for _, p := range pairs {
		if !p.merge {
			entries = append(entries, Entry{Key: p.key, Value: p.value})
			continue
		}
		for _, entry := range p.merged {
			if _, ok := explicit[entry.Key]; ok {
				continue
			}
			if _, ok := fromMerge[entry.Key]; ok {
				continue
			}
			fromMerge[entry.Key] = struct{}{}
			entries = append(entries, entry)
		}
	}
	return Mapping(entries...), nil
}

// merge expands the value of a "<<" key, which is a mapping or a sequence of
// mappings. Entries keep sequence order so earlier mappings take precedence.
func (c *yamlConverter) merge(n *yaml.Node, depth int) ([]Entry, error) {
	source, err := c.node(n, depth)
	if err != nil {
		return nil, err
	}
	switch source.Kind {
	case MappingKind:
		return source.Entries, nil
	case SequenceKind:
		var entries []Entry
		for _, item := range source.Items {
			if item.Kind != MappingKind {
				return nil, fmt.Errorf("%w: merge sequence must contain mappings", ErrMalformedYAML)
			}
			entries = append(entries, item.Entries...)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("%w: merge value must be a mapping", ErrMalformedYAML)
	}
}

// yamlScalar renders a scalar in its natural textual form: booleans and
// numbers are canonicalised, null becomes the empty string and everything
// else keeps its source text.
func yamlScalar(n *yaml.Node) string {
	switch n.ShortTag() {
	case "!!null":
		return ""
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return strconv.FormatBool(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return strconv.FormatInt(i, 10)
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return strconv.FormatUint(u, 10)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return yamlFloat(f, n.Value)
		}
	}
	return n.Value
}

// yamlFloat prints f in plain decimal notation. Infinities, NaN and values
// whose plain form would be unwieldy keep their source spelling.
func yamlFloat(f float64, source string) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return source
	}
	if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
