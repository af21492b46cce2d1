package parser

import "strings"

// Kind identifies the variant held by a Node.
type Kind int

const (
	// ScalarKind holds a single textual value.
	ScalarKind Kind = iota
	// SequenceKind holds an ordered list of nodes.
	SequenceKind
	// MappingKind holds ordered key/node entries.
	MappingKind
)

// Node is a decoded configuration tree. Exactly one of Value, Items or
// Entries is meaningful, selected by Kind.
type Node struct {
	Kind    Kind
	Value   string
	Items   []Node
	Entries []Entry
}

// Entry is a single key/value pair of a mapping node.
type Entry struct {
	Key   string
	Value Node
}

// Scalar builds a scalar node.
func Scalar(value string) Node {
	return Node{Kind: ScalarKind, Value: value}
}

// Sequence builds a sequence node.
func Sequence(items ...Node) Node {
	return Node{Kind: SequenceKind, Items: items}
}

// Mapping builds a mapping node.
func Mapping(entries ...Entry) Node {
	return Node{Kind: MappingKind, Entries: entries}
}

// String renders the node as a single value. Scalars render as-is, sequences
// as [a, b] and mappings as {k: v}.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n Node) write(b *strings.Builder) {
	switch n.Kind {
	case SequenceKind:
		b.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	case MappingKind:
		b.WriteByte('{')
		for i, entry := range n.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(entry.Key)
			b.WriteString(": ")
			entry.Value.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(n.Value)
	}
}

// Flatten collapses a mapping tree into dot-separated keys. Sequences are
// leaves and are not expanded by index. A non-mapping root yields an empty map.
func Flatten(root Node) FlatMap {
	var out FlatMap
	if root.Kind != MappingKind {
		return out
	}
	flattenInto(&out, "", root)
	return out
}

func flattenInto(out *FlatMap, prefix string, node Node) {
	for _, entry := range node.Entries {
		path := entry.Key
		if prefix != "" {
			path = prefix + "." + entry.Key
		}
		if entry.Value.Kind == MappingKind {
			flattenInto(out, path, entry.Value)
			continue
		}
		out.Set(path, entry.Value.String())
	}
}
