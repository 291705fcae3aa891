package cst

// builder assigns strictly increasing NodeIDs in document order: a
// node's id is reserved the moment its opening token is seen, before
// any of its children are parsed, so that ids remain a pre-order
// numbering of the tree (§8, Id stability).
type builder struct {
	tree *Tree
}

func newBuilder(source string) *builder {
	return &builder{tree: &Tree{Source: source}}
}

// reserve allocates a NodeID for a node whose shape is not yet known.
func (b *builder) reserve() NodeID {
	id := NodeID(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, Node{ID: id, ParentID: NoParent})
	return id
}

// finalize fills in a reserved node's kind and parts, and fixes up the
// ParentID of every child part. This is the one-time post-parse
// fixup the Design Notes call for: parents are never wired before
// their children exist, so there is never a partially-constructed
// cycle to walk.
func (b *builder) finalize(id NodeID, kind Kind, parts []Part) {
	b.tree.Nodes[id].Kind = kind
	b.tree.Nodes[id].Parts = parts
	for _, p := range parts {
		if p.Kind == ChildPart {
			b.tree.Nodes[p.Child].ParentID = id
		}
	}
}
