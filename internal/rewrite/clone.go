package rewrite

import "github.com/btscript/btc/internal/cst"

// noBodyReplacement marks that a template has no <body> placeholder to
// fill in (the macro case, unless a macro template happens to contain
// one itself).
const noBodyReplacement = cst.NodeID(-1)

// appendNode grows tree's arena with a freshly-synthesized node, fixing
// up the ParentID of its children. Ids assigned this way are not in
// original document order — that invariant binds the parse-time tree
// only; rewriting explicitly does not preserve CST identity (§1
// Non-goals), only CST->AST->IR id stability past this point.
func appendNode(tree *cst.Tree, kind cst.Kind, parts []cst.Part, policy string) cst.NodeID {
	id := cst.NodeID(len(tree.Nodes))
	tree.Nodes = append(tree.Nodes, cst.Node{ID: id, Kind: kind, ParentID: cst.NoParent, Parts: parts, ParallelPolicy: policy})
	for _, p := range parts {
		if p.Kind == cst.ChildPart {
			tree.Nodes[p.Child].ParentID = id
		}
	}
	return id
}

// cloneResult reports what a template clone actually did, so the
// caller can validate it against the rules in §4.4.
type cloneResult struct {
	root           cst.NodeID
	bodyUsed       bool
	unresolvedRefs []string // param-ref names with no entry in subst
}

// cloneWithSubst deep-copies the subtree rooted at id into tree's own
// arena, replacing every param-ref node whose name is a key of subst
// with that argument's (already-in-arena) subtree, and every
// body-placeholder with bodyReplacement (unless bodyReplacement is
// noBodyReplacement, in which case body-placeholder nodes are cloned
// verbatim — only reachable if a macro template itself embeds one).
func cloneWithSubst(tree *cst.Tree, id cst.NodeID, subst map[string]cst.NodeID, bodyReplacement cst.NodeID) cloneResult {
	res := cloneResult{}
	res.root = cloneRec(tree, id, subst, bodyReplacement, &res)
	return res
}

func cloneRec(tree *cst.Tree, id cst.NodeID, subst map[string]cst.NodeID, bodyReplacement cst.NodeID, res *cloneResult) cst.NodeID {
	n := tree.Node(id)

	if n.Kind == cst.KParamRef {
		name := n.Parts[0].Tok.Text
		if rep, ok := subst[name]; ok {
			return rep
		}
		res.unresolvedRefs = append(res.unresolvedRefs, name)
		return id
	}

	if n.Kind == cst.KBodyPlaceholder && bodyReplacement != noBodyReplacement {
		res.bodyUsed = true
		return bodyReplacement
	}

	var newParts []cst.Part
	for _, p := range n.Parts {
		if p.Kind == cst.TokenPart {
			newParts = append(newParts, p)
			continue
		}
		newParts = append(newParts, cst.Part{Kind: cst.ChildPart, Child: cloneRec(tree, p.Child, subst, bodyReplacement, res)})
	}
	return appendNode(tree, n.Kind, newParts, n.ParallelPolicy)
}

// countBodyPlaceholders counts body-placeholder nodes reachable from
// id, for the defdec validation rules BS0026/BS0027.
func countBodyPlaceholders(tree *cst.Tree, id cst.NodeID) int {
	n := tree.Node(id)
	if n.Kind == cst.KBodyPlaceholder {
		return 1
	}
	total := 0
	for _, p := range n.Parts {
		if p.Kind == cst.ChildPart {
			total += countBodyPlaceholders(tree, p.Child)
		}
	}
	return total
}
